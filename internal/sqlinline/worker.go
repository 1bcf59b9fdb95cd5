package sqlinline

const QWorkerClaimProject = `--sql 4f55a9b7-4e9f-4e45-a3b3-5a532d21d9db
with next_project as (
    select id
    from projects
    where status = 'queued'
    order by created_at asc
    limit 1
    for update skip locked
),
updated as (
    update projects
    set status = 'running', updated_at = now()
    where id in (select id from next_project)
    returning id::text, status, facets, coalesce(error, ''), created_at, updated_at
)
select * from updated;
`
