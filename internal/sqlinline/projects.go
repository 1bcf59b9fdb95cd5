package sqlinline

const QInsertProject = `--sql 1d7b3c92-0e4a-4b5f-9c61-8a2e7f4d3b10
insert into projects (id, status, facets, created_at, updated_at)
values ($1::uuid, 'queued', $2::jsonb, now(), now())
returning id::text, status, facets, coalesce(error, ''), created_at, updated_at;
`

const QSelectProject = `--sql 9b4e2a17-6c3d-4f80-b5a9-0d1e8c7f6a23
select id::text, status, facets, coalesce(error, ''), created_at, updated_at
from projects
where id = $1::uuid;
`

const QSelectProjectScenes = `--sql 3a6f9d04-2b8e-4c71-a0d5-7e9c1b4f8a36
select scene_number, scene_type, prompt, negative_prompt, status,
       coalesce(provider, ''), coalesce(operation, ''), coalesce(media_url, ''),
       coalesce(storage_key, ''), coalesce(attempts, '[]'::jsonb), coalesce(error, '')
from project_scenes
where project_id = $1::uuid
order by scene_number asc;
`

const QUpsertProjectScene = `--sql 7c0e5b38-4d9a-4e16-8f27-b3a6d2c9e054
insert into project_scenes (
    project_id, scene_number, scene_type, prompt, negative_prompt, status,
    provider, operation, media_url, storage_key, attempts, error, updated_at
)
values ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::jsonb, $12, now())
on conflict (project_id, scene_number) do update set
    scene_type = excluded.scene_type,
    prompt = excluded.prompt,
    negative_prompt = excluded.negative_prompt,
    status = excluded.status,
    provider = excluded.provider,
    operation = excluded.operation,
    media_url = excluded.media_url,
    storage_key = excluded.storage_key,
    attempts = excluded.attempts,
    error = excluded.error,
    updated_at = now();
`

const QUpdateProjectStatus = `--sql e8d1f6a9-3c5b-4a07-9e42-6f0b7d2c1a58
update projects
set status = $2, error = nullif($3, ''), updated_at = now()
where id = $1::uuid;
`
