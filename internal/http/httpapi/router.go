package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"reelgen/internal/http/handlers"
	"reelgen/internal/middleware"
)

// Options selects the cross-cutting middleware of the router.
type Options struct {
	CORSOrigins     []string
	RateLimitPerMin int
	RateCounter     middleware.Counter
	CountryLookup   middleware.CountryLookup
	// StaticDir, when set, is served under /static for persisted media.
	StaticDir string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(*app.Logger),
		middleware.CORS(opts.CORSOrigins),
		middleware.Locale(opts.CountryLookup),
	)

	r.Get("/v1/healthz", app.Health)
	if opts.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir))))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/catalog", app.Catalog)
		r.Post("/prompts", app.ComposePrompt)
		r.Post("/storyboards", app.Storyboard)

		r.Group(func(r chi.Router) {
			if opts.RateLimitPerMin > 0 {
				counter := opts.RateCounter
				if counter == nil {
					counter = middleware.NewMemoryCounter()
				}
				r.Use(middleware.RateLimit(counter, opts.RateLimitPerMin, time.Minute))
			}
			r.Post("/images", app.GenerateImage)
			r.Post("/images/master", app.GenerateMasterImage)
			r.Post("/videos", app.GenerateVideo)
			r.Post("/products/describe", app.DescribeProduct)
			r.Post("/projects", app.CreateProject)
		})

		r.Get("/operations/{provider}", app.OperationStatus)
		r.Get("/operations/{provider}/stream", app.OperationStream)
		r.Get("/projects/{id}", app.GetProject)
		r.Get("/projects/{id}/archive", app.ProjectArchive)
	})

	return r
}
