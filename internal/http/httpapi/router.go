package httpapi

import (
	"net/http"
	"strings"
	"time"

	"imagerelay/internal/http/handlers"
	"imagerelay/internal/infra"
	"imagerelay/internal/middleware"
	"imagerelay/internal/relay"
	"imagerelay/internal/web"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RealIP,
		middleware.RequestID,
		middleware.Logger(app.Logger),
		chimw.Recoverer,
		middleware.CORS(app.Config.CORSAllowedOrigins),
	)

	r.Get("/v1/healthz", app.Health)

	// Separate buckets: an action call reaches the endpoint a second time,
	// forwarded for the same caller.
	perMin := app.Config.RateLimitPerMin
	r.With(middleware.RateLimit(perMin, time.Minute)).Post(relay.GeneratePath, app.GenerateImage)
	r.With(middleware.RateLimit(perMin, time.Minute)).Post("/actions/generate-image", app.GenerateImageAction)

	// Locally stored images are public under /static.
	if app.Config.StorageDriver == infra.StorageDriverFilesystem && app.Config.StoragePath != "" {
		files := http.StripPrefix("/static/", http.FileServer(http.Dir(app.Config.StoragePath)))
		r.Handle("/static/*", noDirectoryListing(files))
	}

	r.Handle("/*", web.Handler())

	return r
}

func noDirectoryListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
