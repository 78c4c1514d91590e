package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "video-publisher/docs"
	"video-publisher/internal/auth"
)

func Routes(h *Handler, authn auth.Authenticator, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// after RequestID so the id is available
	r.Use(RequestLogger(logger))

	r.Get("/health", h.Health)

	r.Route("/publishing", func(r chi.Router) {
		r.Use(RequireAuth(authn, logger))

		r.Post("/jobs", h.CreateJob)
		r.Get("/jobs", h.ListJobs)
		r.Get("/jobs/{id}", h.GetJob)
		r.Delete("/jobs/{id}", h.DeleteJob)
		r.Post("/jobs/{id}/execute", h.ExecuteJob)
		r.Post("/jobs/{id}/retry", h.RetryJob)

		r.Post("/batch-jobs", h.CreateBatchJob)
		r.Get("/queue/status", h.QueueStatus)
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return r
}
