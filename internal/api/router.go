package api

import (
	"net/http"
	"time"

	"cf_buddy/internal/api/handler"
	"cf_buddy/internal/api/middleware"
	"cf_buddy/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(
	dppService handler.DPPService,
	analyticsService handler.AnalyticsService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger.Log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Route("/levels", handler.NewLevelHandler().RegisterRoutes)

		dppHandler := handler.NewDPPHandler(dppService)
		v1.Route("/dpp", dppHandler.RegisterRoutes)

		analyticsHandler := handler.NewAnalyticsHandler(analyticsService)
		v1.Route("/analytics", analyticsHandler.RegisterRoutes)
	})

	return r
}
