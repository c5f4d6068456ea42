package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/farisali522/birojasaapp/internal/config"
	"github.com/farisali522/birojasaapp/internal/domain"
	"github.com/farisali522/birojasaapp/internal/handler"
)

// NewRouter wires HTTP routes and middleware.
func NewRouter(cfg config.Config,
	logger *slog.Logger,
	health handler.HealthHandler,
	auth handler.AuthHandler,
	requests handler.RequestHandler,
	staffAdmin handler.StaffAdminHandler,
	finance handler.FinanceHandler,
	field handler.FieldHandler,
	masterData handler.MasterDataHandler,
	reports handler.ReportHandler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(200, 1*time.Minute))

	health.RegisterRoutes(r)
	auth.RegisterRoutes(r)
	masterData.RegisterPublicRoutes(r)
	r.Method("GET", "/metrics", promhttp.Handler())
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	r.Group(func(pr chi.Router) {
		pr.Use(AuthMiddleware(cfg.JWTSecret))

		pr.Group(func(cr chi.Router) {
			cr.Use(RequireCustomer)
			requests.RegisterRoutes(cr)
		})
		pr.Group(func(ar chi.Router) {
			ar.Use(RequireRole(domain.RoleAdmin, domain.RoleManager))
			staffAdmin.RegisterRoutes(ar)
		})
		pr.Group(func(fr chi.Router) {
			fr.Use(RequireRole(domain.RoleFinance, domain.RoleManager))
			finance.RegisterRoutes(fr)
		})
		pr.Group(func(lr chi.Router) {
			lr.Use(RequireRole(domain.RoleField))
			field.RegisterRoutes(lr)
		})
		pr.Group(func(mr chi.Router) {
			mr.Use(RequireRole(domain.RoleManager))
			masterData.RegisterRoutes(mr)
			reports.RegisterRoutes(mr)
		})
	})

	return r
}
