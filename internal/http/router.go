package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/facturas/internal/auth"
	"github.com/MrJamesThe3rd/facturas/internal/http/export"
	"github.com/MrJamesThe3rd/facturas/internal/http/income"
	"github.com/MrJamesThe3rd/facturas/internal/http/invoice"
	"github.com/MrJamesThe3rd/facturas/internal/http/session"
)

func New(
	authn *auth.Authenticator,
	corsOrigins []string,
	sessionV1 *session.Handler,
	invoicesV1 *invoice.Handler,
	incomeV1 *income.Handler,
	exportV1 *export.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/session", sessionV1.Routes)

		r.Group(func(r chi.Router) {
			r.Use(authn.Middleware)

			r.Route("/invoices", invoicesV1.Routes)

			r.Route("/income", incomeV1.Routes)

			r.Route("/export", exportV1.Routes)
		})
	})

	return router
}
