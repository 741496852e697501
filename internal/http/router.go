package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/saldo/internal/http/auth"
	"github.com/MrJamesThe3rd/saldo/internal/http/category"
	"github.com/MrJamesThe3rd/saldo/internal/http/export"
	"github.com/MrJamesThe3rd/saldo/internal/http/importcsv"
	"github.com/MrJamesThe3rd/saldo/internal/http/matching"
	"github.com/MrJamesThe3rd/saldo/internal/http/render"
	"github.com/MrJamesThe3rd/saldo/internal/http/report"
	"github.com/MrJamesThe3rd/saldo/internal/http/transaction"
	"github.com/MrJamesThe3rd/saldo/internal/http/user"
)

type Handlers struct {
	Users        *user.Handler
	Categories   *category.Handler
	Transactions *transaction.Handler
	Reports      *report.Handler
	Rules        *matching.Handler
	Import       *importcsv.Handler
	Export       *export.Handler
}

func New(verifier auth.Verifier, allowedOrigins []string, h Handlers) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Transaction-Count"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		render.JSON(w, http.StatusOK, render.Message{Message: "ok"})
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		h.Users.PublicRoutes(r)
	})

	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(verifier))

		r.Group(func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Users.Routes(r)
			h.Categories.Routes(r)
			h.Transactions.Routes(r)
			h.Rules.Routes(r)
		})

		h.Reports.Routes(r)
		h.Import.Routes(r)
		h.Export.Routes(r)
	})

	router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		render.Error(w, http.StatusNotFound, "route not found")
	})

	return router
}
