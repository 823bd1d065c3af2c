package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"n3portal/internal/mw"
	"n3portal/internal/service"
)

// NewRouter wires the staff API.
func NewRouter(authSvc *service.AuthService, orderSvc *service.OrderService, jwtSecret string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/api/staff/login", LoginHandler(authSvc, jwtSecret))

	r.Group(func(r chi.Router) {
		r.Use(mw.AuthMiddleware(jwtSecret))

		r.Get("/api/orders", ListOrdersHandler(orderSvc))
		r.Get("/api/orders/{number}", GetOrderHandler(orderSvc))
		r.Put("/api/orders/{number}/status", UpdateStatusHandler(orderSvc))
	})

	return r
}
