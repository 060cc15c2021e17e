package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter wires the HTTP surface of the reservation service.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
	}))

	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sessions", h.NewSession)

		r.Route("/buses", func(r chi.Router) {
			r.Get("/", h.ListBuses)
			r.Post("/", h.CreateBus)
			r.Get("/{busId}", h.GetBus)
			r.Post("/{busId}/seats/lock", h.LockSeat)
			r.Post("/{busId}/seats/unlock", h.UnlockSeat)
			r.Post("/{busId}/seats/cash", h.MarkCashSeat)
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", h.CreateBooking)
			r.Get("/{pnr}", h.GetBooking)
			r.Post("/{pnr}/payment", h.ConfirmPayment)
			r.Post("/{pnr}/cancel", h.CancelBooking)
			r.Get("/{pnr}/ticket", h.GetTicket)
		})

		r.Get("/users/{userId}/bookings", h.ListUserBookings)
	})

	r.Get("/ws/buses/{busId}", h.SubscribeBus)

	return r
}
