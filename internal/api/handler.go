package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-reservation/internal/booking"
	"ms-reservation/internal/logger"
	"ms-reservation/internal/models"
	"ms-reservation/internal/reservation"
	"ms-reservation/internal/utils"
	"ms-reservation/internal/ws"
)

// CatalogStore is the fleet read/write surface the HTTP layer needs.
type CatalogStore interface {
	GetBus(ctx context.Context, busID string) (*models.Bus, error)
	ListBuses(ctx context.Context) ([]*models.Bus, error)
	CreateBus(ctx context.Context, bus *models.Bus) error
}

type Handler struct {
	Reservations *reservation.Service
	Reconciler   *reservation.Reconciler
	Bookings     *booking.Service
	Catalog      CatalogStore
	Hub          *ws.Hub
	Degraded     bool
	Logger       *logger.Logger
}

type seatRequest struct {
	SeatNumber int    `json:"seatNumber"`
	LockerID   string `json:"lockerId"`
	Date       string `json:"date"`
}

// LockSeat handles POST /api/v1/buses/{busId}/seats/lock.
//
// A losing attempt is not an error: it answers 200 with the
// "Seat already locked" message, and the UI shows the seat as taken.
func (h *Handler) LockSeat(w http.ResponseWriter, r *http.Request) {
	busID := chi.URLParam(r, "busId")

	var req seatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Date == "" {
		req.Date = utils.Today()
	}

	result, err := h.Reservations.Lock(r.Context(), busID, req.Date, req.SeatNumber, req.LockerID)
	if err != nil {
		h.writeError(w, "LockSeat", err)
		return
	}

	message := "Seat locked"
	if result.Status == reservation.StatusConflict {
		message = "Seat already locked"
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  message,
		"lockerId": result.LockerID,
	})
}

// UnlockSeat handles POST /api/v1/buses/{busId}/seats/unlock. Always
// answers "Seat unlocked", including the no-op cases.
func (h *Handler) UnlockSeat(w http.ResponseWriter, r *http.Request) {
	busID := chi.URLParam(r, "busId")

	var req seatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Date == "" {
		req.Date = utils.Today()
	}

	if err := h.Reservations.Unlock(r.Context(), busID, req.Date, req.SeatNumber, req.LockerID); err != nil {
		h.writeError(w, "UnlockSeat", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Seat unlocked"})
}

// MarkCashSeat handles POST /api/v1/buses/{busId}/seats/cash for
// on-board walk-up sales.
func (h *Handler) MarkCashSeat(w http.ResponseWriter, r *http.Request) {
	busID := chi.URLParam(r, "busId")

	var req seatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Reservations.MarkCash(r.Context(), busID, req.SeatNumber); err != nil {
		h.writeError(w, "MarkCashSeat", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Seat marked as cash sale"})
}

type busWithSeatView struct {
	*models.Bus
	Date        string              `json:"date"`
	SeatView    []models.SeatState  `json:"seat_view"`
	ActiveLocks []models.SeatLock   `json:"activeLocks"`
	BookedSeats []int               `json:"bookedSeats"`
}

// GetBus handles GET /api/v1/buses/{busId}?date=YYYY-MM-DD&lockerId=...
// and returns the bus augmented with the reconciled seat view for the
// requested date (today when absent).
func (h *Handler) GetBus(w http.ResponseWriter, r *http.Request) {
	busID := chi.URLParam(r, "busId")
	date := r.URL.Query().Get("date")
	if date == "" {
		date = utils.Today()
	}
	lockerID := r.URL.Query().Get("lockerId")

	bus, err := h.Catalog.GetBus(r.Context(), busID)
	if err != nil {
		h.writeError(w, "GetBus", err)
		return
	}
	view, err := h.Reconciler.SeatView(r.Context(), busID, date, lockerID)
	if err != nil {
		h.writeError(w, "GetBus", err)
		return
	}

	h.writeJSON(w, http.StatusOK, busWithSeatView{
		Bus:         bus,
		Date:        date,
		SeatView:    view.Seats,
		ActiveLocks: view.ActiveLocks,
		BookedSeats: view.BookedSeats,
	})
}

// ListBuses handles GET /api/v1/buses.
func (h *Handler) ListBuses(w http.ResponseWriter, r *http.Request) {
	buses, err := h.Catalog.ListBuses(r.Context())
	if err != nil {
		h.writeError(w, "ListBuses", err)
		return
	}
	h.writeJSON(w, http.StatusOK, buses)
}

// CreateBus handles POST /api/v1/buses (fleet registration).
func (h *Handler) CreateBus(w http.ResponseWriter, r *http.Request) {
	var bus models.Bus
	if err := json.NewDecoder(r.Body).Decode(&bus); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if bus.ID == "" || bus.TotalSeats < 1 {
		http.Error(w, "Bus id and a positive total_seats are required", http.StatusBadRequest)
		return
	}
	if err := h.Catalog.CreateBus(r.Context(), &bus); err != nil {
		h.writeError(w, "CreateBus", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, bus)
}

// CreateBooking handles POST /api/v1/bookings.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req booking.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.Bookings.CreateBooking(r.Context(), req)
	if err != nil {
		h.writeError(w, "CreateBooking", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

// ConfirmPayment handles POST /api/v1/bookings/{pnr}/payment.
func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	pnr := chi.URLParam(r, "pnr")

	confirmed, err := h.Bookings.ConfirmPayment(r.Context(), pnr)
	if err != nil {
		h.writeError(w, "ConfirmPayment", err)
		return
	}
	h.writeJSON(w, http.StatusOK, confirmed)
}

// CancelBooking handles POST /api/v1/bookings/{pnr}/cancel.
func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	pnr := chi.URLParam(r, "pnr")

	cancelled, err := h.Bookings.UpdateStatus(r.Context(), pnr, models.BookingCancelled)
	if err != nil {
		h.writeError(w, "CancelBooking", err)
		return
	}
	h.writeJSON(w, http.StatusOK, cancelled)
}

// GetBooking handles GET /api/v1/bookings/{pnr}.
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	pnr := chi.URLParam(r, "pnr")

	found, err := h.Bookings.GetBooking(r.Context(), pnr)
	if err != nil {
		h.writeError(w, "GetBooking", err)
		return
	}
	h.writeJSON(w, http.StatusOK, found)
}

// GetTicket handles GET /api/v1/bookings/{pnr}/ticket and serves the
// boarding-pass QR as PNG.
func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	pnr := chi.URLParam(r, "pnr")

	png, err := h.Bookings.TicketQR(r.Context(), pnr)
	if err != nil {
		h.writeError(w, "GetTicket", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// ListUserBookings handles GET /api/v1/users/{userId}/bookings.
func (h *Handler) ListUserBookings(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		http.Error(w, "User ID is required", http.StatusBadRequest)
		return
	}

	bookings, err := h.Bookings.ListUserBookings(r.Context(), userID)
	if err != nil {
		h.writeError(w, "ListUserBookings", err)
		return
	}
	h.writeJSON(w, http.StatusOK, bookings)
}

// SubscribeBus handles GET /ws/buses/{busId}: WebSocket subscription to
// the bus's seat-update room.
func (h *Handler) SubscribeBus(w http.ResponseWriter, r *http.Request) {
	busID := chi.URLParam(r, "busId")
	if _, err := h.Catalog.GetBus(r.Context(), busID); err != nil {
		h.writeError(w, "SubscribeBus", err)
		return
	}
	ws.ServeWS(h.Hub, w, r, busID)
}

// NewSession handles POST /api/v1/sessions and issues the opaque locker
// id a seat-selection client uses for all its lock calls.
func (h *Handler) NewSession(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"lockerId": utils.GenerateLockerID(),
	})
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if h.Degraded {
		status = "degraded"
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   status,
		"degraded": h.Degraded,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.Logger.Error("API", fmt.Sprintf("failed to encode response: %v", err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	h.Logger.Error("API", fmt.Sprintf("%s: %v", op, err))

	switch {
	case errors.Is(err, reservation.ErrBusNotFound), errors.Is(err, booking.ErrBookingNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, reservation.ErrSeatOutOfRange),
		errors.Is(err, reservation.ErrInvalidDate),
		errors.Is(err, reservation.ErrLockerIDRequired),
		errors.Is(err, booking.ErrNoPassengers):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, booking.ErrSeatUnavailable),
		errors.Is(err, booking.ErrInvalidTransition),
		errors.Is(err, booking.ErrPaymentNotCompleted):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, reservation.ErrStoreUnavailable):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
