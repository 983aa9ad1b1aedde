package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Indeera01/parkly-backend/internal/auth"
	"github.com/Indeera01/parkly-backend/internal/entities"
	"github.com/Indeera01/parkly-backend/internal/service"
)

type BookingHandler struct {
	Service *service.BookingService
}

func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	return &BookingHandler{Service: svc}
}

// CheckAvailability is the compose-time capacity check for a space; the
// client calls it on every date or time change and keeps only the response
// with the highest sequence number.
func (h *BookingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req entities.AvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	resp, err := h.Service.CheckAvailability(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.ActorID(r)

	var req entities.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	booking, err := h.Service.CreateBooking(r.Context(), actorID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.ActorID(r)

	bookings, err := h.Service.ListBookings(r.Context(), actorID, r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (h *BookingHandler) ListSpaceBookings(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.ActorID(r)

	bookings, err := h.Service.ListSpaceBookings(r.Context(), actorID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.ActorID(r)

	if err := h.Service.CancelBooking(r.Context(), actorID, mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Booking cancelled")
}

func (h *BookingHandler) HostCancelBooking(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.ActorID(r)

	if err := h.Service.HostCancelBooking(r.Context(), actorID, mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Booking cancelled by host")
}

func (h *BookingHandler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.ActorID(r)

	if err := h.Service.DeleteBooking(r.Context(), actorID, mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Booking deleted")
}
