package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Indeera01/parkly-backend/internal/auth"
	"github.com/Indeera01/parkly-backend/internal/entities"
	"github.com/Indeera01/parkly-backend/internal/service"
)

type SpaceHandler struct {
	Service *service.SpaceService
}

func NewSpaceHandler(svc *service.SpaceService) *SpaceHandler {
	return &SpaceHandler{Service: svc}
}

// ListSpaces serves the map view: active spaces, optionally narrowed to a
// bounding box (min_lat/max_lat/min_lng/max_lng).
func (h *SpaceHandler) ListSpaces(w http.ResponseWriter, r *http.Request) {
	var filter entities.SpaceFilter

	q := r.URL.Query()
	filter.MinLat = parseFloatParam(q.Get("min_lat"))
	filter.MaxLat = parseFloatParam(q.Get("max_lat"))
	filter.MinLng = parseFloatParam(q.Get("min_lng"))
	filter.MaxLng = parseFloatParam(q.Get("max_lng"))

	spaces, err := h.Service.ListSpaces(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, spaces)
}

// ListMySpaces serves the host dashboard: the actor's own listings,
// inactive ones included.
func (h *SpaceHandler) ListMySpaces(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.ActorID(r)

	spaces, err := h.Service.ListSpaces(r.Context(), entities.SpaceFilter{
		HostID:          actorID,
		IncludeInactive: true,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, spaces)
}

func (h *SpaceHandler) GetSpace(w http.ResponseWriter, r *http.Request) {
	space, err := h.Service.GetSpace(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, space)
}

func (h *SpaceHandler) CreateSpace(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.ActorID(r)

	var req entities.CreateSpaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	space, err := h.Service.CreateSpace(r.Context(), actorID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, space)
}

func (h *SpaceHandler) UpdateSpace(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.ActorID(r)

	var req entities.UpdateSpaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	space, err := h.Service.UpdateSpace(r.Context(), actorID, mux.Vars(r)["id"], req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, space)
}

func (h *SpaceHandler) DeleteSpace(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.ActorID(r)

	if err := h.Service.DeleteSpace(r.Context(), actorID, mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Space deleted")
}

func parseFloatParam(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
