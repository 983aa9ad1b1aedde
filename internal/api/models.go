package api

import (
	"encoding/json"
	"net/http"

	"github.com/Indeera01/parkly-backend/internal/errors"
)

// ErrorResponse is the error payload. Reason is the machine-readable
// rejection code for business-rule failures; clients branch on it, not on
// the message.
type ErrorResponse struct {
	Error     string        `json:"error"`
	Reason    errors.Reason `json:"reason,omitempty"`
	Available *int          `json:"available,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	httpErr := errors.ToHTTP(err)
	resp := ErrorResponse{Error: httpErr.Message, Reason: httpErr.Reason}
	if httpErr.Reason == errors.ReasonInsufficientCapacity {
		available := httpErr.Available
		resp.Available = &available
	}
	writeJSON(w, httpErr.Code, resp)
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"message": msg})
}
