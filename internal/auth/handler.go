package auth

import (
	"encoding/json"
	"net/http"

	"github.com/assessgen/backend/internal/models"
)

// CurrentPrincipal returns the caller identity attached by the auth
// middleware.
func CurrentPrincipal(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"subject": p.Subject, "role": p.Role})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
