package middleware

import (
	"encoding/json"
	"net/http"
)

// writeDetail writes a {"detail": msg} JSON body with the given status,
// the error shape every API response uses.
func writeDetail(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": msg})
}
