package api

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes a JSON response. The prover's /query_proof endpoint is
// the only JSON-bodied response in this system (every other endpoint
// returns a plain-text verdict), so this stays a single small
// helper rather than a generic error-envelope layer the admission contract
// has no use for.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
