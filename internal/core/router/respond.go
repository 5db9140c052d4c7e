package router

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusBadRequest)
}

func badGateway(w http.ResponseWriter, what string) {
	http.Error(w, what+" unavailable", http.StatusBadGateway)
}

func notConfigured(w http.ResponseWriter, what string) {
	http.Error(w, what+" "+errNotConfigured.Error(), http.StatusServiceUnavailable)
}
