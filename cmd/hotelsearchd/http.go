package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"travelhost-backend/lib/scrapers/travelhost"
	"travelhost-backend/services/hotelsearch"
)

type searchRequest struct {
	Credentials travelhost.Credentials  `json:"credentials"`
	Params      travelhost.SearchParams `json:"params"`
}

type listRequest struct {
	Credentials travelhost.Credentials `json:"credentials"`
}

func writeJson(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	if errors.Is(err, travelhost.InvalidCredentials) {
		status = http.StatusUnauthorized
	}
	writeJson(w, status, map[string]string{"error": err.Error()})
}

// newMux exposes the orchestrator over plain JSON. The upstream host is
// slow; a full vendor sweep routinely takes minutes, hence the generous
// per-request deadline.
func newMux(svc hotelsearch.Service) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/search", func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJson(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), time.Minute*10)
		defer cancel()

		agg, err := svc.SearchAllVendors(ctx, req.Credentials, req.Params)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJson(w, http.StatusOK, agg)
	})

	mux.HandleFunc("POST /v1/vendors", func(w http.ResponseWriter, r *http.Request) {
		var req listRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJson(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), time.Minute*2)
		defer cancel()

		vendors, err := svc.Vendors(ctx, req.Credentials)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJson(w, http.StatusOK, vendors)
	})

	mux.HandleFunc("GET /v1/sessions", func(w http.ResponseWriter, r *http.Request) {
		sessions, err := svc.Sessions(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJson(w, http.StatusOK, sessions)
	})

	return mux
}
