package httptransport

import (
	"net/http"
	"strconv"

	appsession "miner-tycoon/internal/app/session"
)

type ViewHandlers struct {
	svc *appsession.Service
}

func NewViewHandlers(svc *appsession.Service) *ViewHandlers {
	return &ViewHandlers{svc: svc}
}

func (h *ViewHandlers) Summary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, h.svc.Summary())
	}
}

func (h *ViewHandlers) Inventory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, h.svc.Inventory())
	}
}

func (h *ViewHandlers) Catalog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, h.svc.CatalogListing())
	}
}

func (h *ViewHandlers) TransactionLog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
				return
			}
			limit = n
		}
		if limit > 500 {
			limit = 500
		}
		writeJSON(w, h.svc.TransactionLog(limit))
	}
}

func (h *ViewHandlers) Projection() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, h.svc.Projection())
	}
}
