package httptransport

import (
	"encoding/json"
	"net/http"

	appsession "miner-tycoon/internal/app/session"
	"miner-tycoon/internal/catalog"

	"github.com/go-chi/chi/v5"
)

type ActionHandlers struct {
	svc *appsession.Service
}

func NewActionHandlers(svc *appsession.Service) *ActionHandlers {
	return &ActionHandlers{svc: svc}
}

func (h *ActionHandlers) respond(w http.ResponseWriter, v any, err error) {
	metricActionTotal.Add(1)
	if err != nil {
		metricActionErrorsTotal.Add(1)
		status, code := MapActionError(err)
		WriteHTTPError(w, status, code)
		return
	}
	writeJSON(w, v)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		metricActionTotal.Add(1)
		metricActionErrorsTotal.Add(1)
		WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
		return false
	}
	return true
}

func (h *ActionHandlers) Purchase() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Category  catalog.Category `json:"category"`
			CatalogID string           `json:"catalog_id"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		res, err := h.svc.Purchase(body.Category, body.CatalogID)
		h.respond(w, res, err)
	}
}

func (h *ActionHandlers) OpenBox() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			CatalogID string `json:"catalog_id"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		res, err := h.svc.OpenBox(body.CatalogID)
		h.respond(w, res, err)
	}
}

func (h *ActionHandlers) Install() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ItemUID   string `json:"item_uid"`
			ParentUID string `json:"parent_uid"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		err := h.svc.Install(body.ItemUID, body.ParentUID)
		h.respond(w, map[string]any{"ok": err == nil}, err)
	}
}

func (h *ActionHandlers) Uninstall() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ItemUID string `json:"item_uid"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		err := h.svc.Uninstall(body.ItemUID)
		h.respond(w, map[string]any{"ok": err == nil}, err)
	}
}

func (h *ActionHandlers) Recycle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ItemUID string `json:"item_uid"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		value, err := h.svc.Recycle(body.ItemUID)
		h.respond(w, map[string]any{"ok": err == nil, "scrap_value": value}, err)
	}
}

func (h *ActionHandlers) PayRent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h.svc.PayRent(chi.URLParam(r, "room_uid"))
		h.respond(w, map[string]any{"ok": err == nil}, err)
	}
}

func (h *ActionHandlers) PayRentBulk() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Tier catalog.Tier `json:"tier"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		res, err := h.svc.PayRentBulk(body.Tier)
		h.respond(w, res, err)
	}
}

func (h *ActionHandlers) ToggleAutoPay() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		enabled, err := h.svc.ToggleAutoPay(chi.URLParam(r, "room_uid"))
		h.respond(w, map[string]any{"auto_pay": enabled}, err)
	}
}

func (h *ActionHandlers) ProposeDemolition() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := h.svc.ProposeDemolition(chi.URLParam(r, "room_uid"))
		h.respond(w, res, err)
	}
}

func (h *ActionHandlers) ConfirmDemolition() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reward, err := h.svc.ConfirmDemolition(chi.URLParam(r, "room_uid"))
		h.respond(w, map[string]any{"ok": err == nil, "reward": reward}, err)
	}
}

func (h *ActionHandlers) Repair() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h.svc.Repair(chi.URLParam(r, "miner_uid"))
		h.respond(w, map[string]any{"ok": err == nil}, err)
	}
}

func (h *ActionHandlers) Deposit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Amount float64 `json:"amount"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		err := h.svc.Deposit(body.Amount)
		h.respond(w, map[string]any{"ok": err == nil}, err)
	}
}

func (h *ActionHandlers) Withdraw() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Amount float64 `json:"amount"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		res, err := h.svc.Withdraw(body.Amount)
		h.respond(w, res, err)
	}
}

func (h *ActionHandlers) ExchangeAll() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := h.svc.ExchangeAll()
		h.respond(w, res, err)
	}
}

func (h *ActionHandlers) CollectPool() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		amount, err := h.svc.CollectPendingPool()
		h.respond(w, map[string]any{"ok": err == nil, "collected": amount}, err)
	}
}

func (h *ActionHandlers) CollectReferral() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		amount, err := h.svc.CollectReferral()
		h.respond(w, map[string]any{"ok": err == nil, "collected": amount}, err)
	}
}

func (h *ActionHandlers) Rename() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name string `json:"name"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		name, err := h.svc.RenameUser(body.Name)
		h.respond(w, map[string]any{"username": name}, err)
	}
}
