// Package httptransport exposes the session service over a JSON HTTP
// API: one route per engine action plus the read models.
package httptransport

import (
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"

	appsession "miner-tycoon/internal/app/session"
	"miner-tycoon/internal/store"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

func NewRouter(svc *appsession.Service, st store.Store) *chi.Mux {
	actions := NewActionHandlers(svc)
	views := NewViewHandlers(svc)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", healthHandler(st))

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Use(BodyCaptureMiddleware(4096))

		r.Get("/session", views.Summary())
		r.Get("/inventory", views.Inventory())
		r.Get("/catalog", views.Catalog())
		r.Get("/log", views.TransactionLog())
		r.Get("/projection", views.Projection())

		r.Route("/actions", func(r chi.Router) {
			r.Post("/purchase", actions.Purchase())
			r.Post("/open-box", actions.OpenBox())
			r.Post("/install", actions.Install())
			r.Post("/uninstall", actions.Uninstall())
			r.Post("/recycle", actions.Recycle())
			r.Post("/pay-rent-bulk", actions.PayRentBulk())
			r.Post("/rooms/{room_uid}/pay-rent", actions.PayRent())
			r.Post("/rooms/{room_uid}/auto-pay", actions.ToggleAutoPay())
			r.Post("/rooms/{room_uid}/demolish", actions.ProposeDemolition())
			r.Post("/rooms/{room_uid}/demolish/confirm", actions.ConfirmDemolition())
			r.Post("/miners/{miner_uid}/repair", actions.Repair())
			r.Post("/deposit", actions.Deposit())
			r.Post("/withdraw", actions.Withdraw())
			r.Post("/exchange-all", actions.ExchangeAll())
			r.Post("/collect-pool", actions.CollectPool())
			r.Post("/collect-referral", actions.CollectReferral())
			r.Post("/rename", actions.Rename())
		})

		r.Get("/debug/vars", expvar.Handler().ServeHTTP)
	})

	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 32)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}

func healthHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			writeJSON(w, map[string]any{"ok": false, "db": "down"})
			return
		}
		writeJSON(w, map[string]any{"ok": true, "db": "up"})
	}
}
