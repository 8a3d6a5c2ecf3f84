package rest

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/PremHer/kasvarealty-sub001/internal/application/usecase"
	"github.com/PremHer/kasvarealty-sub001/pkg/auth"
	pgpkg "github.com/PremHer/kasvarealty-sub001/pkg/postgres"
)

// UseCases groups everything the API dispatches to.
type UseCases struct {
	Create         *usecase.CreateSaleAccountUseCase
	Preview        *usecase.PreviewScheduleUseCase
	Get            *usecase.GetSaleAccountUseCase
	Mora           *usecase.ComputeMoraUseCase
	Pay            *usecase.ApplyPaymentUseCase
	Reprogram      *usecase.ReprogramUseCase
	Recalculate    *usecase.RecalculateBalancesUseCase
	Reprogrammings *usecase.ListReprogrammingsUseCase
}

// RouterConfig wires the HTTP surface.
type RouterConfig struct {
	UseCases       UseCases
	Validator      auth.TokenValidator
	DB             pgpkg.Pinger
	Registerer     prometheus.Registerer
	MetricsHandler http.Handler
	ServiceName    string
	Logger         *slog.Logger
}

// NewRouter builds the HTTP API: /api/v1 behind JWT auth, probes and
// /metrics in the clear.
func NewRouter(cfg RouterConfig) *mux.Router {
	router := mux.NewRouter()
	router.Use(newHTTPMetrics(cfg.Registerer).middleware)

	health := NewHealthHandler(cfg.ServiceName, cfg.DB, cfg.Logger)
	router.HandleFunc("/healthz", health.liveness).Methods(http.MethodGet)
	router.HandleFunc("/readyz", health.readiness).Methods(http.MethodGet)
	if cfg.MetricsHandler != nil {
		router.Handle("/metrics", cfg.MetricsHandler).Methods(http.MethodGet)
	}

	h := &Handler{uc: cfg.UseCases, logger: cfg.Logger}
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(auth.HTTPMiddleware(cfg.Validator))

	api.HandleFunc("/schedules/preview", h.previewSchedule).Methods(http.MethodPost)
	api.HandleFunc("/sale-accounts", h.createSaleAccount).Methods(http.MethodPost)
	api.HandleFunc("/sale-accounts/{id}", h.getSaleAccount).Methods(http.MethodGet)
	api.HandleFunc("/sale-accounts/{id}/mora", h.computeMora).Methods(http.MethodGet)
	api.HandleFunc("/sale-accounts/{id}/payments", h.applyPayment).Methods(http.MethodPost)
	api.HandleFunc("/sale-accounts/{id}/reprogrammings", h.reprogram).Methods(http.MethodPost)
	api.HandleFunc("/sale-accounts/{id}/reprogrammings", h.listReprogrammings).Methods(http.MethodGet)
	api.HandleFunc("/sale-accounts/{id}/recalculate", h.recalculateBalances).Methods(http.MethodPost)

	return router
}
