package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ombralis/packdispatch/api/dispatchapi"
	"github.com/ombralis/packdispatch/api/inventoryapi"
	"github.com/ombralis/packdispatch/api/simulationapi"
	"github.com/ombralis/packdispatch/config"
	"github.com/ombralis/packdispatch/core/dispatch"
	"github.com/ombralis/packdispatch/core/inventory"
	coremetrics "github.com/ombralis/packdispatch/core/metrics"
	"github.com/ombralis/packdispatch/core/model"
	"github.com/ombralis/packdispatch/core/receiving"
	"github.com/ombralis/packdispatch/core/report"
	"github.com/ombralis/packdispatch/core/simulation"
	"github.com/ombralis/packdispatch/infra/logger"
	"github.com/ombralis/packdispatch/infra/metrics"
	"github.com/ombralis/packdispatch/infra/store"
	"github.com/ombralis/packdispatch/internal/eventbus"
)

// Service assembles the dispatch engine: stores, manager, gate, simulator and
// the HTTP server.
type Service struct {
	Manager   *dispatch.Manager
	Gate      *receiving.Gate
	Simulator *simulation.Simulator
	Inventory inventory.Store
	Reports   report.Store

	cfg          *config.Config
	journal      dispatch.Journal
	bus          *eventbus.Bus
	stopCollect  context.CancelFunc
	log          logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	inv, reports, err := openStores(cfg)
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	for _, loc := range cfg.Locations {
		err := inv.AddLocation(ctx, model.StorageLocation{ID: loc.ID, Name: loc.Name, MaxCapacity: loc.MaxCapacity})
		if err != nil {
			logg.Warnf("seed location %s: %v", loc.ID, err)
		}
	}

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(
			cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken, cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket))
	}
	var sink coremetrics.MetricsSink
	switch len(sinks) {
	case 0:
		sink = coremetrics.NopSink{}
	case 1:
		sink = sinks[0]
	default:
		sink = metrics.NewMultiSink(sinks...)
	}

	var journal dispatch.Journal
	if cfg.Storage.JournalPath != "" {
		journal, err = dispatch.NewJSONLJournal(cfg.Storage.JournalPath)
		if err != nil {
			return nil, fmt.Errorf("dispatch journal: %w", err)
		}
	}

	batch := dispatch.NewBatchStrategy(cfg.Dispatch.BatchSize, secs(cfg.Dispatch.BatchDelaySeconds))
	single := dispatch.NewSingleStrategy(secs(cfg.Dispatch.SingleDelaySeconds))
	selector := dispatch.NewSelector(cfg.Dispatch.ManagerRole, batch, single)

	bus := eventbus.New()
	collectCtx, stopCollect := context.WithCancel(context.Background())
	metrics.StartEventCollector(collectCtx, bus, sink)
	manager := dispatch.NewManager(selector, inv, journal, logger.New("dispatch-manager"), sink, bus)
	gate := receiving.NewGate(inv, logger.New("receiving-gate"), sink, cfg.Receiving.EnforceForManager)
	sim := simulation.New(batch, single, reports, logger.New("simulator"), sink)

	return &Service{
		Manager:   manager,
		Gate:      gate,
		Simulator: sim,
		Inventory: inv,
		Reports:   reports,
		cfg:         cfg,
		journal:     journal,
		bus:         bus,
		stopCollect: stopCollect,
		log:         logg,
	}, nil
}

func openStores(cfg *config.Config) (inventory.Store, report.Store, error) {
	if cfg.Storage.Backend == "sqlite" {
		inv, err := store.NewSQLiteInventory(cfg.Storage.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("inventory store: %w", err)
		}
		reports, err := store.NewSQLiteReports(cfg.Storage.ReportPath)
		if err != nil {
			return nil, nil, fmt.Errorf("report store: %w", err)
		}
		return inv, reports, nil
	}
	return inventory.NewMemoryStore(), report.NewMemoryStore(), nil
}

// Handler mounts the API routes.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/dispatch", dispatchapi.NewDispatchHandler(s.Manager))
	mux.Handle("/api/dispatch/journal", dispatchapi.NewJournalHandler(s.journal))
	mux.Handle("/api/receive", inventoryapi.NewReceiveHandler(s.Gate, s.Manager.Selector()))
	mux.Handle("/api/locations", inventoryapi.NewLocationsHandler(s.Inventory))
	mux.Handle("/api/locations/", inventoryapi.NewLocationUnitsHandler(s.Inventory))
	mux.Handle("/api/simulate", simulationapi.NewSimulateHandler(s.Simulator))
	mux.Handle("/api/reports", simulationapi.NewReportsHandler(s.Reports))
	mux.Handle("/api/reports/", simulationapi.NewReportsHandler(s.Reports))
	return mux
}

// Run starts the API server (and the Prometheus endpoint when enabled) and
// blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	srv := &http.Server{Addr: s.cfg.HTTP.Addr, Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("http shutdown: %v", err)
		}
	}()
	s.log.Infof("listening on %s", s.cfg.HTTP.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.stopCollect()
	s.bus.Close()
	if n := s.bus.Dropped(); n > 0 {
		s.log.Warnf("event bus dropped %d events", n)
	}
	if s.journal != nil {
		_ = s.journal.Close()
	}
	if c, ok := s.Inventory.(interface{ Close() error }); ok {
		_ = c.Close()
	}
	return s.Reports.Close()
}

func secs(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
