package app

import (
	"context"
	"fmt"

	"github.com/TheRVAAccountant/resource-allocator/config"
	"github.com/TheRVAAccountant/resource-allocator/core/allocation"
	"github.com/TheRVAAccountant/resource-allocator/core/history"
	coremetrics "github.com/TheRVAAccountant/resource-allocator/core/metrics"
	"github.com/TheRVAAccountant/resource-allocator/core/model"
	"github.com/TheRVAAccountant/resource-allocator/infra/logger"
	"github.com/TheRVAAccountant/resource-allocator/infra/metrics"
	"github.com/TheRVAAccountant/resource-allocator/infra/tabular"
	"github.com/TheRVAAccountant/resource-allocator/internal/eventbus"
)

// InputFiles names the four tables of one allocation run. Brands and Drivers
// are optional.
type InputFiles struct {
	Routes   string
	Vehicles string
	Brands   string
	Drivers  string
}

// Service wires the allocation engine with its collaborators: history store,
// metrics sink, event bus, loaders. All of them are constructed here and
// injected; nothing is global.
type Service struct {
	Engine      *allocation.Engine
	History     history.Store
	Bus         *eventbus.Bus
	loader      *tabular.Loader
	log         logger.Logger
	promEnabled bool
	promPort    string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	store, err := history.NewStore(cfg.History)
	if err != nil {
		return nil, fmt.Errorf("history store: %w", err)
	}

	var sink coremetrics.Sink = coremetrics.NopSink{}
	if cfg.Metrics.PrometheusEnabled {
		promSink, err := metrics.NewPromSink()
		if err != nil {
			if cerr := store.Close(); cerr != nil {
				logg.Errorf("store close: %v", cerr)
			}
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sink = promSink
	}

	bus := eventbus.New()
	engine, err := allocation.NewEngine(
		cfg.Allocation.EngineName,
		cfg.Allocation.Provider,
		cfg.Allocation.TypeMap(),
		allocation.WithHistory(store),
		allocation.WithMetrics(sink),
		allocation.WithEventBus(bus),
		allocation.WithLogger(logger.New("engine")),
	)
	if err != nil {
		if cerr := store.Close(); cerr != nil {
			logg.Errorf("store close: %v", cerr)
		}
		return nil, fmt.Errorf("engine: %w", err)
	}

	return &Service{
		Engine:      engine,
		History:     store,
		Bus:         bus,
		loader:      tabular.NewLoader(logger.New("tabular")),
		log:         logg,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}, nil
}

// RunFiles loads the four input tables and executes one allocation run.
// Schema problems in any table surface as errors before allocation starts.
func (s *Service) RunFiles(ctx context.Context, files InputFiles) (*model.AllocationResult, error) {
	routes, err := s.loader.Routes(files.Routes)
	if err != nil {
		return nil, err
	}
	vehicles, err := s.loader.Vehicles(files.Vehicles)
	if err != nil {
		return nil, err
	}
	brands, err := s.loader.Brands(files.Brands)
	if err != nil {
		return nil, err
	}
	drivers, err := s.loader.Drivers(files.Drivers)
	if err != nil {
		return nil, err
	}

	return s.Engine.Run(ctx, allocation.Input{
		Routes:   routes,
		Vehicles: vehicles,
		Brands:   brands,
		Drivers:  drivers,
		Files: map[string]string{
			"routes":   files.Routes,
			"vehicles": files.Vehicles,
			"brands":   files.Brands,
			"drivers":  files.Drivers,
		},
	})
}

// ServeMetrics blocks serving the Prometheus endpoint until ctx is canceled.
// It returns immediately when the sink is disabled.
func (s *Service) ServeMetrics(ctx context.Context) error {
	if !s.promEnabled {
		return nil
	}
	return metrics.StartPromServer(ctx, s.promPort)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.Bus.Close()
	return s.History.Close()
}
