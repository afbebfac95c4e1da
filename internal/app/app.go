package app

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"reviewer/internal/audit"
	"reviewer/internal/config"
	"reviewer/internal/detector"
	"reviewer/internal/dispatcher"
	"reviewer/internal/frigate"
	"reviewer/internal/listener"
	"reviewer/internal/logger"
	"reviewer/internal/queue"
	"reviewer/internal/repository/sqlite"
	"reviewer/internal/supervisor"
	"reviewer/internal/validator"
	"reviewer/internal/web"
)

// App wires the review pipeline together. All shared state (queue,
// stop signal, detector instances) lives here and is passed down
// explicitly; nothing is process-global.
type App struct {
	config     *config.Config
	logger     *logger.Logger
	db         *sqlite.DB
	reviews    *sqlite.ReviewRepository
	detectors  []*detector.DNNDetector
	queue      *queue.EventQueue
	listener   *listener.Listener
	supervisor *supervisor.Supervisor
	hub        *web.Hub
}

func New() (*App, error) {
	cfg := config.Load()
	log := logger.NewLogger(cfg.LogDirectory)

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	reviews := sqlite.NewReviewRepository(db)

	sink, err := audit.NewSink(cfg.ReviewDirectory, reviews, log)
	if err != nil {
		return nil, err
	}

	client := frigate.NewClient(cfg.FrigateAPIURL, cfg.RequestTimeout)

	// A gocv network is not shared across goroutines; each worker gets
	// its own detector and validator.
	detectors := make([]*detector.DNNDetector, 0, cfg.Workers)
	validators := make([]supervisor.EventValidator, 0, cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		det, err := detector.NewDNNDetector(cfg.ModelPath, cfg.ModelConfigPath, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize detector: %w", err)
		}
		detectors = append(detectors, det)
		validators = append(validators, validator.NewValidator(
			client, det, cfg.ConfidenceThreshold, cfg.TargetClasses, cfg.FullEvidence, log))
	}

	q := queue.New()
	sup := supervisor.New(q, validators, dispatcher.NewDispatcher(client, log), sink, cfg.PopTimeout, log)

	hub := web.NewHub(log)
	sup.SetNotifier(hub)

	return &App{
		config:     cfg,
		logger:     log,
		db:         db,
		reviews:    reviews,
		detectors:  detectors,
		queue:      q,
		listener:   listener.NewListener(cfg, q, log),
		supervisor: sup,
		hub:        hub,
	}, nil
}

// Run starts every component, blocks until SIGINT/SIGTERM, then shuts
// down cooperatively: the listener stops feeding the queue, workers
// finish their in-flight events, remaining queued events are dropped.
func (a *App) Run() error {
	go a.hub.Run()
	a.supervisor.Start()

	if err := a.listener.Start(); err != nil {
		return err
	}

	if a.config.StatusPort > 0 {
		router := web.SetupRoutes(a.hub, a.reviews, a.logger)
		go func() {
			addr := fmt.Sprintf(":%d", a.config.StatusPort)
			if err := http.ListenAndServe(addr, router); err != nil {
				a.logger.Error("Status server stopped: %v", err)
			}
		}()
	}

	fmt.Printf("🔍 Frigate Event Reviewer\n")
	fmt.Printf("📡 Broker: %s:%d (%s)\n", a.config.MQTTBroker, a.config.MQTTPort, a.config.MQTTTopic)
	fmt.Printf("📷 Frigate API: %s\n", a.config.FrigateAPIURL)
	fmt.Printf("📁 Reviews: %s\n", a.config.ReviewDirectory)
	fmt.Printf("🤖 Workers: %d, threshold %.2f\n", a.config.Workers, a.config.ConfidenceThreshold)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	a.logger.Info("Shutting down...")
	a.listener.Stop()
	a.supervisor.Stop()
	for _, det := range a.detectors {
		det.Close()
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("Failed to close database: %v", err)
	}
	a.logger.Info("Shutdown complete")

	return nil
}
