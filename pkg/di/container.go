package di

import (
	"fmt"

	"ws-chatt/backend/ai"
	callservice "ws-chatt/backend/calls/service"
	"ws-chatt/backend/chat/repository"
	chatservice "ws-chatt/backend/chat/service"
	"ws-chatt/backend/internal/ws"
	"ws-chatt/backend/pkg/cache"
	"ws-chatt/backend/pkg/clock"
	"ws-chatt/backend/pkg/config"
	"ws-chatt/backend/pkg/logger"
	"ws-chatt/backend/shared/observability"
	statusservice "ws-chatt/backend/status/service"

	"github.com/prometheus/client_golang/prometheus"
)

// Container holds all the dependencies for the application
type Container struct {
	Config        *config.Config
	Logger        *logger.Logger
	Store         repository.Store
	Snapshots     *repository.SnapshotRepository
	Responder     ai.Responder
	Hub           *ws.Hub
	ChatService   *chatservice.ChatService
	CallService   *callservice.CallService
	StatusService *statusservice.StatusService
	Metrics       *observability.Metrics
}

// New wires the application graph from configuration. The store is
// Pebble when a storage path is configured and in-memory otherwise;
// the responder is the live Gemini client when an API key is present
// and the mock otherwise.
func New(cfg *config.Config, log *logger.Logger) (*Container, error) {
	var store repository.Store
	if cfg.Storage.Path != "" {
		pebbleStore, err := repository.OpenPebble(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open store at %s: %w", cfg.Storage.Path, err)
		}
		store = pebbleStore
		log.Info("Using persistent store", "path", cfg.Storage.Path)
	} else {
		store = repository.NewMemoryStore()
		log.Warn("No STORAGE_PATH configured, state will not survive restarts")
	}

	clk := clock.Real{}

	var responder ai.Responder
	if cfg.AI.APIKey != "" {
		gemini, err := ai.NewGeminiService(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create responder: %w", err)
		}
		responder = gemini
		log.Info("Using Gemini responder", "model", cfg.AI.ChatModel)
	} else {
		responder = ai.NewMockResponder(clk)
		log.Warn("No API_KEY configured, using mock responder")
	}
	responder = ai.NewResilientResponder(responder, log)

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

	hub := ws.NewHub(log)

	snapshots := repository.NewSnapshotRepository(store)
	chatService := chatservice.NewChatService(snapshots, responder, chatservice.Options{
		Clock:          clk,
		Logger:         log,
		TTSCache:       cache.NewCache(),
		Notifier:       hub,
		Metrics:        metrics,
		SentDelay:      cfg.Chat.SentDelay,
		DeliveredDelay: cfg.Chat.DeliveredDelay,
		DeleteDelay:    cfg.Chat.DeleteDelay,
	})

	chats := chatService.Chats()
	callService := callservice.NewCallService(store, chats, clk, log)
	statusService := statusservice.NewStatusService(store, chats, clk, log)

	return &Container{
		Config:        cfg,
		Logger:        log,
		Store:         store,
		Snapshots:     snapshots,
		Responder:     responder,
		Hub:           hub,
		ChatService:   chatService,
		CallService:   callService,
		StatusService: statusService,
		Metrics:       metrics,
	}, nil
}

// Close releases held resources, currently just the store.
func (c *Container) Close() error {
	return c.Store.Close()
}
