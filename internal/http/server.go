package http

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/ghoststack-shark/Katie-team-notetaker-backend/internal/config"
	"github.com/ghoststack-shark/Katie-team-notetaker-backend/internal/services"
	"github.com/ghoststack-shark/Katie-team-notetaker-backend/internal/storage"
)

type Server struct {
	engine *gin.Engine
	cfg    config.Config
}

func NewServer(cfg config.Config) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)

	store, err := newStore(cfg)
	if err != nil {
		return nil, err
	}

	artifacts, err := storage.NewArtifactManager(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("init artifact manager: %w", err)
	}

	recallSvc := services.NewRecallService(cfg)
	notifySvc := services.NewNotifyService(cfg)
	webhookSvc := services.NewWebhookService(store, notifySvc)
	summarySvc := services.NewSummaryService(cfg)
	pdfSvc := services.NewPDFService()
	shareSvc := services.NewShareService(cfg)

	if cfg.APISharedSecret == "" {
		log.Warn().Msg("API_SHARED_SECRET is empty, operator endpoints are unauthenticated")
	}
	if cfg.N8NWebhookURL == "" {
		log.Warn().Msg("N8N_WEBHOOK_URL is empty, webhook events will not be forwarded")
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestLogger())
	engine.Use(Metrics())
	engine.Use(MaxBodySize(cfg.MaxBodyBytes))
	engine.Use(CORS())

	api := NewAPI(cfg, store, artifacts, recallSvc, webhookSvc, summarySvc, pdfSvc, shareSvc)
	registerRoutes(engine, api)

	return &Server{engine: engine, cfg: cfg}, nil
}

func newStore(cfg config.Config) (storage.MeetingStore, error) {
	if cfg.MongoURI != "" {
		store, err := storage.NewMongoStore(context.Background(), cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("init mongo store: %w", err)
		}
		log.Info().Str("database", cfg.MongoDB).Msg("using mongo meeting store")
		return store, nil
	}

	store, err := storage.NewFileStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("init file store: %w", err)
	}
	log.Info().Str("data_dir", cfg.DataDir).Msg("using file meeting store")
	return store, nil
}

func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.cfg.Port)
	return s.engine.Run(addr)
}
