package main

import (
	"time"

	"github.com/rs/zerolog"

	"supportchat/internal/chat"
	"supportchat/internal/config"
	"supportchat/internal/relay"
	"supportchat/internal/session"
	"supportchat/internal/transcript"
)

// app is the assembled relay stack shared by every command.
type app struct {
	cfg      *config.Config
	relay    *relay.Client
	chat     *chat.Service
	backend  transcript.Backend
	sessions *session.Manager
}

func newApp(cfg *config.Config, logger zerolog.Logger) (*app, error) {
	client, err := relay.NewClient(relay.Options{
		BaseURL: cfg.Flow.BaseURL,
		FlowID:  cfg.Flow.FlowID,
		Tweaks:  cfg.Flow.Tweaks,
		Timeout: time.Duration(cfg.Flow.TimeoutSeconds) * time.Second,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}
	backend, err := transcript.NewBackend(cfg.BasicConfig.TranscriptBackend, cfg.BasicConfig.SQLiteDSN)
	if err != nil {
		return nil, err
	}
	idle := time.Duration(cfg.BasicConfig.SessionIdleMinutes) * time.Minute
	return &app{
		cfg:      cfg,
		relay:    client,
		chat:     chat.NewService(client, logger),
		backend:  backend,
		sessions: session.NewManager(backend, idle, logger),
	}, nil
}

func (a *app) Close() error {
	return a.backend.Close()
}
