package main

import (
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/sebakara/early-passion-detection/cmd/passion/config"
	"github.com/sebakara/early-passion-detection/internal/api"
	"github.com/sebakara/early-passion-detection/internal/journal"
	"github.com/sebakara/early-passion-detection/internal/session"
	"github.com/sebakara/early-passion-detection/internal/token"
)

// app bundles the shared wiring behind every command: config, the durable
// token slot, the API client, and the session store, all pointing at the
// same credential.
type app struct {
	cfg     config.Config
	tokens  *token.Store
	client  *api.Client
	session *session.Store
}

func newApp(logger *zap.Logger) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	tokens, err := token.DefaultStore()
	if err != nil {
		return nil, fmt.Errorf("open token store: %w", err)
	}

	clientOpts := []api.Option{
		api.WithTimeout(time.Duration(cfg.RequestTimeoutSec) * time.Second),
	}
	sessionOpts := []session.Option{}
	if logger != nil {
		clientOpts = append(clientOpts, api.WithLogger(logger))
		sessionOpts = append(sessionOpts, session.WithLogger(logger))
	}

	client := api.NewClient(cfg.APIBaseURL, tokens, clientOpts...)
	sess := session.New(client, tokens, sessionOpts...)

	// A 401 on any protected call ends the session everywhere at once.
	client.SetOnUnauthorized(sess.Evict)

	return &app{
		cfg:     cfg,
		tokens:  tokens,
		client:  client,
		session: sess,
	}, nil
}

// openJournal opens the local answer journal next to the config file.
func (a *app) openJournal() (*journal.Journal, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return journal.Open(filepath.Join(dir, "answers.db"))
}
