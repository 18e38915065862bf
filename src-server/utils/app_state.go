package utils

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"eventhorizon/src-server/kv"
	"eventhorizon/src-server/metric"
	"eventhorizon/src-server/store"
	"eventhorizon/src-server/suggest"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
)

// AppState owns everything the CLI and the HTTP routes share. Nothing in
// it is global; it's built once in main and passed down.
type AppState struct {
	Config    *Config
	BunDB     *bun.DB
	Store     *store.Store
	Suggester *suggest.Client
	Metrics   *metric.Metrics
	Registry  *prometheus.Registry
	When      *when.Parser

	now func() time.Time
}

func NewAppState(ctx context.Context, config *Config) (*AppState, error) {
	as := &AppState{Config: config, now: time.Now}

	// date parser
	as.When = NewWhen()

	as.Registry = prometheus.NewRegistry()
	as.Metrics = metric.New(as.Registry)

	// database
	var err error
	as.BunDB, err = kv.OpenSQLite(ctx, config.GetDatabasePath())
	if err != nil {
		return nil, fmt.Errorf("NewAppState: %w", err)
	}

	as.Store = store.New(ctx, kv.NewSQLite(as.BunDB),
		store.WithKey(config.GetStorageKey()),
		store.WithObserver(as.Metrics),
	)
	as.Suggester = suggest.NewClient(
		config.GetGeminiApiKey(),
		suggest.NewGemini(config.GetGeminiBaseURL()),
		suggest.WithModel(config.GetGeminiModel()),
		suggest.WithObserver(as.Metrics),
	)

	return as, nil
}

func NewWhen() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// Now is the current time in the configured timezone.
func (as *AppState) Now() time.Time {
	return as.now().In(as.Config.GetLocation())
}

// ParseDate resolves user date input against the current time.
func (as *AppState) ParseDate(s string) (string, error) {
	return ParseDate(as.When, s, as.Now())
}

func (as *AppState) GracefulShutdown() {
	if as.BunDB == nil {
		return
	}
	if err := as.BunDB.Close(); err != nil {
		slog.Warn("can't close database", "error", err)
	}
}
