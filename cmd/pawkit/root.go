package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pawkit/pawkit/internal/credential"
	"github.com/pawkit/pawkit/internal/datastore"
	"github.com/pawkit/pawkit/internal/guard"
	"github.com/pawkit/pawkit/internal/model"
	"github.com/pawkit/pawkit/internal/remote"
	"github.com/pawkit/pawkit/internal/store"
	syncengine "github.com/pawkit/pawkit/internal/sync"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "pawkit",
	Short: "Local-first bookmark and notes store with background sync",
	Long: `Pawkit keeps cards, collections, events and todos in a local SQLite
database. Writes land locally first and are pushed to the sync server
in the background; the server never blocks or rolls back local edits.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, model.ErrGuardRejected) {
			fmt.Fprintln(os.Stderr, "Another session holds the write lease. Run 'pawkit takeover' to write from here.")
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", model.DefaultConfigPath(), "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// app bundles everything a command needs once the config is loaded.
type app struct {
	cfg    *model.AppConfig
	store  store.Store
	lease  *guard.Lease
	engine *syncengine.Engine
	data   *datastore.DataStore
	logger zerolog.Logger
}

// openApp wires the full stack: config, SQLite store, write lease,
// remote client (when sync is enabled and a token exists) and the
// datastore facade.
func openApp(ctx context.Context) (*app, error) {
	logger := newLogger()

	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	st, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	sessionName := cfg.SessionName
	if sessionName == "" {
		host, _ := os.Hostname()
		sessionName = host
	}
	sid, err := profileSessionID(configPath)
	if err != nil {
		st.Close()
		return nil, err
	}
	lease := guard.NewWithID(st, sid, sessionName)

	var engine *syncengine.Engine
	syncEnabled := cfg.Sync.Enabled && cfg.Sync.BaseURL != ""
	if syncEnabled {
		token, err := credential.Get(credential.KeySyncToken)
		if err != nil {
			logger.Warn().Err(err).Msg("no sync token in keyring, running offline")
			syncEnabled = false
		} else {
			timeout := time.Duration(cfg.Sync.TimeoutSec) * time.Second
			client := remote.NewClient(cfg.Sync.BaseURL, token, timeout)
			engine = syncengine.New(st, client, logger)
		}
	}

	data, err := datastore.New(ctx, st, lease, engine, datastore.Options{
		WorkspaceID: cfg.WorkspaceID,
		SyncEnabled: syncEnabled,
		Logger:      logger,
	})
	if err != nil {
		st.Close()
		return nil, err
	}

	return &app{
		cfg:    cfg,
		store:  st,
		lease:  lease,
		engine: engine,
		data:   data,
		logger: logger,
	}, nil
}

// profileSessionID returns this profile's stable session id, generating
// and persisting one next to the config file on first use. Reusing the
// id across invocations means a lease claimed (or taken over) by one
// run of the binary is still held by the next.
func profileSessionID(configPath string) (string, error) {
	path := filepath.Join(filepath.Dir(configPath), "session-id")

	if data, err := os.ReadFile(path); err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	}

	id := uuid.New().String()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating profile directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("persisting session id: %w", err)
	}
	return id, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error().Err(err).Msg("closing store")
	}
}
