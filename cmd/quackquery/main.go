package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	quackquery "github.com/QuackQuery/QuackQuery"
	"github.com/QuackQuery/QuackQuery/automation/applauncher"
	"github.com/QuackQuery/QuackQuery/automation/filemanager"
	"github.com/QuackQuery/QuackQuery/automation/github"
	"github.com/QuackQuery/QuackQuery/automation/web"
	"github.com/QuackQuery/QuackQuery/frontend/console"
	"github.com/QuackQuery/QuackQuery/internal/config"
	"github.com/QuackQuery/QuackQuery/internal/session"
	"github.com/QuackQuery/QuackQuery/observer"
	"github.com/QuackQuery/QuackQuery/provider/resolve"
	"github.com/QuackQuery/QuackQuery/screenshot"
	"github.com/QuackQuery/QuackQuery/store/postgres"
	"github.com/QuackQuery/QuackQuery/store/sqlite"
	"github.com/QuackQuery/QuackQuery/voice"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Load config
	cfg := config.Load(os.Getenv("QUACKQUERY_CONFIG"))
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	// 2. Create provider
	provider, err := resolve.Provider(resolve.Config{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.Model,
		BaseURL:  cfg.LLM.BaseURL,
	})
	if err != nil {
		log.Fatal(err)
	}
	provider = quackquery.WithRetry(provider, quackquery.RetryLogger(logger))

	// 3. Observability (optional)
	var inst *observer.Instruments
	if cfg.Observer.Enabled {
		var shutdown func(context.Context) error
		inst, shutdown, err = observer.Init(ctx)
		if err != nil {
			log.Fatal(err)
		}
		defer shutdown(context.Background())
		provider = observer.WrapProvider(provider, cfg.LLM.Model, inst)
	}

	// 4. Conversation history
	var store quackquery.HistoryStore
	switch cfg.Database.Backend {
	case "postgres":
		pool, perr := pgxpool.New(ctx, cfg.Database.PostgresURL)
		if perr != nil {
			log.Fatal(perr)
		}
		defer pool.Close()
		store = postgres.New(pool)
	case "none":
		// History stays off.
	default:
		store = sqlite.New(cfg.Database.Path, sqlite.WithLogger(logger))
	}

	assistantOpts := []quackquery.AssistantOption{quackquery.WithLogger(logger)}
	if store != nil {
		if err := store.Init(ctx); err != nil {
			log.Fatal(err)
		}
		defer store.Close()
		assistantOpts = append(assistantOpts, quackquery.WithHistory(store, quackquery.NewID()))
	}

	assistant := quackquery.NewAssistant(provider, assistantOpts...)

	// 5. Probe automation capabilities. Priority order is fixed: a command
	// matched by an earlier capability never reaches a later one.
	probes := []quackquery.Probe{
		{Name: "file", Init: func() (quackquery.Capability, error) {
			return filemanager.New(cfg.Workspace.Path)
		}},
		{Name: "github", Init: func() (quackquery.Capability, error) {
			return github.New(cfg.GitHub.Token)
		}},
		{Name: "applauncher", Init: func() (quackquery.Capability, error) {
			return applauncher.New()
		}},
		{Name: "web", Init: func() (quackquery.Capability, error) {
			return web.New(assistant)
		}},
	}
	registry := quackquery.NewRegistry(probes, quackquery.RegistryLogger(logger))
	if inst != nil {
		registry.Instrument(func(c quackquery.Capability) quackquery.Capability {
			return observer.WrapCapability(c, inst)
		})
	}
	for _, name := range []string{"file", "github", "applauncher", "web"} {
		if perr := registry.ProbeError(name); perr != nil {
			fmt.Fprintf(os.Stderr, "capability %s unavailable: %v\n", name, perr)
		}
	}

	// 6. Optional media inputs
	var recorder session.AudioRecorder
	var transcriber quackquery.Transcriber
	if t, terr := resolve.Transcriber(resolve.Config{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.Model,
	}); terr == nil {
		transcriber = t
		recorder = voice.NewRecorder(voice.WithDuration(cfg.Voice.RecordSeconds))
	}
	capturer := screenshot.NewCapturer()

	// 7. Run the interactive loop
	s := session.New(session.Deps{
		Console:     console.New(os.Stdin, os.Stdout),
		Assistant:   assistant,
		Registry:    registry,
		Recorder:    recorder,
		Transcriber: transcriber,
		Capturer:    capturer,
		Logger:      logger,
	})
	if err := s.Run(ctx); err != nil {
		log.Fatal(err)
	}
}
