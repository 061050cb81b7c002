package main

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/Lin-Jiong-HDU/nlsh/internal/ai"
	"github.com/Lin-Jiong-HDU/nlsh/internal/ai/ollama"
	"github.com/Lin-Jiong-HDU/nlsh/internal/ai/openai"
	"github.com/Lin-Jiong-HDU/nlsh/internal/command"
	"github.com/Lin-Jiong-HDU/nlsh/internal/core"
	"github.com/Lin-Jiong-HDU/nlsh/internal/core/backup"
	"github.com/Lin-Jiong-HDU/nlsh/internal/core/security"
	"github.com/Lin-Jiong-HDU/nlsh/internal/intent"
	"github.com/Lin-Jiong-HDU/nlsh/internal/interpret"
	"github.com/Lin-Jiong-HDU/nlsh/internal/logging"
	"github.com/Lin-Jiong-HDU/nlsh/internal/plugin"
	"github.com/Lin-Jiong-HDU/nlsh/internal/session"
	"github.com/Lin-Jiong-HDU/nlsh/internal/storage"
	"github.com/Lin-Jiong-HDU/nlsh/internal/terminal"
)

// availabilityTimeout bounds the startup probe of a local Ollama server.
const availabilityTimeout = 2 * time.Second

// flags holds the persistent command-line flags.
type flags struct {
	mode    string
	dialect string
	verbose bool
}

// app is everything a command needs, built once per invocation.
type app struct {
	cfg       *storage.Config
	log       *zap.Logger
	actions   *logging.ActionLog
	backend   ai.Backend
	cache     *ai.CachedBackend
	registry  *plugin.Registry
	ledger    *backup.Ledger
	assistant *interpret.Assistant
	mode      session.Mode
	dialect   command.Dialect
}

func newApp(f flags) (*app, error) {
	cfg, err := storage.InitConfig()
	if err != nil {
		return nil, err
	}

	if f.mode != "" {
		m, err := session.ParseMode(f.mode)
		if err != nil {
			return nil, err
		}
		cfg.Session.DefaultMode = m.String()
	}
	if f.dialect != "" {
		if _, err := command.ParseDialect(f.dialect, runtime.GOOS); err != nil {
			return nil, err
		}
		cfg.Shell.Dialect = f.dialect
	}

	log, err := logging.New(cfg.Logging.Dir, cfg.Logging.Level, f.verbose)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		log:     log,
		mode:    cfg.Mode(),
		dialect: cfg.Dialect(),
	}

	if a.actions, err = logging.OpenActionLog(cfg.Logging.Dir); err != nil {
		log.Warn("action log disabled", zap.Error(err))
	}

	a.backend = newBackend(cfg.AI)
	if ttl := cfg.AI.CacheTTLDuration(); ttl > 0 {
		a.cache = ai.NewCachedBackend(a.backend, ttl)
		a.backend = a.cache
	}
	a.assistant = interpret.NewAssistant(a.backend, cfg.AI.TimeoutDuration(), log)

	if cfg.Plugins.Enabled {
		a.registry = plugin.Load(cfg.Plugins.Dir, log)
	} else {
		a.registry = plugin.NewRegistry(plugin.Builtins()...)
	}

	if a.ledger, err = backup.Open(cfg.Backup.Dir, log); err != nil {
		a.Close()
		return nil, err
	}

	log.Debug("nlsh started",
		zap.String("mode", a.mode.String()),
		zap.String("dialect", a.dialect.String()),
		zap.String("provider", cfg.AI.Provider),
		zap.Int("plugins", a.registry.Len()))
	return a, nil
}

// newBackend selects the generative backend named by the config.
func newBackend(c storage.AIConfig) ai.Backend {
	switch c.Provider {
	case storage.ProviderOllamaCLI:
		return ollama.NewCLI(c.Model)
	case storage.ProviderOpenAI:
		return openai.NewClient(c.APIKey, c.Model, c.BaseURL)
	default:
		return ollama.NewClient(c.BaseURL, c.Model)
	}
}

// newEngine wires the pipeline with console as its UI.
func (a *app) newEngine(console *terminal.Console) *core.Engine {
	vocab := append(intent.Vocabulary(), a.registry.Intents()...)
	return core.NewEngine(core.Options{
		Resolver:  intent.NewResolver(intent.BaseTable(), a.registry.Tables()...),
		Extractor: intent.NewExtractor(),
		Interpreter: interpret.New(interpret.Options{
			Backend:         a.backend,
			Timeout:         a.cfg.AI.TimeoutDuration(),
			LowFloor:        a.cfg.Interpret.LowFloor,
			AcceptThreshold: a.cfg.Interpret.AcceptThreshold,
			MaxSuggestions:  a.cfg.Interpret.MaxSuggestions,
			Vocabulary:      vocab,
			Logger:          a.log,
		}),
		Assistant:     a.assistant,
		Synthesizer:   command.NewSynthesizer(a.registry),
		Gate:          security.NewGate(&a.cfg.Security, console),
		Ledger:        a.ledger,
		Runner:        core.NewExecutor(a.dialect, a.cfg.Shell.TimeoutDuration()),
		Dialect:       a.dialect,
		Chooser:       console,
		Reporter:      console,
		PluginPhrases: a.registry.Tables(),
		Actions:       a.actions,
		Logger:        a.log,
	})
}

// checkBackend reports an unreachable local Ollama server.
func (a *app) checkBackend(ctx context.Context) error {
	if a.cfg.AI.Provider != storage.ProviderOllama {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, availabilityTimeout)
	defer cancel()
	return ollama.NewClient(a.cfg.AI.BaseURL, a.cfg.AI.Model).Available(ctx)
}

// saveMode persists m as the default mode.
func (a *app) saveMode(m session.Mode) error {
	a.cfg.Session.DefaultMode = m.String()
	if err := storage.SaveConfig(a.cfg); err != nil {
		return fmt.Errorf("failed to save mode: %w", err)
	}
	return nil
}

// Close releases the cache janitor and flushes the logs.
func (a *app) Close() {
	if a == nil {
		return
	}
	if a.cache != nil {
		a.cache.Close()
	}
	if err := a.actions.Close(); err != nil {
		a.log.Warn("failed to close action log", zap.Error(err))
	}
	_ = a.log.Sync()
}
