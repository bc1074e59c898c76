package di

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/Ajay03299/DevForge/internal/app"
	appconfig "github.com/Ajay03299/DevForge/internal/app/config"
	"github.com/Ajay03299/DevForge/internal/application/port/output"
	"github.com/Ajay03299/DevForge/internal/application/service"
	"github.com/Ajay03299/DevForge/internal/application/usecase/execution"
	"github.com/Ajay03299/DevForge/internal/domain/repair"
	"github.com/Ajay03299/DevForge/internal/embed"
	infraconfig "github.com/Ajay03299/DevForge/internal/infra/config"
	dfs "github.com/Ajay03299/DevForge/internal/infra/fs"
	"github.com/Ajay03299/DevForge/internal/infra/metrics"
	"github.com/Ajay03299/DevForge/internal/infra/sandbox"
	sqliterepo "github.com/Ajay03299/DevForge/internal/infrastructure/persistence/sqlite"
	"github.com/Ajay03299/DevForge/internal/interface/external/claudecli"
	"github.com/Ajay03299/DevForge/internal/interface/external/ollama"
	"github.com/Ajay03299/DevForge/internal/interface/external/openaicompat"
)

// ErrHistoryDisabled is returned by Ledger when history_db is "off"
var ErrHistoryDisabled = errors.New("session history is disabled (history_db is off)")

// Container is the DI container that holds all dependencies
// This implements manual dependency injection for Clean Architecture
type Container struct {
	// Infrastructure Layer - File system and sandbox
	fs       afero.Fs
	profiles *sandbox.Profiles
	executor *sandbox.Executor
	store    *dfs.BackupManager
	locker   output.PathLocker

	// Infrastructure Layer - Completion backend
	gateway output.CompletionGateway

	// Infrastructure Layer - Observers
	db      *sql.DB
	ledger  *sqliterepo.SessionLedger
	journal *app.JournalObserver
	metrics *metrics.RepairMetrics

	// Application Layer - Services
	patcher *service.PatchService
	differ  *service.DiffReportService

	// Configuration
	config Config
}

// Config holds configuration for the container
type Config struct {
	Settings appconfig.Config
	Fs       afero.Fs                 // Defaults to the OS file system
	Gateway  output.CompletionGateway // Overrides the configured backend
}

// NewContainer creates and initializes the DI container
func NewContainer(ctx context.Context, config Config) (*Container, error) {
	if config.Settings == nil {
		return nil, errors.New("container requires settings")
	}
	c := &Container{config: config, fs: config.Fs}
	if c.fs == nil {
		c.fs = afero.NewOsFs()
	}

	// Initialize dependencies in dependency order
	if err := c.initializeInfrastructure(ctx); err != nil {
		c.closeDB()
		return nil, fmt.Errorf("failed to initialize infrastructure: %w", err)
	}

	if err := c.initializeApplication(); err != nil {
		c.closeDB()
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}

	return c, nil
}

// initializeInfrastructure initializes infrastructure layer components
func (c *Container) initializeInfrastructure(ctx context.Context) error {
	settings := c.config.Settings
	paths := app.PathsFor(settings.Home())

	// 1. Language profiles and sandbox
	profiles := sandbox.DefaultProfiles()
	if p := settings.LanguagesPath(); p != "" {
		loaded, err := sandbox.LoadProfiles(c.fs, p)
		if err != nil {
			return err
		}
		profiles = loaded
	}
	c.profiles = profiles
	c.executor = sandbox.NewExecutor(sandbox.Config{
		Profiles:    profiles,
		OutputLimit: settings.OutputLimitBytes(),
	})

	// 2. Target store and path lock
	c.store = dfs.NewBackupManager(c.fs)
	c.locker = dfs.NewFileLocker(paths.Locks)

	// 3. Completion backend
	if c.config.Gateway != nil {
		c.gateway = c.config.Gateway
	} else {
		gateway, err := newGateway(settings)
		if err != nil {
			return err
		}
		c.gateway = gateway
	}

	// 4. Observers; a broken sink is logged and skipped
	if p := settings.JournalPath(); p != "" {
		c.journal = app.NewJournalObserver(app.NewJournalWriter(c.fs, p))
	}
	if p := settings.HistoryDB(); p != "" {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			app.GetLogger().Warn("session history disabled: %v", err)
		} else if db, err := sqliterepo.Open(ctx, p); err != nil {
			app.GetLogger().Warn("session history disabled: %v", err)
		} else {
			c.db = db
			c.ledger = sqliterepo.NewSessionLedger(db)
		}
	}
	if settings.MetricsTextfile() != "" {
		c.metrics = metrics.NewRepairMetrics()
	}

	return nil
}

// newGateway builds the configured completion backend
func newGateway(settings appconfig.Config) (output.CompletionGateway, error) {
	switch settings.Backend() {
	case infraconfig.BackendOllama:
		return ollama.NewClient(ollama.Config{
			BaseURL: settings.OllamaURL(),
			Model:   settings.Model(),
		}), nil
	case infraconfig.BackendOpenAI:
		return openaicompat.NewClient(openaicompat.Config{
			BaseURL: settings.OpenAIBaseURL(),
			APIKey:  os.Getenv(settings.OpenAIAPIKeyEnv()),
			Model:   settings.Model(),
		})
	case infraconfig.BackendClaudeCLI:
		return claudecli.Runner{
			Bin:     settings.ClaudeBin(),
			Timeout: settings.RequestTimeout(),
		}, nil
	default:
		return nil, fmt.Errorf("unknown backend: %s", settings.Backend())
	}
}

// initializeApplication initializes application layer components
func (c *Container) initializeApplication() error {
	promptText, err := c.repairPrompt()
	if err != nil {
		return err
	}

	patcher, err := service.NewPatchService(c.gateway, c.profiles, promptText, service.PatchOptions{
		Temperature: c.config.Settings.Temperature(),
		Timeout:     c.config.Settings.RequestTimeout(),
	})
	if err != nil {
		return err
	}
	c.patcher = patcher
	c.differ = service.NewDiffReportService()
	return nil
}

// repairPrompt prefers the user's copy written by init over the built-in one
func (c *Container) repairPrompt() (string, error) {
	path := app.PathsFor(c.config.Settings.Home()).RepairPrompt
	data, err := afero.ReadFile(c.fs, path)
	switch {
	case err == nil:
		return string(data), nil
	case errors.Is(err, os.ErrNotExist):
		return embed.RepairPrompt(), nil
	default:
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
}

// RepairUseCase wires a session use case reporting to presenter and every
// configured sink.
func (c *Container) RepairUseCase(presenter output.RepairObserver) *execution.RunRepairUseCase {
	observers := output.Observers{}
	if presenter != nil {
		observers = append(observers, presenter)
	}
	if c.journal != nil {
		observers = append(observers, c.journal)
	}
	if c.ledger != nil {
		observers = append(observers, c.ledger)
	}
	if c.metrics != nil {
		observers = append(observers, c.metrics)
	}

	strategy, err := repair.ParseMatchStrategy(c.config.Settings.MatchStrategy())
	if err != nil {
		strategy = repair.DefaultMatchStrategy
	}

	return execution.NewRunRepairUseCase(
		c.store,
		c.locker,
		c.executor,
		c.patcher,
		c.differ,
		observers,
		execution.RepairDefaults{
			MaxAttempts:   c.config.Settings.MaxAttempts(),
			Timeout:       c.config.Settings.Timeout(),
			MatchStrategy: strategy,
		},
	)
}

// Store returns the target store for restore and diff
func (c *Container) Store() *dfs.BackupManager {
	return c.store
}

// Locker returns the lock that serializes writers of one target
func (c *Container) Locker() output.PathLocker {
	return c.locker
}

// Differ returns the diff report service
func (c *Container) Differ() *service.DiffReportService {
	return c.differ
}

// Profiles returns the language profiles in use
func (c *Container) Profiles() *sandbox.Profiles {
	return c.profiles
}

// Gateway returns the completion backend
func (c *Container) Gateway() output.CompletionGateway {
	return c.gateway
}

// Ledger returns the session ledger
func (c *Container) Ledger() (*sqliterepo.SessionLedger, error) {
	if c.ledger == nil {
		return nil, ErrHistoryDisabled
	}
	return c.ledger, nil
}

// Close exports metrics and releases the database
func (c *Container) Close() error {
	var errs []error
	if c.metrics != nil {
		if err := c.metrics.WriteTextfile(c.config.Settings.MetricsTextfile()); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.closeDB(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Container) closeDB() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
