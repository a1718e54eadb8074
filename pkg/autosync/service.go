package autosync

import (
	"context"
	"sync"
	"time"

	"github.com/bookarr/bookarr/pkg/bookshelf"
	"github.com/bookarr/bookarr/pkg/config"
	"github.com/bookarr/bookarr/pkg/importer"
	"github.com/bookarr/bookarr/pkg/settings"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

// ErrNotConfigured is returned when a sync is requested before the
// media-library base URL and API key have been saved in settings.
var ErrNotConfigured = errors.New("media library base URL and API key are not configured")

// upstream is the slice of the bookshelf client the scheduler needs. It's an
// interface so tests can run cycles without a live server.
type upstream interface {
	ListItems(ctx context.Context) ([]bookshelf.Item, error)
	Normalize(item bookshelf.Item) bookshelf.NormalizedItem
}

// Result is the outcome of the most recent sync cycle. Exactly one of
// ImportedCount or Error is set.
type Result struct {
	ImportedCount *int   `json:"imported_count,omitempty"`
	Timestamp     string `json:"timestamp,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Status is a point-in-time snapshot of the scheduler.
type Status struct {
	Enabled       bool    `json:"enabled"`
	IntervalHours int     `json:"interval_hours"`
	LastRun       *string `json:"last_run"`
	LastResult    *Result `json:"last_result"`
}

// Service runs the media-library import on a fixed interval in a background
// goroutine. State lives in memory only; after a restart the scheduler comes
// back disabled.
type Service struct {
	log             logger.Logger
	importService   *importer.Service
	settingsService *settings.Service
	newClient       func(baseURL, token string) upstream

	// mu guards the scheduler state below.
	mu            sync.Mutex
	enabled       bool
	intervalHours int
	lastRun       *time.Time
	lastResult    *Result
	stop          chan struct{}
	running       bool

	// runMu serializes sync cycles so a manual trigger can't interleave with
	// the background worker.
	runMu sync.Mutex
}

func NewService(db *bun.DB, cfg *config.Config) *Service {
	libraryName := cfg.BookshelfLibraryName

	return &Service{
		log:             logger.New(),
		importService:   importer.NewService(db),
		settingsService: settings.NewService(db),
		newClient: func(baseURL, token string) upstream {
			return bookshelf.New(baseURL, token, bookshelf.ClientOptions{LibraryName: libraryName})
		},
		intervalHours: cfg.SyncIntervalHours,
	}
}

// Configure enables or disables the scheduler and updates its interval.
// Enabling requires the media-library connection to be configured; disabling
// always succeeds. Reconfiguring while enabled leaves the worker running; it
// picks up the new interval at its next wakeup.
func (svc *Service) Configure(ctx context.Context, enabled bool, intervalHours int) error {
	if enabled {
		baseURL, apiKey, err := svc.settingsService.BookshelfConfig(ctx)
		if err != nil {
			return err
		}
		if baseURL == "" || apiKey == "" {
			return ErrNotConfigured
		}
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	if intervalHours > 0 {
		svc.intervalHours = intervalHours
	}
	svc.enabled = enabled

	if enabled {
		svc.startLocked()
	} else {
		svc.stopLocked()
	}

	return nil
}

// Start launches the background worker if it isn't already running.
func (svc *Service) Start() {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.enabled = true
	svc.startLocked()
}

// Stop signals the worker to exit. It doesn't wait for an in-flight cycle.
func (svc *Service) Stop() {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.enabled = false
	svc.stopLocked()
}

func (svc *Service) startLocked() {
	if svc.running {
		svc.log.Info("autosync already running")
		return
	}

	svc.stop = make(chan struct{})
	svc.running = true
	go svc.worker(svc.stop)

	svc.log.Info("autosync started", logger.Data{"interval_hours": svc.intervalHours})
}

func (svc *Service) stopLocked() {
	if !svc.running {
		return
	}

	close(svc.stop)
	svc.running = false

	svc.log.Info("autosync stopped")
}

// TriggerNow runs a single sync cycle synchronously, regardless of whether the
// scheduler is enabled. It shares the cycle lock with the background worker,
// so concurrent triggers run one at a time against a consistent database.
func (svc *Service) TriggerNow(ctx context.Context) (*Result, error) {
	result := svc.runCycle(ctx)
	if result.Error != "" {
		return result, errors.New(result.Error)
	}
	return result, nil
}

// Status returns a copy of the scheduler state.
func (svc *Service) Status() Status {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	status := Status{
		Enabled:       svc.enabled,
		IntervalHours: svc.intervalHours,
	}
	if svc.lastRun != nil {
		formatted := svc.lastRun.UTC().Format(time.RFC3339)
		status.LastRun = &formatted
	}
	if svc.lastResult != nil {
		result := *svc.lastResult
		status.LastResult = &result
	}

	return status
}

// worker runs cycles until stop is closed. The first cycle runs immediately;
// subsequent ones wait out the configured interval, which is re-read every
// iteration so Configure takes effect on the next wakeup.
func (svc *Service) worker(stop chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}

		ctx := svc.log.WithContext(context.Background())
		svc.runCycle(ctx)

		svc.mu.Lock()
		interval := time.Duration(svc.intervalHours) * time.Hour
		svc.mu.Unlock()

		select {
		case <-stop:
			return
		case <-time.After(interval):
		}
	}
}

// runCycle performs one full import: list the upstream library, normalize, and
// reconcile into the local tables. It records the outcome either way and never
// panics the worker on upstream failure.
func (svc *Service) runCycle(ctx context.Context) *Result {
	svc.runMu.Lock()
	defer svc.runMu.Unlock()

	log := svc.log.ID(uuid.New().String())
	log.Info("sync cycle started")

	result := svc.doCycle(log.WithContext(ctx))

	now := time.Now()
	svc.mu.Lock()
	if result.Error == "" {
		svc.lastRun = &now
	}
	svc.lastResult = result
	svc.mu.Unlock()

	if result.Error != "" {
		log.Err(errors.New(result.Error)).Error("sync cycle failed")
	} else {
		log.Info("sync cycle finished", logger.Data{"imported": *result.ImportedCount})
	}

	return result
}

func (svc *Service) doCycle(ctx context.Context) *Result {
	baseURL, apiKey, err := svc.settingsService.BookshelfConfig(ctx)
	if err != nil {
		return &Result{Error: err.Error()}
	}
	if baseURL == "" || apiKey == "" {
		return &Result{Error: ErrNotConfigured.Error()}
	}

	client := svc.newClient(baseURL, apiKey)

	items, err := client.ListItems(ctx)
	if err != nil {
		return &Result{Error: err.Error()}
	}

	batch := make([]bookshelf.NormalizedItem, 0, len(items))
	for _, item := range items {
		batch = append(batch, client.Normalize(item))
	}

	outcomes, err := svc.importService.Import(ctx, batch, false)
	if err != nil {
		return &Result{Error: err.Error()}
	}

	imported := 0
	for _, outcome := range outcomes {
		if outcome.Action == importer.ActionImported {
			imported++
		}
	}

	return &Result{
		ImportedCount: &imported,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}
}
