package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"acadrun/internal/engine"
	"acadrun/internal/fileutil"
	"acadrun/internal/history"
	"acadrun/internal/logging"
	"acadrun/internal/services"
)

const lockFileName = ".acadrun.lock"

// ErrOutputLocked reports that another batch holds the output directory.
var ErrOutputLocked = errors.New("output directory locked by another batch")

// Request describes one batch.
type Request struct {
	Inputs     []string
	Plugin     string
	Command    string
	OutputDir  string
	Stage      bool
	ShowWindow bool
}

// Item is the outcome for one drawing.
type Item struct {
	RunID      string
	Drawing    string
	OutputPath string
	Status     history.Status
	ExitCode   int
	Duration   time.Duration
	Error      string
}

// Summary aggregates a batch.
type Summary struct {
	Items    []Item
	Counts   map[history.Status]int
	Duration time.Duration
}

// Succeeded returns how many drawings produced a result.
func (s *Summary) Succeeded() int {
	return s.Counts[history.StatusCompleted]
}

// Recorder persists run records. *history.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, run *history.Run) error
}

// Option configures the processor.
type Option func(*Processor)

// WithRecorder records every run.
func WithRecorder(recorder Recorder) Option {
	return func(p *Processor) {
		p.recorder = recorder
	}
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logging.NewComponentLogger(logger, "batch")
		}
	}
}

// WithMetrics collects outcome metrics, written to metricsFile when non-empty.
func WithMetrics(metrics *Metrics, metricsFile string) Option {
	return func(p *Processor) {
		p.metrics = metrics
		p.metricsFile = strings.TrimSpace(metricsFile)
	}
}

// WithWorkDir sets where staged drawing copies are placed.
func WithWorkDir(dir string) Option {
	return func(p *Processor) {
		p.workDir = strings.TrimSpace(dir)
	}
}

// Processor runs batches through a single engine runner.
type Processor struct {
	runner      *engine.Runner
	recorder    Recorder
	logger      *slog.Logger
	metrics     *Metrics
	metricsFile string
	workDir     string
}

// NewProcessor constructs a Processor.
func NewProcessor(runner *engine.Runner, opts ...Option) (*Processor, error) {
	if runner == nil {
		return nil, errors.New("engine runner required")
	}
	p := &Processor{
		runner: runner,
		logger: logging.NewComponentLogger(nil, "batch"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run processes every input sequentially. Per-drawing failures are recorded
// in the summary; only setup failures and cancellation return an error.
func (p *Processor) Run(ctx context.Context, req Request) (*Summary, error) {
	if len(req.Inputs) == 0 {
		return nil, services.Wrap(services.ErrValidation, "batch", "run", "no input drawings", nil)
	}
	if strings.TrimSpace(req.OutputDir) == "" {
		return nil, services.Wrap(services.ErrValidation, "batch", "run", "output directory required", nil)
	}
	if _, err := engine.BuildScript(req.Plugin, req.Command, ""); err != nil {
		return nil, services.Wrap(services.ErrValidation, "batch", "run", "", err)
	}
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "batch", "output dir", req.OutputDir, err)
	}

	lock := flock.New(filepath.Join(req.OutputDir, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOutputLocked, req.OutputDir)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			p.logger.Warn("failed to release output lock", logging.Error(err))
		}
	}()

	if req.Stage {
		CleanStale(p.stageRoot(), staleStageAge, p.logger)
	}

	started := time.Now()
	summary := &Summary{Counts: make(map[history.Status]int)}
	names := make(map[string]int)

	p.logger.Info("batch started",
		logging.Int("drawings", len(req.Inputs)),
		logging.String(logging.FieldCommand, req.Command),
		logging.String("output_dir", req.OutputDir),
	)

	var runErr error
	for _, drawing := range req.Inputs {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		item := p.processOne(ctx, req, drawing, outputName(drawing, names))
		summary.Items = append(summary.Items, item)
		summary.Counts[item.Status]++
		p.metrics.Observe(item)
		if item.Status == history.StatusCanceled {
			runErr = ctx.Err()
			break
		}
	}
	summary.Duration = time.Since(started)

	p.metrics.Finish()
	if p.metrics != nil && p.metricsFile != "" {
		if err := p.metrics.WriteTextfile(p.metricsFile); err != nil {
			p.logger.Warn("write metrics textfile failed", logging.String("path", p.metricsFile), logging.Error(err))
		}
	}

	p.logger.Info("batch finished",
		logging.Int("completed", summary.Counts[history.StatusCompleted]),
		logging.Int("no_result", summary.Counts[history.StatusNoResult]),
		logging.Int("timed_out", summary.Counts[history.StatusTimedOut]),
		logging.Int("failed", summary.Counts[history.StatusFailed]),
		logging.Duration("duration", summary.Duration),
	)
	return summary, runErr
}

func (p *Processor) processOne(ctx context.Context, req Request, drawing, name string) Item {
	item := Item{RunID: uuid.NewString(), Drawing: drawing}
	ctx = services.WithRunID(ctx, item.RunID)
	ctx = services.WithDrawing(ctx, drawing)
	logger := logging.WithContext(ctx, p.logger)

	started := time.Now()
	record := &history.Run{
		ID:        item.RunID,
		Drawing:   drawing,
		Plugin:    req.Plugin,
		Command:   req.Command,
		StartedAt: started.UTC(),
	}

	target := drawing
	if req.Stage {
		stageDir := filepath.Join(p.stageRoot(), item.RunID)
		defer func() {
			if err := os.RemoveAll(stageDir); err != nil {
				logger.Warn("remove stage dir failed", logging.String("path", stageDir), logging.Error(err))
			}
		}()
		staged, err := fileutil.StageCopy(drawing, stageDir)
		if err != nil {
			return p.finish(ctx, logger, item, record, started, engine.RunReport{}, nil,
				services.Wrap(services.ErrExternalTool, "batch", "stage", drawing, err))
		}
		target = staged
	}

	raw, report, err := engine.ProcessRaw(ctx, p.runner, engine.Invocation{
		Drawing:    target,
		Plugin:     req.Plugin,
		Command:    req.Command,
		ShowWindow: req.ShowWindow,
	})
	if err == nil && raw != nil {
		item.OutputPath = filepath.Join(req.OutputDir, name+".json")
		if writeErr := fileutil.WriteFileAtomic(item.OutputPath, raw, 0o644); writeErr != nil {
			err = services.Wrap(services.ErrExternalTool, "batch", "write result", item.OutputPath, writeErr)
			item.OutputPath = ""
		}
	}
	return p.finish(ctx, logger, item, record, started, report, raw, err)
}

func (p *Processor) finish(ctx context.Context, logger *slog.Logger, item Item, record *history.Run, started time.Time, report engine.RunReport, raw []byte, err error) Item {
	item.Duration = time.Since(started)
	item.ExitCode = report.ExitCode

	item.Status = services.RunStatus(err, report.TimedOut, raw != nil)
	if err != nil {
		item.Error = err.Error()
	}

	if item.Status == history.StatusCompleted {
		logger.Info("drawing processed", logging.String("output", item.OutputPath), logging.Duration("duration", item.Duration))
	} else {
		logger.Warn("drawing not processed", logging.String("status", string(item.Status)), logging.String("error", item.Error))
	}

	if p.recorder == nil {
		return item
	}
	record.Status = item.Status
	record.PID = report.PID
	record.Duration = item.Duration
	record.ResultJSON = string(raw)
	record.OutputPath = item.OutputPath
	record.ErrorMessage = item.Error
	record.FinishedAt = time.Now().UTC()
	if report.Exited {
		code := report.ExitCode
		record.ExitCode = &code
	}
	// Record even when the batch context is canceled.
	if recErr := p.recorder.Record(context.WithoutCancel(ctx), record); recErr != nil {
		logger.Warn("record history failed", logging.Error(recErr))
	}
	return item
}

func (p *Processor) stageRoot() string {
	if p.workDir != "" {
		return p.workDir
	}
	return filepath.Join(os.TempDir(), "acadrun-stage")
}

// outputName derives a unique result file stem for drawing.
func outputName(drawing string, used map[string]int) string {
	base := strings.TrimSuffix(filepath.Base(drawing), filepath.Ext(drawing))
	key := strings.ToLower(base)
	used[key]++
	if n := used[key]; n > 1 {
		return base + "-" + strconv.Itoa(n)
	}
	return base
}
