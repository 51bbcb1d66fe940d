package trainrun

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"bricsview/internal/checkpoint"
	"bricsview/internal/config"
	"bricsview/internal/logging"
)

// Options controls batch behavior.
type Options struct {
	Filter       Filter
	DryRun       bool
	SkipExisting bool
}

// Result is the outcome of one target in a batch.
type Result struct {
	Target   Target
	RunID    string
	Status   string
	ExitCode int
	Err      error
}

// Runner executes the configured trainer over discovered targets.
type Runner struct {
	cfg      *config.Config
	logger   *slog.Logger
	resolver *checkpoint.Resolver
	ledger   *Ledger

	// Output receives trainer stdout/stderr. Defaults to os.Stdout.
	Output io.Writer
}

// NewRunner constructs a runner. A nil ledger disables run recording, which
// dry runs use.
func NewRunner(cfg *config.Config, ledger *Ledger, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "trainrun"),
		resolver: checkpoint.NewResolver(cfg),
		ledger:   ledger,
		Output:   os.Stdout,
	}
}

// Run discovers targets and trains each in sequence. It keeps going after
// individual failures and returns one result per target.
func (r *Runner) Run(ctx context.Context, opts Options) ([]Result, error) {
	targets, err := FindTargets(r.cfg, opts.Filter)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(targets))
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, r.runOne(ctx, target, opts))
	}
	return results, nil
}

func (r *Runner) runOne(ctx context.Context, target Target, opts Options) Result {
	result := Result{Target: target}

	if opts.SkipExisting {
		if resolved := r.resolver.ResolveLatest(target.ResultDir); resolved.Found {
			result.Status = RunStatusSkipped
			r.record(ctx, &result, target, "")
			r.logger.Info("skipping trained sequence",
				logging.String(logging.FieldSession, target.Date+"/"+target.Sequence),
				logging.Int(logging.FieldVersion, resolved.Version))
			return result
		}
	}

	args := r.commandArgs(target)
	commandLine := r.cfg.Trainer.Command + " " + strings.Join(args, " ")

	if opts.DryRun {
		result.Status = RunStatusDryRun
		r.record(ctx, &result, target, commandLine)
		fmt.Fprintf(r.output(), "dry-run: %s\n", commandLine)
		return result
	}

	result.Status = RunStatusRunning
	r.record(ctx, &result, target, commandLine)

	r.logger.Info("training started",
		logging.String(logging.FieldSession, target.Date+"/"+target.Sequence),
		logging.String("data_dir", target.DataDir))
	started := time.Now()

	cmd := exec.CommandContext(ctx, r.cfg.Trainer.Command, args...)
	cmd.Stdout = r.output()
	cmd.Stderr = r.output()
	err := cmd.Run()

	switch {
	case err == nil:
		result.Status = RunStatusCompleted
		r.logger.Info("training completed",
			logging.String(logging.FieldSession, target.Date+"/"+target.Sequence),
			logging.Duration("train_time", time.Since(started)))
	default:
		result.Status = RunStatusFailed
		result.Err = err
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		}
		r.logger.Error("training failed",
			logging.String(logging.FieldEventType, "train_failed"),
			logging.String(logging.FieldSession, target.Date+"/"+target.Sequence),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "inspect trainer output above for the underlying failure"))
	}

	r.finish(ctx, result)
	return result
}

// commandArgs builds the trainer invocation for one target.
func (r *Runner) commandArgs(target Target) []string {
	args := []string{r.cfg.Trainer.Script,
		"--data-dir", target.DataDir,
		"--result-dir", target.ResultDir,
		"--disable-viewer",
	}
	if r.cfg.Trainer.DataFactor > 0 {
		args = append(args, "--data-factor", strconv.Itoa(r.cfg.Trainer.DataFactor))
	}
	return args
}

func (r *Runner) record(ctx context.Context, result *Result, target Target, commandLine string) {
	if r.ledger == nil {
		return
	}
	id, err := r.ledger.Begin(ctx, target, commandLine, result.Status)
	if err != nil {
		r.logger.Warn("failed to record run", logging.Error(err))
		return
	}
	result.RunID = id
}

func (r *Runner) finish(ctx context.Context, result Result) {
	if r.ledger == nil || result.RunID == "" {
		return
	}
	errText := ""
	if result.Err != nil {
		errText = result.Err.Error()
	}
	if err := r.ledger.Finish(ctx, result.RunID, result.Status, result.ExitCode, errText); err != nil {
		r.logger.Warn("failed to finalize run record", logging.Error(err))
	}
}

func (r *Runner) output() io.Writer {
	if r.Output != nil {
		return r.Output
	}
	return os.Stdout
}
