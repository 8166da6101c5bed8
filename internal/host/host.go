// Package host runs a tracker module the way the camera host does: grab a
// frame, process it, hand the output to viewers and write the serial
// message.
package host

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/ironsheep/retrotape-tracker/internal/log"
	"github.com/ironsheep/retrotape-tracker/internal/source"
	"github.com/ironsheep/retrotape-tracker/internal/store"
	"github.com/ironsheep/retrotape-tracker/internal/tracker"
)

// maxSourceErrors is how many consecutive failed grabs end the run.
const maxSourceErrors = 10

// Sink receives every processed frame.
type Sink interface {
	Publish(res *tracker.Result) error
}

// Recorder stores a report per processed frame.
type Recorder interface {
	Record(ctx context.Context, rep store.Report) (int64, error)
}

// Controller serves control requests read from r, replying on w. The
// server package's Server implements it.
type Controller interface {
	Serve(ctx context.Context, r io.Reader, w io.Writer) error
}

// Options configures a Runner.
type Options struct {
	// Serial receives one line per frame with a serial message. Nil
	// disables serial output.
	Serial io.Writer

	// Control, if set, is served from ControlIn while frames are processed,
	// so parameters can be tuned on a live stream. Replies share the
	// serial writer, as on the camera's serial port; with Serial nil they
	// are discarded.
	Control   Controller
	ControlIn io.Reader

	// Sinks receive every result, including frames without a target.
	Sinks []Sink

	// Recorder, if set, stores a report per frame.
	Recorder Recorder

	// FPS caps the processing rate. 0 processes frames as fast as the
	// source delivers them.
	FPS float64

	// Headless skips composing output frames.
	Headless bool

	// MaxFrames stops the run after this many frames. 0 means no limit.
	MaxFrames int

	Logger *slog.Logger
}

// Stats counts what a run did.
type Stats struct {
	Frames  uint64        `json:"frames"`
	Found   uint64        `json:"found"`
	Errors  uint64        `json:"errors"`
	Elapsed time.Duration `json:"elapsed_ns"`
}

// Runner feeds frames from a source through a module.
type Runner struct {
	module tracker.Module
	source source.Source
	opts   Options
}

// New creates a Runner.
func New(m tracker.Module, src source.Source, opts Options) *Runner {
	if opts.Logger == nil {
		opts.Logger = log.L()
	}
	return &Runner{module: m, source: src, opts: opts}
}

// Run processes frames until the source is exhausted, MaxFrames is reached
// or ctx is canceled. Per-frame processing failures are logged and counted;
// failing to write the serial message ends the run.
func (r *Runner) Run(ctx context.Context) (Stats, error) {
	var stats Stats
	start := time.Now()

	logger := r.opts.Logger.With("module", r.module.Name())

	serial := r.opts.Serial
	if serial != nil {
		serial = &lockedWriter{w: serial}
	}
	if r.opts.Control != nil && r.opts.ControlIn != nil {
		replies := serial
		if replies == nil {
			replies = io.Discard
		}
		go func() {
			if err := r.opts.Control.Serve(ctx, r.opts.ControlIn, replies); err != nil && ctx.Err() == nil {
				logger.Warn("control channel closed", "error", err)
			}
		}()
	}

	var tick <-chan time.Time
	if r.opts.FPS > 0 {
		ticker := time.NewTicker(time.Duration(float64(time.Second) / r.opts.FPS))
		defer ticker.Stop()
		tick = ticker.C
	}

	sourceErrors := 0
	for {
		if r.opts.MaxFrames > 0 && stats.Frames >= uint64(r.opts.MaxFrames) {
			return r.finish(logger, stats, start), nil
		}
		if tick != nil {
			select {
			case <-ctx.Done():
				return r.finish(logger, stats, start), nil
			case <-tick:
			}
		}

		frame, err := r.source.Next(ctx)
		switch {
		case err == nil:
			sourceErrors = 0
		case errors.Is(err, io.EOF):
			return r.finish(logger, stats, start), nil
		case ctx.Err() != nil:
			return r.finish(logger, stats, start), nil
		default:
			stats.Errors++
			sourceErrors++
			logger.Warn("failed to grab frame", "error", err)
			if sourceErrors >= maxSourceErrors {
				return r.finish(logger, stats, start), errors.Wrap(err, "source keeps failing")
			}
			continue
		}

		res, err := r.process(ctx, frame)
		if err != nil {
			if ctx.Err() != nil {
				return r.finish(logger, stats, start), nil
			}
			stats.Errors++
			logger.Warn("failed to process frame", "seq", frame.Seq, "error", err)
			continue
		}

		stats.Frames++
		if res.Found() {
			stats.Found++
		}

		if res.Serial != "" && serial != nil {
			if _, err := fmt.Fprintln(serial, res.Serial); err != nil {
				return r.finish(logger, stats, start), errors.Wrap(err, "write serial")
			}
		}
		for _, sink := range r.opts.Sinks {
			if err := sink.Publish(res); err != nil {
				logger.Warn("failed to publish frame", "seq", res.Seq, "error", err)
			}
		}
		if r.opts.Recorder != nil {
			if _, err := r.opts.Recorder.Record(ctx, store.NewReport(r.module.Name(), res)); err != nil {
				logger.Warn("failed to record frame", "seq", res.Seq, "error", err)
			}
		}
	}
}

func (r *Runner) process(ctx context.Context, f tracker.Frame) (*tracker.Result, error) {
	if r.opts.Headless {
		return r.module.ProcessNoUSB(ctx, f)
	}
	return r.module.Process(ctx, f)
}

func (r *Runner) finish(logger *slog.Logger, stats Stats, start time.Time) Stats {
	stats.Elapsed = time.Since(start)
	logger.Info("run finished",
		"frames", stats.Frames,
		"found", stats.Found,
		"errors", stats.Errors,
		"elapsed", stats.Elapsed)
	return stats
}

// lockedWriter serializes serial messages and control replies.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
