package commands

import (
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ironsheep/retrotape-tracker/internal/host"
	"github.com/ironsheep/retrotape-tracker/internal/log"
	"github.com/ironsheep/retrotape-tracker/internal/server"
	"github.com/ironsheep/retrotape-tracker/internal/source"
	"github.com/ironsheep/retrotape-tracker/internal/store"
	"github.com/ironsheep/retrotape-tracker/internal/stream"
	"github.com/ironsheep/retrotape-tracker/internal/tracker"
)

// run: grab frames, process them and emit serial messages until the source
// ends or the process is interrupted.
func runCmd() *cobra.Command {
	var (
		src        string
		loop       bool
		serialPath string
		control    string
		streamAddr string
		dbPath     string
		fps        float64
		headless   bool
		maxFrames  int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process frames from a camera or a directory of captures",
		Long: `Process frames from a camera ("camera:0") or a directory of captured
images. Serial messages are written one per line to --serial ("-" for
stdout). With --stream, composed output frames are sent to WebSocket viewers
on /ws. With --control, text commands and JSON-RPC requests are read while
frames are processed ("-" for stdin) and answered on the serial output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("source") {
				cfg.Source = src
			}
			if flags.Changed("loop") {
				cfg.Loop = loop
			}
			if flags.Changed("serial") {
				cfg.SerialPath = serialPath
			}
			if flags.Changed("control") {
				cfg.Control = control
			}
			if flags.Changed("stream") {
				cfg.StreamAddr = streamAddr
			}
			if flags.Changed("db") {
				cfg.DBPath = dbPath
			}
			if cfg.Source == "" {
				return errors.New("no source: use --source or RETROTAPE_SOURCE")
			}

			m, err := loadModule()
			if err != nil {
				return err
			}

			var format tracker.VideoFormat
			if vm := m.Info().Mapping; vm != nil {
				format = vm.Camera
				headless = headless || vm.Headless()
				if !flags.Changed("fps") {
					fps = vm.Camera.FPS
				}
			}

			frames, err := source.Open(cfg.Source, format, cfg.Loop)
			if err != nil {
				return err
			}
			defer frames.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts := host.Options{
				FPS:       fps,
				Headless:  headless,
				MaxFrames: maxFrames,
				Logger:    log.L(),
			}

			serial, err := openSerial(cfg.SerialPath, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if serial != nil {
				defer serial.Close()
				opts.Serial = serial
			}

			controlIn, err := openControl(cfg.Control, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if controlIn != nil {
				defer controlIn.Close()
				opts.Control = server.New(m, server.WithLogger(log.L()), server.WithVersion(version))
				opts.ControlIn = controlIn
			}

			if cfg.StreamAddr != "" {
				viewers := stream.NewServer(stream.NewHub(log.L()), m.Name(), log.L())
				go func() {
					if err := viewers.ListenAndServe(ctx, cfg.StreamAddr); err != nil {
						log.Error("viewer stream stopped", "error", err)
					}
				}()
				opts.Sinks = append(opts.Sinks, viewers)
			}

			if cfg.DBPath != "" {
				rec, err := store.Open(cfg.DBPath)
				if err != nil {
					return err
				}
				defer rec.Close()
				opts.Recorder = rec
			}

			stats, err := host.New(m, frames, opts).Run(ctx)
			if err != nil {
				return err
			}
			log.Debug("run stats", "frames", stats.Frames, "found", stats.Found, "errors", stats.Errors)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&src, "source", "s", "", `frame source: "camera:N", a directory or an image file`)
	f.BoolVar(&loop, "loop", false, "restart directory sources when they run out")
	f.StringVar(&serialPath, "serial", "-", `serial message destination, "-" for stdout, "" to disable`)
	f.StringVar(&control, "control", "", `control channel input, "-" for stdin; a tty or FIFO path also works`)
	f.StringVar(&streamAddr, "stream", "", "address for the WebSocket viewer stream, e.g. :8090")
	f.StringVar(&dbPath, "db", "", "SQLite file to record detections in")
	f.Float64Var(&fps, "fps", 0, "processing rate cap (default: mapping camera rate, else unlimited)")
	f.BoolVar(&headless, "headless", false, "do not compose output frames")
	f.IntVar(&maxFrames, "max-frames", 0, "stop after this many frames")
	return cmd
}

// nopCloser keeps stdout open when the serial writer is closed.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openControl returns the control channel input for path: "-" is stdin and
// an empty path disables it.
func openControl(path string, stdin io.Reader) (io.ReadCloser, error) {
	switch path {
	case "":
		return nil, nil
	case "-":
		return io.NopCloser(stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open control input")
	}
	return f, nil
}

// openSerial returns the serial message writer for path: "-" is stdout, an
// empty path disables serial output and anything else is opened for append,
// which also covers tty devices.
func openSerial(path string, stdout io.Writer) (io.WriteCloser, error) {
	switch path {
	case "":
		return nil, nil
	case "-":
		return nopCloser{stdout}, nil
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "open serial output")
	}
	return f, nil
}
