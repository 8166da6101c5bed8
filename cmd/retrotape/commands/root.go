package commands

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ironsheep/retrotape-tracker/internal/config"
	"github.com/ironsheep/retrotape-tracker/internal/log"
	"github.com/ironsheep/retrotape-tracker/internal/tracker"
)

var (
	cfg     *config.Config
	envFile string

	moduleName string
	backend    string
	mapping    string
	paramsFile string
	logLevel   string
	logFormat  string
)

// Execute runs the root command.
func Execute() error {
	root := &cobra.Command{
		Use:           "retrotape",
		Short:         "Retro-reflective tape tracker for FRC vision cameras",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var files []string
			if envFile != "" {
				files = append(files, envFile)
			}
			c, err := config.Load(files...)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			override := func(name string, dst *string, value string) {
				if flags.Changed(name) {
					*dst = value
				}
			}
			override("module", &c.Module, moduleName)
			override("backend", &c.Backend, backend)
			override("mapping", &c.Mapping, mapping)
			override("params", &c.ParamsFile, paramsFile)
			override("log-level", &c.LogLevel, logLevel)
			override("log-format", &c.LogFormat, logFormat)

			log.Init(c.LogLevel, c.LogFormat)
			cfg = c
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&envFile, "env-file", "", "env file to load (default .env if present)")
	pf.StringVarP(&moduleName, "module", "m", tracker.ModuleRetroTape, "module to load")
	pf.StringVar(&backend, "backend", tracker.BackendNative, "vision backend: native or gocv")
	pf.StringVar(&mapping, "mapping", "", `video mapping, e.g. "YUYV 320 240 30 YUYV 320 240 30 SPORK3196 RetroTapeTracker"`)
	pf.StringVar(&paramsFile, "params", "", "parameter file with name = value lines")
	pf.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	pf.StringVar(&logFormat, "log-format", "text", "log format: text or json")

	root.AddCommand(serveCmd(), runCmd(), processCmd(), paramsCmd(), modulesCmd(), reportCmd(), versionCmd())
	return root.Execute()
}

// loadModule builds the configured module and applies the parameter file.
func loadModule() (tracker.Module, error) {
	b, err := tracker.NewBackend(cfg.Backend)
	if err != nil {
		return nil, err
	}
	vm, err := cfg.VideoMapping()
	if err != nil {
		return nil, err
	}

	name := cfg.Module
	if vm != nil && vm.Module != "" && vm.Module != name {
		log.Warn("video mapping names another module, using the mapping", "flag", name, "mapping", vm.Module)
		name = vm.Module
	}

	m, err := tracker.New(name, tracker.Options{Backend: b, Mapping: vm, Logger: log.L()})
	if err != nil {
		return nil, err
	}
	if cfg.ParamsFile != "" {
		if err := m.Params().LoadFile(cfg.ParamsFile); err != nil {
			return nil, errors.Wrap(err, "load parameters")
		}
	}
	log.Info("module loaded", "module", m.Name(), "backend", b.Name())
	return m, nil
}
