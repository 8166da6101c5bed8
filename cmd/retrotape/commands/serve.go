package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ironsheep/retrotape-tracker/internal/log"
	"github.com/ironsheep/retrotape-tracker/internal/server"
)

// serve: answer control requests on stdin/stdout until stdin closes.
func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the control channel on stdin/stdout",
		Long: `Run the control channel on stdin/stdout.

Each input line is either a JSON-RPC 2.0 request or a text command such as
"setpar hmin 80". Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadModule()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(m, server.WithLogger(log.L()), server.WithVersion(version))
			log.Debug("control channel ready", "version", version)
			return srv.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
