package commands

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ironsheep/retrotape-tracker/internal/store"
)

func reportCmd() *cobra.Command {
	var (
		dbPath string
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize the detections recorded by run --db",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("db") {
				cfg.DBPath = dbPath
			}
			if cfg.DBPath == "" {
				return errors.New("no database: set --db or RETROTAPE_DB_PATH")
			}

			rec, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer rec.Close()

			ctx := cmd.Context()
			stats, err := rec.Stats(ctx)
			if err != nil {
				return err
			}
			recent, err := rec.Recent(ctx, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{"stats": stats, "recent": recent})
			}
			fmt.Fprintf(out, "frames=%d found=%d hit_rate=%.2f avg_elapsed=%.0fus\n",
				stats.Frames, stats.Found, stats.HitRate, stats.AvgElapsedUS)
			for _, r := range recent {
				serial := r.Serial
				if !r.Found {
					serial = "-"
				}
				fmt.Fprintf(out, "%s %s #%d lines=%d %s\n",
					r.Time.Format("15:04:05.000"), r.Module, r.Seq, r.Lines, serial)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&dbPath, "db", "", "SQLite file written by run --db")
	f.IntVarP(&limit, "limit", "n", 20, "number of recent reports to show")
	f.BoolVar(&asJSON, "json", false, "print JSON instead of text")
	return cmd
}
