package commands

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ironsheep/retrotape-tracker/internal/imaging"
	"github.com/ironsheep/retrotape-tracker/internal/tracker"
)

type processOutput struct {
	Path       string `json:"path"`
	OutputPath string `json:"output_path,omitempty"`
	*tracker.Result
}

// process <image>...: run the module once per file and print JSON lines.
func processCmd() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "process <image>...",
		Short: "Process image files and print the results as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadModule()
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			for i, path := range args {
				img, err := imaging.LoadFrame(path)
				if err != nil {
					return err
				}
				frame := tracker.Frame{Image: img, Seq: uint64(i + 1), Time: time.Now()}

				var res *tracker.Result
				if outDir != "" {
					res, err = m.Process(cmd.Context(), frame)
				} else {
					res, err = m.ProcessNoUSB(cmd.Context(), frame)
				}
				if err != nil {
					return err
				}

				out := processOutput{Path: path, Result: res}
				if outDir != "" {
					base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
					out.OutputPath = filepath.Join(outDir, base+"_out.png")
					if err := imaging.SaveFrame(out.OutputPath, res.Output); err != nil {
						return err
					}
				}
				if err := enc.Encode(out); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "output", "o", "", "directory for composed output frames")
	return cmd
}
