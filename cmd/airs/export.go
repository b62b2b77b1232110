package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crimson-sun/airs/internal/model"
	"github.com/crimson-sun/airs/internal/report"
)

var (
	exportInput  string
	exportSample bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export incidents to dated CSV and JSON reports",
	Long: `export reads a JSON array of incidents and writes
<dir>/incidents_<YYYY-MM-DD>.csv and .json, printing an alert for
every high severity or unknown attack type incident.`,
	Example: `  airs export --input incidents.json --dir logs
  airs export --sample`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		incidents, err := exportIncidents()
		if err != nil {
			return err
		}
		dir := exportDir(cmd)
		res, err := newExporter().Export(cmd.Context(), incidents, dir)
		if err != nil {
			logger.Error("export failed", zap.String("dir", dir), zap.Error(err))
			return err
		}
		logger.Debug("export complete", zap.Int("alerts", len(res.Alerts)))
		return nil
	},
}

func exportIncidents() ([]model.Incident, error) {
	switch {
	case exportSample && exportInput != "":
		return nil, errors.New("--input and --sample are mutually exclusive")
	case exportSample:
		return report.SampleIncidents(), nil
	case exportInput == "":
		return nil, errors.New("--input is required (or use --sample)")
	}

	f, err := openInput(exportInput)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return report.ReadIncidents(f)
}

// exportDir returns --dir when given, else the configured export directory.
func exportDir(cmd *cobra.Command) string {
	if cmd.Flags().Changed("dir") {
		dir, _ := cmd.Flags().GetString("dir")
		return dir
	}
	return cfg.Report.ExportDir
}

// openInput opens path for reading; "-" means stdin.
func openInput(path string) (*os.File, error) {
	if path == "-" {
		return os.Stdin, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}

func init() {
	exportCmd.Flags().StringVar(&exportInput, "input", "", "JSON array of incidents (- for stdin)")
	exportCmd.Flags().BoolVar(&exportSample, "sample", false, "export the built-in sample incidents")
	exportCmd.Flags().String("dir", report.DefaultDir, "export directory (default report.export_dir)")
}
