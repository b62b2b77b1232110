package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crimson-sun/airs/internal/pipeline"
)

var (
	classifyInput  string
	classifyModel  string
	classifySource string
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify a file of log lines and export the incidents",
	Example: `  airs classify --input firewall.log --model xgb --source Firewall
  tail -n 100 ids.log | airs classify --input - --source IDS`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := openInput(classifyInput)
		if err != nil {
			return err
		}
		defer f.Close()
		lines, err := pipeline.ReadLines(f)
		if err != nil {
			return err
		}

		eng, err := loadEngine()
		if err != nil {
			logger.Error("failed to load engine", zap.Error(err))
			return err
		}
		defer eng.Close()

		selector := classifyModel
		if !cmd.Flags().Changed("model") {
			selector = cfg.Engine.DefaultModel
		}

		p := pipeline.New(eng, newExporter(), logger)
		if _, err := p.Run(cmd.Context(), lines, classifySource, selector, exportDir(cmd)); err != nil {
			logger.Error("classify failed", zap.String("model", selector), zap.Error(err))
			return err
		}
		return nil
	},
}

func init() {
	classifyCmd.Flags().StringVar(&classifyInput, "input", "", "file with one log message per line (- for stdin)")
	classifyCmd.Flags().StringVar(&classifyModel, "model", "rf", "model selector: rf, xgb, lr or ann (default engine.default_model)")
	classifyCmd.Flags().StringVar(&classifySource, "source", "airs", "source recorded on each incident")
	classifyCmd.Flags().String("dir", "logs", "export directory (default report.export_dir)")
	_ = classifyCmd.MarkFlagRequired("input")
}
