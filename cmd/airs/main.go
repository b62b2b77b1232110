package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crimson-sun/airs/internal/alert"
	"github.com/crimson-sun/airs/internal/config"
	"github.com/crimson-sun/airs/internal/engine"
	"github.com/crimson-sun/airs/internal/logging"
	"github.com/crimson-sun/airs/internal/report"
)

var (
	cfgFile string
	v       = config.New()

	// Populated by PersistentPreRunE.
	cfg    config.Config
	logger *zap.Logger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if logger != nil {
		_ = logger.Sync()
	}
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "airs",
	Short: "Automated incident response service",
	Long: `airs classifies security log messages into attack types with pre-trained
models, serves the classifier over HTTP, and exports incident reports as
dated CSV and JSON files, alerting on critical incidents.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(v, cfgFile)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration:\n%w", err)
		}
		logger, err = logging.New(cfg.Log.Format, cfg.Log.Level)
		return err
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default configs/airs.yaml or ./airs.yaml)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "json", "log format (json, console)")
	_ = v.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = v.BindPFlag("log.format", pf.Lookup("log-format"))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(versionCmd)
}

// artifacts maps engine settings onto the loader's input.
func artifacts(c config.EngineConfig) engine.Artifacts {
	return engine.Artifacts{
		EmbedderModel: c.EmbedderModel,
		EmbedderVocab: c.EmbedderVocab,
		ORTLibrary:    c.ORTLibrary,
		MaxSeqLen:     c.MaxSeqLen,
		Threads:       c.Threads,
		Vectorizer:    c.Vectorizer,
		Forest:        c.Forest,
		Boosted:       c.Boosted,
		Linear:        c.Linear,
		Neural:        c.Neural,
		Labels:        c.Labels,
	}
}

func loadEngine() (*engine.Engine, error) {
	if err := cfg.ValidateArtifacts(); err != nil {
		return nil, fmt.Errorf("missing model artifacts:\n%w", err)
	}
	return engine.Load(artifacts(cfg.Engine), logger)
}

// newExporter wires the console and, when configured, Slack into a report
// exporter.
func newExporter() *report.Exporter {
	var notifiers []alert.Notifier
	if cfg.Alert.SlackWebhookURL != "" {
		notifiers = append(notifiers, alert.NewSlack(cfg.Alert.SlackWebhookURL,
			alert.WithChannel(cfg.Alert.SlackChannel),
			alert.WithTimeout(cfg.Alert.Timeout),
			alert.WithMaxRetries(cfg.Alert.MaxRetries),
		))
		logger.Debug("slack alerts enabled", zap.String("channel", cfg.Alert.SlackChannel))
	}

	opts := []report.Option{report.WithLogger(logger)}
	if len(notifiers) > 0 {
		opts = append(opts, report.WithNotifier(alert.NewMulti(notifiers...)))
	}
	return report.New(opts...)
}

// bindFlag ties a command flag to a viper key so the flag overrides file and
// environment values only when set.
func bindFlag(cmd *cobra.Command, key, flag string) {
	_ = v.BindPFlag(key, cmd.Flags().Lookup(flag))
}
