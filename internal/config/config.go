// Package config loads AIRS settings from defaults, an optional YAML file and
// AIRS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/crimson-sun/airs/internal/engine/classifier"
)

// Version is the AIRS release version.
var Version = "0.3.0"

// Config holds all AIRS configuration.
type Config struct {
	Server ServerConfig
	Engine EngineConfig
	Report ReportConfig
	Alert  AlertConfig
	Log    LogConfig
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr            string
	RateLimitRPS    int // 0 disables per-IP limiting
	BodyLimit       int64
	ShutdownTimeout time.Duration
}

// EngineConfig locates the model artifacts.
type EngineConfig struct {
	EmbedderModel string
	EmbedderVocab string
	ORTLibrary    string
	MaxSeqLen     int
	Threads       int
	Vectorizer    string
	Forest        string
	Boosted       string
	Linear        string
	Neural        string
	Labels        string
	DefaultModel  string
}

// ReportConfig holds exporter settings.
type ReportConfig struct {
	ExportDir string
}

// AlertConfig holds notifier settings. Slack is disabled when
// SlackWebhookURL is empty.
type AlertConfig struct {
	SlackWebhookURL string
	SlackChannel    string
	Timeout         time.Duration
	MaxRetries      int
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string
	Format string // "json" or "console"
}

// New returns a viper instance with every default set and AIRS_* env
// lookup enabled. Key "engine.forest" maps to AIRS_ENGINE_FOREST.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigName("airs")
	v.SetConfigType("yaml")
	v.AddConfigPath("configs")
	v.AddConfigPath(".")
	v.SetEnvPrefix("AIRS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.rate_limit_rps", 0)
	v.SetDefault("server.body_limit", 1<<20)
	v.SetDefault("server.shutdown_timeout", "15s")

	v.SetDefault("engine.embedder_model", "models/minilm/model.onnx")
	v.SetDefault("engine.embedder_vocab", "models/minilm/vocab.txt")
	v.SetDefault("engine.ort_library", "")
	v.SetDefault("engine.max_seq_len", 256)
	v.SetDefault("engine.threads", 0)
	v.SetDefault("engine.vectorizer", "models/classifiers/tfidf.json")
	v.SetDefault("engine.forest", "models/classifiers/rf.json")
	v.SetDefault("engine.boosted", "models/classifiers/xgb.json")
	v.SetDefault("engine.linear", "models/classifiers/lr.safetensors")
	v.SetDefault("engine.neural", "models/classifiers/ann.onnx")
	v.SetDefault("engine.labels", "models/classifiers/labels.json")
	v.SetDefault("engine.default_model", "rf")

	v.SetDefault("report.export_dir", "logs")

	v.SetDefault("alert.slack_webhook_url", "")
	v.SetDefault("alert.slack_channel", "")
	v.SetDefault("alert.timeout", "10s")
	v.SetDefault("alert.max_retries", 3)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	return v
}

// Load reads the config file (file, or configs/airs.yaml / ./airs.yaml when
// file is empty) into v and decodes the result. A missing default config
// file is not an error; a missing explicit file is.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read: %w", err)
		}
	}

	return Config{
		Server: ServerConfig{
			Addr:            v.GetString("server.addr"),
			RateLimitRPS:    v.GetInt("server.rate_limit_rps"),
			BodyLimit:       v.GetInt64("server.body_limit"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Engine: EngineConfig{
			EmbedderModel: v.GetString("engine.embedder_model"),
			EmbedderVocab: v.GetString("engine.embedder_vocab"),
			ORTLibrary:    v.GetString("engine.ort_library"),
			MaxSeqLen:     v.GetInt("engine.max_seq_len"),
			Threads:       v.GetInt("engine.threads"),
			Vectorizer:    v.GetString("engine.vectorizer"),
			Forest:        v.GetString("engine.forest"),
			Boosted:       v.GetString("engine.boosted"),
			Linear:        v.GetString("engine.linear"),
			Neural:        v.GetString("engine.neural"),
			Labels:        v.GetString("engine.labels"),
			DefaultModel:  v.GetString("engine.default_model"),
		},
		Report: ReportConfig{
			ExportDir: v.GetString("report.export_dir"),
		},
		Alert: AlertConfig{
			SlackWebhookURL: v.GetString("alert.slack_webhook_url"),
			SlackChannel:    v.GetString("alert.slack_channel"),
			Timeout:         v.GetDuration("alert.timeout"),
			MaxRetries:      v.GetInt("alert.max_retries"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}, nil
}

// Validate checks settings that don't touch the filesystem and returns all
// problems at once.
func (c Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, fmt.Errorf("server.addr must not be empty"))
	}
	if c.Server.RateLimitRPS < 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit_rps must be >= 0, got %d", c.Server.RateLimitRPS))
	}
	if c.Server.BodyLimit <= 0 {
		errs = append(errs, fmt.Errorf("server.body_limit must be > 0, got %d", c.Server.BodyLimit))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.shutdown_timeout must be > 0, got %v", c.Server.ShutdownTimeout))
	}

	if c.Engine.MaxSeqLen <= 0 || c.Engine.MaxSeqLen > 512 {
		errs = append(errs, fmt.Errorf("engine.max_seq_len must be in 1..512, got %d", c.Engine.MaxSeqLen))
	}
	if c.Engine.Threads < 0 {
		errs = append(errs, fmt.Errorf("engine.threads must be >= 0, got %d", c.Engine.Threads))
	}
	if _, err := classifier.ParseKind(c.Engine.DefaultModel); err != nil {
		errs = append(errs, fmt.Errorf("engine.default_model: %w", err))
	}

	if c.Report.ExportDir == "" {
		errs = append(errs, fmt.Errorf("report.export_dir must not be empty"))
	}

	if c.Alert.SlackWebhookURL != "" {
		u, err := url.Parse(c.Alert.SlackWebhookURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("alert.slack_webhook_url must be an http(s) URL, got %q", c.Alert.SlackWebhookURL))
		}
	}
	if c.Alert.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("alert.max_retries must be >= 0, got %d", c.Alert.MaxRetries))
	}
	if c.Alert.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("alert.timeout must be > 0, got %v", c.Alert.Timeout))
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or console, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// ValidateArtifacts checks that every model artifact exists.
func (c Config) ValidateArtifacts() error {
	var errs []error
	for _, f := range []struct{ key, path string }{
		{"engine.embedder_model", c.Engine.EmbedderModel},
		{"engine.embedder_vocab", c.Engine.EmbedderVocab},
		{"engine.vectorizer", c.Engine.Vectorizer},
		{"engine.forest", c.Engine.Forest},
		{"engine.boosted", c.Engine.Boosted},
		{"engine.linear", c.Engine.Linear},
		{"engine.neural", c.Engine.Neural},
		{"engine.labels", c.Engine.Labels},
	} {
		if f.path == "" {
			errs = append(errs, fmt.Errorf("%s must not be empty", f.key))
			continue
		}
		if _, err := os.Stat(f.path); err != nil {
			errs = append(errs, fmt.Errorf("%s: model file not found: %s", f.key, f.path))
		}
	}
	if c.Engine.ORTLibrary != "" {
		if _, err := os.Stat(c.Engine.ORTLibrary); err != nil {
			errs = append(errs, fmt.Errorf("engine.ort_library: not found: %s", c.Engine.ORTLibrary))
		}
	}
	return errors.Join(errs...)
}
