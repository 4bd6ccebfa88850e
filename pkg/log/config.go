package log

import (
	"fmt"
	"log/slog"
	"strings"
)

// Config describes a logger declaratively. The zero value is an INFO level
// JSON logger on stderr.
type Config struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // json | text
	Output string `json:"output" yaml:"output"` // console | file | null
	File   string `json:"file,omitempty" yaml:"file,omitempty"`
	// Redact replaces the values of these keys with [REDACTED].
	Redact []string `json:"redact,omitempty" yaml:"redact,omitempty"`
	// Sampling: the first SampleInitial records of each message are kept,
	// then one in SampleThereafter. Zero disables sampling.
	SampleInitial    int `json:"sampleInitial,omitempty" yaml:"sampleInitial,omitempty"`
	SampleThereafter int `json:"sampleThereafter,omitempty" yaml:"sampleThereafter,omitempty"`
}

// ParseLevel is case-insensitive and accepts "warning" for WARN.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "", "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "fatal":
		return FatalLevel, nil
	default:
		return InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

// ApplyConfig builds a Logger from cfg.
func ApplyConfig(cfg Config) (Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var formatter Formatter
	switch strings.ToLower(cfg.Format) {
	case "", "json":
		formatter = &JSONFormatter{}
	case "text":
		formatter = &TextFormatter{}
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	var out Output
	switch strings.ToLower(cfg.Output) {
	case "", "console", "stderr":
		out = NewConsoleOutput()
	case "file":
		if cfg.File == "" {
			return nil, fmt.Errorf("log output file requires a path")
		}
		fo, err := NewFileOutput(cfg.File)
		if err != nil {
			return nil, err
		}
		out = fo
	case "null", "none":
		out = NullOutput{}
	default:
		return nil, fmt.Errorf("unknown log output %q", cfg.Output)
	}

	l := NewLogger(WithLevel(level), WithFormatter(formatter), WithOutput(out)).(*BaseLogger)
	h := newBridgeHandler(l).withRedactions(cfg.Redact).withSampler(cfg.SampleInitial, cfg.SampleThereafter)
	l.slogLogger = slog.New(h)
	return l, nil
}
