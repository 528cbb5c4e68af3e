package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, line []byte) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(line, &entry))
	return entry
}

func TestContextHandler_AddsContextValues(t *testing.T) {
	var buf bytes.Buffer
	h := NewContextHandler(slog.NewJSONHandler(&buf, nil), &LogConfig{})
	log := slog.New(h)

	ctx := context.WithValue(context.Background(), ContextKeyRequestID, "req-1")
	ctx = context.WithValue(ctx, ContextKeyJobID, "job-9")
	ctx = context.WithValue(ctx, ContextKeyStatusCode, 201)

	log.InfoContext(ctx, "sale committed", slog.Int64("sale_id", 3))

	entry := decodeLine(t, buf.Bytes())
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "job-9", entry["job_id"])
	assert.EqualValues(t, 201, entry["status_code"])
	assert.EqualValues(t, 3, entry["sale_id"])
}

func TestSanitizationHandler(t *testing.T) {
	tests := []struct {
		name     string
		log      func(*slog.Logger)
		key      string
		expected string
	}{
		{
			name:     "sensitive_attribute_key",
			log:      func(l *slog.Logger) { l.Info("connecting", slog.String("db_password", "hunter2")) },
			key:      "db_password",
			expected: redacted,
		},
		{
			name:     "credential_in_message",
			log:      func(l *slog.Logger) { l.Info("token=abc123 rejected") },
			key:      "msg",
			expected: "token=" + redacted + " rejected",
		},
		{
			name:     "email_in_attribute",
			log:      func(l *slog.Logger) { l.Info("alert sent", slog.String("to", "florist@example.com")) },
			key:      "to",
			expected: redacted,
		},
		{
			name:     "attribute_bound_with_logger",
			log:      func(l *slog.Logger) { l.With(slog.String("api_key", "k-1")).Info("s3 ready") },
			key:      "api_key",
			expected: redacted,
		},
		{
			name:     "ordinary_values_untouched",
			log:      func(l *slog.Logger) { l.Info("product created", slog.String("name", "Red roses")) },
			key:      "name",
			expected: "Red roses",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(slog.New(NewSanitizationHandler(slog.NewJSONHandler(&buf, nil))))

			entry := decodeLine(t, buf.Bytes())
			assert.Equal(t, tt.expected, entry[tt.key])
		})
	}
}

func TestMultiHandler_FansOut(t *testing.T) {
	var first, second bytes.Buffer
	errOnly := slog.NewJSONHandler(&second, &slog.HandlerOptions{Level: slog.LevelError})
	log := slog.New(NewMultiHandler(slog.NewJSONHandler(&first, nil), errOnly))

	log.Info("catalog loaded")
	log.Error("export failed")

	assert.Equal(t, 2, strings.Count(first.String(), "\n"))
	assert.Equal(t, 1, strings.Count(second.String(), "\n"))
	assert.Contains(t, second.String(), "export failed")
}

func TestPrettyTextHandler_KeepsBoundAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyTextHandler(&buf, nil)).With(slog.String("service", "catalog"))

	log.Warn("stock low", slog.Int("stock", 3))

	out := buf.String()
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "stock low")
	assert.Contains(t, out, "service=catalog")
	assert.Contains(t, out, "stock=3")
}

func TestNewLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pos.log")
	l := NewLogger(&LogConfig{
		Level:       "debug",
		Format:      "json",
		Output:      "file:" + path,
		ServiceName: "flowershop-pos",
		Environment: "test",
	})

	ctx := context.WithValue(context.Background(), ContextKeyRequestID, "req-7")
	l.InfoContext(ctx, "ready")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	entry := decodeLine(t, bytes.TrimSpace(data))
	assert.Equal(t, "INFO", entry["severity"])
	assert.Equal(t, "flowershop-pos", entry["app"])
	assert.Equal(t, "test", entry["env"])
	assert.Equal(t, "req-7", entry["request_id"])
}

func TestSetupLogger_Options(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	t.Setenv("SERVICE_NAME", "pos-api")

	path := filepath.Join(t.TempDir(), "warn.log")
	l := SetupLogger("debug", "json", WithSampling(0.25), WithFileOutput(path, "warn"))

	assert.True(t, l.config.EnableSampling)
	assert.Equal(t, 0.25, l.config.SampleRate)
	require.Len(t, l.config.Outputs, 1)
	assert.Same(t, l.Logger, slog.Default())

	log := l.With(slog.String("service", "ledger"))
	log.Info("sale recorded")
	log.Warn("stock low", slog.Int("stock", 2))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	entry := decodeLine(t, []byte(lines[0]))
	assert.Equal(t, "stock low", entry["msg"])
	assert.Equal(t, "pos-api", entry["app"])
	assert.Equal(t, "ledger", entry["service"])
}

func TestSetupLogger_OptionsOff(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	tests := []struct {
		name string
		opts []Option
	}{
		{name: "no_options"},
		{name: "zero_rate", opts: []Option{WithSampling(0), WithFileOutput("", "warn")}},
		{name: "full_rate", opts: []Option{WithSampling(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := SetupLogger("info", "text", tt.opts...)
			assert.False(t, l.config.EnableSampling)
			assert.Empty(t, l.config.Outputs)
			assert.Len(t, l.handlers, 1)
		})
	}
}

func TestSamplingHandler_KeepsWarnings(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewSamplingHandler(slog.NewJSONHandler(&buf, nil), 0.000001))

	for i := 0; i < 20; i++ {
		log.Warn("stock low")
	}

	assert.Equal(t, 20, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), `"sample_rate"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}

func TestReplaceAttr(t *testing.T) {
	jsonCfg := &LogConfig{Format: "json"}

	amount := replaceAttr(jsonCfg, nil, slog.Any("total_amount", decimal.RequireFromString("12.5")))
	assert.Equal(t, "12.50", amount.Value.String())

	took := replaceAttr(jsonCfg, nil, slog.Duration("duration_ms", 1500*time.Microsecond))
	assert.Equal(t, 1.5, took.Value.Float64())

	level := replaceAttr(jsonCfg, nil, slog.Any(slog.LevelKey, slog.LevelInfo))
	assert.Equal(t, "severity", level.Key)

	text := replaceAttr(&LogConfig{Format: "text"}, nil, slog.Any(slog.LevelKey, slog.LevelInfo))
	assert.Equal(t, slog.LevelKey, text.Key)
}

func TestGetWriter_FallsBackToStdout(t *testing.T) {
	assert.Equal(t, os.Stderr, getWriter("stderr"))
	assert.Equal(t, os.Stdout, getWriter("file:"+filepath.Join(t.TempDir(), "missing", "dir", "x.log")))
	assert.Equal(t, os.Stdout, getWriter("syslog"))
}
