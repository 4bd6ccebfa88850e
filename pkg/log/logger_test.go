package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	stdlog "log"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level Level, f Formatter) (Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := NewLogger(WithLevel(level), WithFormatter(f), WithOutput(NewWriterOutput(&buf)))
	return l, &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		m := map[string]interface{}{}
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestJSONEntryCarriesFields(t *testing.T) {
	l, buf := newBufferLogger(DebugLevel, &JSONFormatter{})
	l.With(Component("generator"), Int64("machine_id", 7)).Info("issued", Str("format", "base58"))

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	e := lines[0]
	assert.Equal(t, "INFO", e["level"])
	assert.Equal(t, "issued", e["msg"])
	assert.Equal(t, "generator", e["component"])
	assert.EqualValues(t, 7, e["machine_id"])
	assert.Equal(t, "base58", e["format"])
	assert.Contains(t, e["caller"], "logger_test.go")
}

func TestLevelFiltering(t *testing.T) {
	l, buf := newBufferLogger(WarnLevel, &JSONFormatter{})
	l.Debug("d")
	l.Info("i")
	l.Warn("w")
	l.Error("e")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "w", lines[0]["msg"])
	assert.Equal(t, "e", lines[1]["msg"])
}

func TestSetLevelAffectsDerivedLoggers(t *testing.T) {
	root, buf := newBufferLogger(InfoLevel, &JSONFormatter{})
	child := root.WithComponent("child")
	child.Debug("hidden")
	root.SetLevel(DebugLevel)
	child.Debug("shown")
	assert.Equal(t, DebugLevel, child.GetLevel())

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "shown", lines[0]["msg"])
}

func TestKeyValueArgs(t *testing.T) {
	l, buf := newBufferLogger(InfoLevel, &JSONFormatter{})
	l.Infof("kv", "count", 3, "dangling")

	e := decodeLines(t, buf)[0]
	assert.EqualValues(t, 3, e["count"])
	assert.Equal(t, "dangling", e["arg2"])
}

func TestWithErrorAndContext(t *testing.T) {
	l, buf := newBufferLogger(InfoLevel, &JSONFormatter{})
	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithOperation(ctx, "next")
	l.WithContext(ctx).WithError(errors.New("boom")).Error("failed")

	e := decodeLines(t, buf)[0]
	assert.Equal(t, "boom", e["error"])
	assert.Equal(t, "req-1", e[RequestIDKey])
	assert.Equal(t, "next", e[OperationKey])
}

func TestTextFormatter(t *testing.T) {
	l, buf := newBufferLogger(InfoLevel, &TextFormatter{DisableCaller: true})
	l.Info("server started", Str("http", ":8080"), Str("note", "two words"))

	line := buf.String()
	assert.Contains(t, line, "INFO  server started")
	assert.Contains(t, line, "http=:8080")
	assert.Contains(t, line, `note="two words"`)
	assert.NotContains(t, line, "caller=")
	assert.Less(t, strings.Index(line, "http="), strings.Index(line, "note="))
}

func TestFatalExits(t *testing.T) {
	l, buf := newBufferLogger(InfoLevel, &JSONFormatter{})
	code := -1
	l.(*BaseLogger).exit = func(c int) { code = c }
	l.Fatal("bye")
	assert.Equal(t, 1, code)
	assert.Equal(t, "FATAL", decodeLines(t, buf)[0]["level"])
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{"": InfoLevel, "DEBUG": DebugLevel, "warning": WarnLevel, " error ": ErrorLevel, "fatal": FatalLevel}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestApplyConfig(t *testing.T) {
	_, err := ApplyConfig(Config{Format: "xml"})
	assert.Error(t, err)
	_, err = ApplyConfig(Config{Output: "file"})
	assert.Error(t, err)

	path := t.TempDir() + "/logs/flake.log"
	l, err := ApplyConfig(Config{Level: "debug", Format: "json", Output: "file", File: path, Redact: []string{"secret"}})
	require.NoError(t, err)
	l.Debug("configured", Str("secret", "hunter2"))
	assert.Equal(t, DebugLevel, l.GetLevel())

	l2, err := ApplyConfig(Config{Output: "null"})
	require.NoError(t, err)
	l2.Info("dropped")
}

func TestRedactionAndSampling(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(WithOutput(NewWriterOutput(&buf))).(*BaseLogger)
	h := newBridgeHandler(base).withRedactions([]string{"token"}).withSampler(2, 3)
	base.slogLogger = slog.New(h)

	for i := 0; i < 8; i++ {
		base.Info("tick", Str("token", "abc"))
	}
	lines := decodeLines(t, &buf)
	// kept: 0, 1, then 2 and 5 (every third after the first two)
	require.Len(t, lines, 4)
	assert.Equal(t, "[REDACTED]", lines[0]["token"])
}

func TestRedirectStdLog(t *testing.T) {
	l, buf := newBufferLogger(InfoLevel, &JSONFormatter{})
	restore := RedirectStdLog(l)
	stdlog.Print("from pebble")
	restore()

	e := decodeLines(t, buf)[0]
	assert.Equal(t, "from pebble", e["msg"])
	assert.Equal(t, "stdlog", e["component"])
}
