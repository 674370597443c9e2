package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func newTestLogger(t *testing.T) (Logger, *zaptest.Buffer) {
	t.Helper()
	buf := &zaptest.Buffer{}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), buf, zapcore.DebugLevel)
	return &zapLogger{z: zap.New(core)}, buf
}

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "console", ""} {
		l, err := NewLogger(LogConfig{Level: "debug", Format: format})
		require.NoError(t, err, "format %q", format)
		assert.NotNil(t, l)
	}
}

func TestNewLogger_BadOutputPath(t *testing.T) {
	l, err := NewLogger(LogConfig{OutputPaths: []string{"/nonexistent-dir/sub/app.log"}})
	assert.Error(t, err)
	assert.Nil(t, l)
}

func TestNewDefaultLogger_NotNil(t *testing.T) {
	assert.NotNil(t, NewDefaultLogger())
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Debug("msg")
	l.Info("msg")
	l.Warn("msg")
	l.Error("msg")
	assert.Equal(t, l, l.With(String("k", "v")))
	assert.Equal(t, l, l.Named("x"))
}

func TestZapLogger_LevelsAndFields(t *testing.T) {
	l, buf := newTestLogger(t)

	l.Info("analysis served",
		String("country", "India"),
		Int("tier", 1),
		Float64("predicted", 10234.5),
		Bool("cached", false),
		Duration("latency", 3*time.Millisecond),
		Strings("features", []string{"Export_Incentives", "Duty_Drawback"}),
		Err(errors.New("boom")),
	)

	out := buf.String()
	assert.Contains(t, out, `"level":"info"`)
	assert.Contains(t, out, `"country":"India"`)
	assert.Contains(t, out, `"tier":1`)
	assert.Contains(t, out, `"cached":false`)
	assert.Contains(t, out, `"features":["Export_Incentives","Duty_Drawback"]`)
	assert.Contains(t, out, `"error":"boom"`)
}

func TestErr_Nil(t *testing.T) {
	f := Err(nil)
	assert.Equal(t, "error", f.Key)
	assert.Equal(t, "<nil>", f.Value)
}

func TestWithAndNamed_WithObserver(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLoggerFromCore(core).Named("ecoexpand").With(String("component", "risk"))

	l.Warn("empty cluster")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "ecoexpand", entry.LoggerName)
	assert.Equal(t, "risk", entry.ContextMap()["component"])
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"DEBUG":   zapcore.DebugLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"info":    zapcore.InfoLevel,
		"bogus":   zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), "input %q", in)
	}
}

func TestSetLevel_AffectsChildren(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: "info"})
	require.NoError(t, err)

	child := l.Named("http")
	setter, ok := l.(LevelSetter)
	require.True(t, ok)

	setter.SetLevel("error")
	zl := child.(*zapLogger)
	assert.False(t, zl.z.Core().Enabled(zapcore.WarnLevel))
	assert.True(t, zl.z.Core().Enabled(zapcore.ErrorLevel))
}

func TestSetLevel_CoreLoggerIgnored(t *testing.T) {
	core, _ := observer.New(zapcore.DebugLevel)
	l := NewLoggerFromCore(core)
	assert.NotPanics(t, func() { l.(LevelSetter).SetLevel("error") })
}

func TestDefault_SetAndGet(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	l := NewNopLogger()
	SetDefault(l)
	assert.Equal(t, l, Default())

	SetDefault(nil)
	assert.Equal(t, l, Default())
}
