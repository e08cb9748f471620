package log

import (
	"bytes"
	"log/slog"
	"math"
	"strings"
	"testing"
)

// TestCompactHandler_FormatsFloats tests that float attributes are compacted.
func TestCompactHandler_FormatsFloats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		key   string
		value float64
		want  string
	}{
		{
			name:  "long p-value is rounded",
			key:   "pvalue",
			value: 0.00123456789,
			want:  "pvalue=0.001235",
		},
		{
			name:  "pull keeps four significant digits",
			key:   "pull",
			value: 3.16227766,
			want:  "pull=3.162",
		},
		{
			name:  "NaN stays literal",
			key:   "score",
			value: math.NaN(),
			want:  "score=NaN",
		},
		{
			name:  "small value uses exponent form",
			key:   "pvalue",
			value: 6.7e-4,
			want:  "pvalue=0.00067",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(NewCompactHandler(slog.NewTextHandler(&buf, nil)))

			logger.Info("check evaluated", tt.key, tt.value)

			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output %q missing %q", buf.String(), tt.want)
			}
		})
	}
}

// TestCompactHandler_LeavesOtherKindsAlone tests non-float attributes pass through.
func TestCompactHandler_LeavesOtherKindsAlone(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewCompactHandler(slog.NewTextHandler(&buf, nil)))

	logger.Info("comparing", "key", "track/pt", "bins", 50)

	out := buf.String()
	if !strings.Contains(out, "key=track/pt") {
		t.Errorf("output %q missing string attribute", out)
	}
	if !strings.Contains(out, "bins=50") {
		t.Errorf("output %q missing int attribute", out)
	}
}

// TestCompactHandler_Groups tests that grouped attributes are formatted too.
func TestCompactHandler_Groups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewCompactHandler(slog.NewTextHandler(&buf, nil)))

	logger.Info("result", slog.Group("chi2", slog.Float64("prob", 0.123456789)))

	if !strings.Contains(buf.String(), "chi2.prob=0.1235") {
		t.Errorf("output %q missing formatted group attribute", buf.String())
	}
}

// TestCompactHandler_WithAttrs tests attributes attached via With are formatted.
func TestCompactHandler_WithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewCompactHandler(slog.NewTextHandler(&buf, nil)))

	logger.With("threshold", 0.0099999999).Info("configured")

	if !strings.Contains(buf.String(), "threshold=0.01") {
		t.Errorf("output %q missing formatted With attribute", buf.String())
	}
}

// TestNewLogger tests level selection for verbose and quiet modes.
func TestNewLogger(t *testing.T) {
	t.Parallel()

	t.Run("quiet logger suppresses debug and info", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, false)

		logger.Debug("debug message")
		logger.Info("info message")
		logger.Warn("warn message")

		out := buf.String()
		if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
			t.Errorf("quiet logger emitted low-level output: %q", out)
		}
		if !strings.Contains(out, "warn message") {
			t.Errorf("quiet logger dropped warning: %q", out)
		}
	})

	t.Run("verbose logger emits debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, true)

		logger.Debug("debug message")

		if !strings.Contains(buf.String(), "debug message") {
			t.Errorf("verbose logger dropped debug output: %q", buf.String())
		}
	})
}
