package observ

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, log.InfoLevel)
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug message written at info level: %q", buf.String())
	}
	logger.Info("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("info message missing: %q", buf.String())
	}
}

func TestLoggerFromContext(t *testing.T) {
	if Logger(context.Background()) != log.Default() {
		t.Fatal("expected default logger without attachment")
	}
	l := Discard()
	if Logger(WithLogger(context.Background(), l)) != l {
		t.Fatal("expected attached logger")
	}
}

func TestTimerAggregates(t *testing.T) {
	timer := NewTimer()
	timer.Add("parse", 2*time.Millisecond)
	timer.Add("render", time.Millisecond)
	timer.Add("parse", 3*time.Millisecond)
	timer.Begin("write")()

	report := timer.Report()
	if len(report.Phases) != 3 {
		t.Fatalf("expected 3 phases, got %d", len(report.Phases))
	}
	if p := report.Phases[0]; p.Name != "parse" || p.Count != 2 || p.DurationMS != 5 {
		t.Fatalf("unexpected parse phase %+v", p)
	}
	if report.Phases[2].Name != "write" {
		t.Fatalf("phases out of order: %+v", report.Phases)
	}

	var buf bytes.Buffer
	if err := timer.WriteSummary(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "parse") || !strings.Contains(buf.String(), "wall") {
		t.Fatalf("summary incomplete: %q", buf.String())
	}
}

func TestNilTimer(t *testing.T) {
	var timer *Timer
	timer.Begin("x")()
	timer.Add("x", time.Second)
}
