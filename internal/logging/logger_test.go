package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"rollcall/internal/services"
)

func TestPrettyHandlerPrefixesComponent(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, levelVar))

	logger.With(String(FieldComponent, "resync")).Info("cycle complete", Int("records", 42))

	line := buf.String()
	if !strings.Contains(line, "INFO resync: cycle complete") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "records=42") {
		t.Fatalf("missing attribute: %q", line)
	}
}

func TestPrettyHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, levelVar))

	logger.Info("entry", String("name", "Kim Minji"))

	if !strings.Contains(buf.String(), `name="Kim Minji"`) {
		t.Fatalf("expected quoted value, got %q", buf.String())
	}
}

func TestWithContextAddsCycleFields(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, levelVar))

	ctx := services.WithCycleID(context.Background(), "cycle-1")
	ctx = services.WithPerson(ctx, "kim minji")
	WithContext(ctx, logger).Info("publishing")

	line := buf.String()
	if !strings.Contains(line, "cycle_id=cycle-1") {
		t.Fatalf("missing cycle id: %q", line)
	}
	if !strings.Contains(line, `person="kim minji"`) {
		t.Fatalf("missing person: %q", line)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	logger.Error("should not panic", Error(nil))
}
