package observability

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewLogger_JSONOutsideDev(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "prod")
	l.Debug().Msg("hidden")
	l.Info().Int64("place_id", 7).Msg("created")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 1 {
		t.Fatalf("expected 1 line (debug suppressed), got %d: %s", len(lines), buf.String())
	}
	var m map[string]any
	if err := json.Unmarshal(lines[0], &m); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if m["message"] != "created" || m["app"] != "hbnb_web" {
		t.Fatalf("unexpected entry: %v", m)
	}
}

func TestNewLogger_ConsoleInDev(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "dev")
	l.Debug().Msg("visible")
	if !bytes.Contains(buf.Bytes(), []byte("visible")) {
		t.Fatalf("expected debug line in dev, got %q", buf.String())
	}
	if json.Valid(bytes.TrimSpace(buf.Bytes())) {
		t.Fatalf("expected console output, got JSON")
	}
}
