package bindings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultMapMatchesSend(t *testing.T) {
	m := DefaultMap()
	b, ok := m.Match("ctrl+s")
	if !ok || b.Action != ActionSendRequest {
		t.Fatalf("expected ctrl+s to send, got %+v ok=%v", b, ok)
	}
	if _, ok := m.Match("ctrl+z"); ok {
		t.Fatalf("expected ctrl+z to be unbound")
	}
	if got := m.Primary(ActionQuit); got != "ctrl+q" {
		t.Fatalf("unexpected primary quit key %q", got)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	m, src, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if src.Format != FormatTOML || src.Path != filepath.Join(dir, "bindings.toml") {
		t.Fatalf("unexpected source %+v", src)
	}
	if b, ok := m.Match("ctrl+t"); !ok || b.Action != ActionCycleMethod {
		t.Fatalf("expected default cycle binding, got %+v", b)
	}
}

func TestLoadTOMLOverride(t *testing.T) {
	dir := t.TempDir()
	data := "[bindings]\nsend_request = [\"Ctrl+G\"]\n"
	if err := os.WriteFile(filepath.Join(dir, "bindings.toml"), []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	m, _, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if b, ok := m.Match("ctrl+g"); !ok || b.Action != ActionSendRequest {
		t.Fatalf("expected ctrl+g to send, got %+v ok=%v", b, ok)
	}
	if _, ok := m.Match("ctrl+s"); ok {
		t.Fatalf("expected ctrl+s to be released by override")
	}
}

func TestLoadJSONOverride(t *testing.T) {
	dir := t.TempDir()
	data := `{"bindings":{"copy_body":["alt+c"]}}`
	if err := os.WriteFile(filepath.Join(dir, "bindings.json"), []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	m, src, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if src.Format != FormatJSON {
		t.Fatalf("expected json source, got %+v", src)
	}
	if b, ok := m.Match("alt+c"); !ok || b.Action != ActionCopyBody {
		t.Fatalf("expected alt+c to copy body, got %+v", b)
	}
}

func TestLoadRejectsConflicts(t *testing.T) {
	dir := t.TempDir()
	data := "[bindings]\nquit = [\"ctrl+s\"]\n"
	if err := os.WriteFile(filepath.Join(dir, "bindings.toml"), []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, _, err := Load(dir)
	if err == nil || !strings.Contains(err.Error(), "assigned to both") {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestLoadRejectsUnknownAction(t *testing.T) {
	dir := t.TempDir()
	data := "[bindings]\nopen_file = [\"ctrl+o\"]\n"
	if err := os.WriteFile(filepath.Join(dir, "bindings.toml"), []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := Load(dir); err == nil {
		t.Fatalf("expected unknown action error")
	}
}

func TestLoadRejectsUnboundSend(t *testing.T) {
	dir := t.TempDir()
	data := "[bindings]\nsend_request = []\n"
	if err := os.WriteFile(filepath.Join(dir, "bindings.toml"), []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := Load(dir); err == nil {
		t.Fatalf("expected error when send has no binding")
	}
}

func TestParseConfigRejectsChords(t *testing.T) {
	_, err := parseConfig([]byte("[bindings]\nquit = [\"g g\"]\n"), FormatTOML)
	if err == nil {
		t.Fatalf("expected multi-step binding to be rejected")
	}
}

func TestNormalizeKeyString(t *testing.T) {
	cases := map[string]string{
		"Ctrl+S":       "ctrl+s",
		"shift+ctrl+x": "ctrl+shift+x",
		"Option+Y":     "alt+y",
		"G":            "shift+g",
		"?":            "shift+/",
		"Esc":          "esc",
		"":             "",
	}
	for in, want := range cases {
		if got := NormalizeKeyString(in); got != want {
			t.Fatalf("NormalizeKeyString(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestKnownActionsSorted(t *testing.T) {
	ids := KnownActions()
	if len(ids) != len(definitions) {
		t.Fatalf("expected %d actions, got %d", len(definitions), len(ids))
	}
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Fatalf("actions not sorted: %v", ids)
		}
	}
	if Label(ActionSendRequest) != "send" {
		t.Fatalf("unexpected label %q", Label(ActionSendRequest))
	}
}
