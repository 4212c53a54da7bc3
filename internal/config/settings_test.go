package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadSettingsReturnsDefaultHandleWhenMissing(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RESTPAD_CONFIG_DIR", dir)

	settings, handle, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings returned error: %v", err)
	}
	expectedPath := filepath.Join(dir, "settings.toml")
	if handle.Path != expectedPath {
		t.Fatalf("expected handle path %q, got %q", expectedPath, handle.Path)
	}
	if handle.Format != SettingsFormatTOML {
		t.Fatalf("expected format %q, got %q", SettingsFormatTOML, handle.Format)
	}
	if settings.Request.Timeout.Std() != DefaultTimeout {
		t.Fatalf("expected default timeout, got %s", settings.Request.Timeout.Std())
	}
	if !settings.Request.FollowRedirects {
		t.Fatalf("expected redirects followed by default")
	}
	if settings.Request.EncodeQuery {
		t.Fatalf("expected raw query encoding by default")
	}
	if settings.Log.Level != "info" {
		t.Fatalf("expected info log level, got %q", settings.Log.Level)
	}
}

func TestSaveAndLoadSettingsTOML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RESTPAD_CONFIG_DIR", dir)

	want := DefaultSettings()
	want.Request.Timeout = Duration(5 * time.Second)
	want.Request.Proxy = "http://127.0.0.1:8080"
	want.Log.Level = "debug"
	if err := SaveSettings(want, SettingsHandle{}); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	got, handle, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if got.Request.Timeout != want.Request.Timeout {
		t.Fatalf("expected timeout %s, got %s", want.Request.Timeout.Std(), got.Request.Timeout.Std())
	}
	if got.Request.Proxy != want.Request.Proxy || got.Log.Level != "debug" {
		t.Fatalf("unexpected settings after round trip: %+v", got)
	}
	if handle.Format != SettingsFormatTOML {
		t.Fatalf("expected format %q after save, got %q", SettingsFormatTOML, handle.Format)
	}
}

func TestLoadSettingsPartialTOMLKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RESTPAD_CONFIG_DIR", dir)

	payload := `
[request]
timeout = "2s"
encode_query = true
`
	if err := os.WriteFile(filepath.Join(dir, "settings.toml"), []byte(payload), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	got, _, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if got.Request.Timeout.Std() != 2*time.Second {
		t.Fatalf("expected 2s timeout, got %s", got.Request.Timeout.Std())
	}
	if !got.Request.EncodeQuery {
		t.Fatalf("expected encode_query to be set")
	}
	if !got.Request.FollowRedirects || got.Request.DefaultMethod != "GET" {
		t.Fatalf("expected untouched fields to keep defaults, got %+v", got.Request)
	}
	if got.Log.MaxSizeMB != 10 {
		t.Fatalf("expected default log size, got %d", got.Log.MaxSizeMB)
	}
}

func TestLoadSettingsJSON(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RESTPAD_CONFIG_DIR", dir)

	payload := `{"request": {"timeout": "0s", "follow_redirects": false}}`
	path := filepath.Join(dir, "settings.json")
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write json settings: %v", err)
	}

	got, handle, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if got.Request.Timeout != 0 || got.Request.FollowRedirects {
		t.Fatalf("unexpected request settings %+v", got.Request)
	}
	if handle.Format != SettingsFormatJSON {
		t.Fatalf("expected json format, got %q", handle.Format)
	}
}

func TestLoadSettingsRejectsInvalidFiles(t *testing.T) {
	cases := map[string]string{
		"settings.toml": "[request]\ntimeout = \"soon\"\n",
		"settings.json": `{"unknown": true}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			t.Setenv("RESTPAD_CONFIG_DIR", dir)
			if err := os.WriteFile(filepath.Join(dir, name), []byte(payload), 0o644); err != nil {
				t.Fatalf("write settings: %v", err)
			}
			if _, _, err := LoadSettings(); err == nil {
				t.Fatalf("expected parse error for %s", name)
			}
		})
	}
}

func TestLogPathDefaultsIntoConfigDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RESTPAD_CONFIG_DIR", dir)

	if got := (LogSettings{}).LogPath(); got != filepath.Join(dir, "restpad.log") {
		t.Fatalf("unexpected default log path %q", got)
	}
	if got := (LogSettings{File: "/tmp/x.log"}).LogPath(); got != "/tmp/x.log" {
		t.Fatalf("expected explicit log path, got %q", got)
	}
}
