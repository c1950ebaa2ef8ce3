package config

import (
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	settings, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	defaults := DefaultSettings()
	if settings.ResponseType != defaults.ResponseType {
		t.Errorf("ResponseType = %q, want %q", settings.ResponseType, defaults.ResponseType)
	}
	if settings.MaxConcurrentLoads != defaults.MaxConcurrentLoads {
		t.Errorf("MaxConcurrentLoads = %d, want %d", settings.MaxConcurrentLoads, defaults.MaxConcurrentLoads)
	}
	if !settings.CacheEnabled {
		t.Error("CacheEnabled = false, want true by default")
	}
}

func TestSettings_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	settings := DefaultSettings()
	settings.ResponseType = "json"
	settings.RequestHeaders = map[string]string{"X-Asset-Token": "tok"}
	settings.MaxConcurrentLoads = 9
	settings.PathPrefix = "https://cdn.example.com/"

	if err := settings.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.ResponseType != "json" {
		t.Errorf("ResponseType = %q, want json", loaded.ResponseType)
	}
	if loaded.RequestHeaders["X-Asset-Token"] != "tok" {
		t.Errorf("RequestHeaders = %v, want the saved token", loaded.RequestHeaders)
	}
	if loaded.MaxConcurrentLoads != 9 {
		t.Errorf("MaxConcurrentLoads = %d, want 9", loaded.MaxConcurrentLoads)
	}
	if loaded.PathPrefix != "https://cdn.example.com/" {
		t.Errorf("PathPrefix = %q, want the saved prefix", loaded.PathPrefix)
	}
}

func TestSettings_NewLoader(t *testing.T) {
	settings := DefaultSettings()
	if _, err := settings.NewLoader(nil); err != nil {
		t.Errorf("NewLoader with defaults failed: %v", err)
	}

	settings.ResponseType = "parquet"
	if _, err := settings.NewLoader(nil); err == nil {
		t.Error("NewLoader accepted an unknown response type")
	}
}
