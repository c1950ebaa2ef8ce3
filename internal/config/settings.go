package config

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/glassline/assetloader/pkg/loader"
)

// Settings holds all configuration options.
type Settings struct {
	// Fetch settings
	ResponseType    string            `json:"response_type"`
	MimeType        string            `json:"mime_type"`
	RequestHeaders  map[string]string `json:"request_headers"`
	UserAgent       string            `json:"user_agent"`
	WithCredentials bool              `json:"with_credentials"`
	TimeoutSeconds  float64           `json:"timeout_seconds"`
	PathPrefix      string            `json:"path_prefix"`

	// Engine settings
	CacheEnabled       bool `json:"cache_enabled"`
	MaxConcurrentLoads int  `json:"max_concurrent_loads"`

	// Output settings
	OutputPath string `json:"output_path"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		ResponseType:       "bytes",
		RequestHeaders:     map[string]string{},
		UserAgent:          "assetload",
		TimeoutSeconds:     60,
		CacheEnabled:       true,
		MaxConcurrentLoads: 4,
		OutputPath:         "assets",
	}
}

// Load reads settings from a JSON file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}
	if settings.RequestHeaders == nil {
		settings.RequestHeaders = map[string]string{}
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// NewLoader builds a FileLoader configured from these settings, reporting
// to manager.
func (s *Settings) NewLoader(manager *loader.Manager) (*loader.FileLoader, error) {
	responseType, err := loader.ParseResponseType(s.ResponseType)
	if err != nil {
		return nil, fmt.Errorf("response_type: %w", err)
	}

	headers := make(map[string]string, len(s.RequestHeaders)+1)
	for k, v := range s.RequestHeaders {
		headers[k] = v
	}
	if s.UserAgent != "" {
		if _, ok := headers["User-Agent"]; !ok {
			headers["User-Agent"] = s.UserAgent
		}
	}

	fl := loader.NewFileLoader(manager).
		SetResponseType(responseType).
		SetMimeType(s.MimeType).
		SetRequestHeader(headers).
		SetWithCredentials(s.WithCredentials).
		SetPath(s.PathPrefix)

	if s.CacheEnabled {
		fl.SetCache(loader.NewMemoryCache())
	}
	if s.TimeoutSeconds > 0 {
		fl.SetHTTPClient(&http.Client{
			Timeout: time.Duration(s.TimeoutSeconds * float64(time.Second)),
		})
	}

	return fl, nil
}
