// Package config provides configuration management for assetload.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Building a configured loader.FileLoader from settings
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Raw bytes response type
//	// In-memory result cache enabled
//	// 4 concurrent loads, 60 second timeout
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.json")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Saving Settings
//
//	settings.OutputPath = "/data/assets"
//	err := settings.Save("/path/to/config.json")
//
// # Building a Loader
//
//	manager := loader.NewManager()
//	fl, err := settings.NewLoader(manager)
package config
