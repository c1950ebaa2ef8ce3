// Package ioutils provides file system utilities for assetload.
//
// This package contains functions for:
//   - File writing
//   - Filename sanitization for cross-platform compatibility
//   - Deriving local file names from URLs
//   - Directory creation
//
// # File Operations
//
//	// Write data to file
//	err := ioutils.WriteFile("/path/to/file.bin", data)
//
//	// Ensure directory exists
//	err := ioutils.EnsureDir("/path/to/new/directory")
//
// # Naming
//
// FileNameForURL picks a safe local name for a fetched asset, and
// UniquePath avoids clobbering files that already exist:
//
//	name := ioutils.FileNameForURL("https://cdn.example.com/ship.gltf?v=3")
//	dest := ioutils.UniquePath(outputDir, name) // ship.gltf, ship-1.gltf, ...
package ioutils
