package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/glassline/assetloader/internal/config"
	ioutils "github.com/glassline/assetloader/internal/io"
	"github.com/glassline/assetloader/pkg/loader"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

// headerList collects repeatable -header flags.
type headerList map[string]string

func (h headerList) String() string {
	parts := make([]string, 0, len(h))
	for k, v := range h {
		parts = append(parts, k+": "+v)
	}
	return strings.Join(parts, ", ")
}

func (h headerList) Set(value string) error {
	name, val, ok := strings.Cut(value, ":")
	if !ok {
		name, val, ok = strings.Cut(value, "=")
	}
	if !ok || strings.TrimSpace(name) == "" {
		return fmt.Errorf("header %q is not in 'Name: value' form", value)
	}
	h[strings.TrimSpace(name)] = strings.TrimSpace(val)
	return nil
}

func main() {
	// Command line flags
	var (
		urlsFlag        = flag.String("url", "", "URL(s) to load (comma or newline separated)")
		typeFlag        = flag.String("type", "", "Response type: text, bytes, blob, document or json (overrides config)")
		outputFlag      = flag.String("output", "", "Output directory (overrides config)")
		configFlag      = flag.String("config", "", "Path to config file")
		concurrencyFlag = flag.Int("concurrency", 0, "Maximum concurrent loads (overrides config)")
		prefixFlag      = flag.String("prefix", "", "Prefix prepended to every URL (overrides config)")
		noCacheFlag     = flag.Bool("no-cache", false, "Disable the in-memory result cache")
		saveFlag        = flag.Bool("save", false, "Write fetched payloads to the output directory")
		verboseFlag     = flag.Bool("verbose", false, "Show per-chunk progress output")
	)
	headers := headerList{}
	flag.Var(headers, "header", "Request header as 'Name: value' (repeatable)")

	flag.Parse()

	urls := collectURLs(*urlsFlag, flag.Args())
	if len(urls) == 0 {
		fmt.Println("assetload - Load resources over HTTP with caching and progress")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  assetload -url <URL> [options]")
		fmt.Println("  assetload <URL> [<URL> ...] [options]")
		fmt.Println()
		fmt.Println("For interactive mode, use: assetload-tui")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Load config
	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// Apply flags
	if *typeFlag != "" {
		settings.ResponseType = *typeFlag
	}
	if *outputFlag != "" {
		settings.OutputPath = *outputFlag
	}
	if *concurrencyFlag > 0 {
		settings.MaxConcurrentLoads = *concurrencyFlag
	}
	if *prefixFlag != "" {
		settings.PathPrefix = *prefixFlag
	}
	if *noCacheFlag {
		settings.CacheEnabled = false
	}
	for name, value := range headers {
		settings.RequestHeaders[name] = value
	}

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, cancelling...")
		cancel()
	}()

	manager := loader.NewManager()

	fl, err := settings.NewLoader(manager)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error in settings: %v\n", err)
		os.Exit(1)
	}
	fl.SetContext(ctx)

	if *saveFlag {
		if err := ioutils.EnsureDir(settings.OutputPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Loading %d resource(s), concurrency %d\n\n", len(urls), settings.MaxConcurrentLoads)

	var received, failures int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(settings.MaxConcurrentLoads)

	for _, url := range urls {
		url := url // capture
		g.Go(func() error {
			err := loadOne(gctx, fl, url, settings.OutputPath, *saveFlag, *verboseFlag, &received)
			if err == nil {
				return nil
			}
			if gctx.Err() != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "x %s: %v\n", url, err)
			atomic.AddInt64(&failures, 1)
			return nil // Continue with other URLs
		})
	}

	if err := g.Wait(); err != nil || ctx.Err() != nil {
		fmt.Println("\nCancelled.")
		os.Exit(130)
	}

	fmt.Println()
	loaded := int64(len(urls)) - failures
	fmt.Printf("Complete: %d/%d loaded (%.2f MB received)\n", loaded, len(urls), float64(received)/1024/1024)
	if failures > 0 {
		os.Exit(1)
	}
}

// loadOne loads a single URL and optionally saves the payload.
func loadOne(ctx context.Context, fl *loader.FileLoader, url, outputDir string, save, verbose bool, received *int64) error {
	type result struct {
		value any
		err   error
	}
	done := make(chan result, 1)

	var lastLoaded int64
	fl.Load(url,
		func(v any) { done <- result{value: v} },
		func(ev loader.ProgressEvent) {
			lastLoaded = ev.Loaded
			if !verbose {
				return
			}
			if ev.SizeKnown {
				fmt.Printf("  %s: %.1f%%\n", url, float64(ev.Loaded)/float64(ev.Total)*100)
			} else {
				fmt.Printf("  %s: %d bytes\n", url, ev.Loaded)
			}
		},
		func(err error) { done <- result{err: err} },
	)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case r := <-done:
		if r.err != nil {
			return r.err
		}
		atomic.AddInt64(received, lastLoaded)

		if save {
			data, err := payloadBytes(r.value)
			if err != nil {
				return err
			}
			dest := ioutils.UniquePath(outputDir, ioutils.FileNameForURL(url))
			if err := ioutils.WriteFile(dest, data); err != nil {
				return err
			}
			fmt.Printf("+ %s -> %s\n", url, dest)
			return nil
		}

		fmt.Printf("+ %s (%d bytes)\n", url, lastLoaded)
		return nil
	}
}

// payloadBytes converts a delivered value into writable bytes.
func payloadBytes(v any) ([]byte, error) {
	switch p := v.(type) {
	case []byte:
		return p, nil
	case string:
		return []byte(p), nil
	case *loader.Blob:
		return p.Data, nil
	case *html.Node:
		var buf bytes.Buffer
		if err := html.Render(&buf, p); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return json.MarshalIndent(v, "", "  ")
	}
}

// collectURLs merges the -url flag and positional arguments into a clean
// URL list.
func collectURLs(flagValue string, args []string) []string {
	raw := append(strings.FieldsFunc(flagValue, func(r rune) bool {
		return r == ',' || r == '\n'
	}), args...)

	var urls []string
	for _, u := range raw {
		u = strings.TrimSpace(u)
		if u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}
