// Package imageloader loads images over HTTP and decodes them into
// image.Image values.
//
// It builds on package loader, so image loads get the same result
// caching, request coalescing and byte-level progress reporting as any
// other asset. PNG, JPEG, GIF, WebP, BMP and TIFF are recognized.
//
// # Basic Usage
//
//	manager := loader.NewManager()
//	il := imageloader.New(manager)
//	il.FileLoader().SetCache(loader.NewMemoryCache())
//
//	img, err := il.Fetch(ctx, "https://assets.example.com/texture.png")
//
// # Handler Registration
//
// ImageLoader satisfies loader.Handler, so a Manager can route image
// URLs to it by pattern:
//
//	manager.AddHandler(regexp.MustCompile(`\.(png|jpe?g|gif|webp)$`), il)
//
// # Post-processing
//
// Fit bounds an image to maximum dimensions with aspect-preserving
// Catmull-Rom scaling, and EncodeJPEG re-encodes for compact storage:
//
//	bounded := imageloader.Fit(img, 1024, 1024)
//	data, err := imageloader.EncodeJPEG(bounded, 90)
package imageloader
