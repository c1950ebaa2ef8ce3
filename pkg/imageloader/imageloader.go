package imageloader

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif" // GIF decoder registration
	_ "image/png" // PNG decoder registration

	_ "golang.org/x/image/bmp"  // BMP decoder registration
	_ "golang.org/x/image/tiff" // TIFF decoder registration
	_ "golang.org/x/image/webp" // WebP decoder registration

	"github.com/glassline/assetloader/pkg/loader"
	"golang.org/x/image/draw"
)

// ImageLoader loads images over HTTP and decodes them into image.Image.
//
// It wraps a FileLoader in raw-bytes mode, so image loads share the
// caching, request coalescing and progress reporting of the underlying
// engine. Registered formats: PNG, JPEG, GIF, WebP, BMP and TIFF.
//
// Example usage:
//
//	manager := loader.NewManager()
//	il := imageloader.New(manager)
//
//	il.LoadImage("https://assets.example.com/texture.png",
//	    func(img image.Image) { /* upload to GPU */ },
//	    nil,
//	    func(err error) { /* failed */ },
//	)
type ImageLoader struct {
	fl *loader.FileLoader
}

var _ loader.Handler = (*ImageLoader)(nil)

// New creates an ImageLoader reporting to manager.
func New(manager *loader.Manager) *ImageLoader {
	return &ImageLoader{
		fl: loader.NewFileLoader(manager).SetResponseType(loader.ResponseTypeBytes),
	}
}

// FileLoader returns the underlying FileLoader for configuration, e.g.
// injecting a cache or request headers:
//
//	il.FileLoader().SetCache(loader.NewMemoryCache())
func (il *ImageLoader) FileLoader() *loader.FileLoader {
	return il.fl
}

// Load fetches url and delivers the decoded image.Image to onLoad. It
// satisfies loader.Handler so an ImageLoader can be registered with
// Manager.AddHandler for image URL patterns.
func (il *ImageLoader) Load(url string, onLoad func(any), onProgress func(loader.ProgressEvent), onError func(error)) any {
	return il.fl.Load(url,
		func(v any) {
			img, err := decodeBytes(v, url)
			if err != nil {
				if onError != nil {
					onError(err)
				}
				return
			}
			if onLoad != nil {
				onLoad(img)
			}
		},
		onProgress,
		onError,
	)
}

// LoadImage is Load with a typed callback.
func (il *ImageLoader) LoadImage(url string, onLoad func(image.Image), onProgress func(loader.ProgressEvent), onError func(error)) {
	il.Load(url,
		func(v any) {
			if onLoad != nil {
				onLoad(v.(image.Image))
			}
		},
		onProgress,
		onError,
	)
}

// Fetch loads url and blocks until the decoded image is available.
func (il *ImageLoader) Fetch(ctx context.Context, url string) (image.Image, error) {
	v, err := il.fl.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return decodeBytes(v, url)
}

// decodeBytes turns a raw payload into an image.Image.
func decodeBytes(v any, url string) (image.Image, error) {
	data, ok := v.([]byte)
	if !ok {
		return nil, &loader.DecodeError{URL: url, Err: fmt.Errorf("payload is %T, not raw bytes", v)}
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &loader.DecodeError{URL: url, Err: err}
	}
	return img, nil
}

// Fit scales img down to fit within maxWidth x maxHeight, preserving the
// aspect ratio. Images already inside the bounds are returned unchanged.
//
// The Catmull-Rom algorithm is used for high-quality resizing.
//
// Example:
//
//	// Bound texture uploads to 1024x1024
//	small := imageloader.Fit(img, 1024, 1024)
//	// A 2048x1024 image becomes 1024x512
func Fit(img image.Image, maxWidth, maxHeight int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width <= maxWidth && height <= maxHeight {
		return img
	}

	// Calculate new dimensions maintaining aspect ratio
	ratio := float64(width) / float64(height)
	if float64(maxWidth)/float64(maxHeight) > ratio {
		// Height is the limiting factor
		width = int(float64(maxHeight) * ratio)
		height = maxHeight
	} else {
		// Width is the limiting factor
		height = int(float64(maxWidth) / ratio)
		width = maxWidth
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// EncodeJPEG encodes img as JPEG with the given quality (1-100).
//
// Useful for persisting fetched textures in a compact format.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
