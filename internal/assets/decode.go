// Package assets decodes image files into bitmaps off the render thread.
package assets

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"ark-render/internal/config"
	"ark-render/internal/graphics/renderer"
)

// Decode reads one image in any registered format and converts it to an
// RGBA8 bitmap no larger than maxSize on either edge.
func Decode(r io.Reader, maxSize int) (*renderer.Bitmap, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return Fit(renderer.BitmapFromImage(img), maxSize), nil
}

// DecodeFile decodes path, resolved against root when relative.
func DecodeFile(root, path string, maxSize int) (*renderer.Bitmap, error) {
	if root != "" && !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	b, err := Decode(f, maxSize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// Fit scales b down, keeping its aspect ratio, so that neither edge exceeds
// maxSize.
func Fit(b *renderer.Bitmap, maxSize int) *renderer.Bitmap {
	if maxSize <= 0 || (b.Width <= maxSize && b.Height <= maxSize) {
		return b
	}
	longest := max(b.Width, b.Height)
	w := max(1, b.Width*maxSize/longest)
	h := max(1, b.Height*maxSize/longest)
	return b.Scale(w, h)
}

// DecodeFiles decodes paths concurrently with at most
// config.GetDecodeWorkers goroutines. Results keep the order of paths; the
// first error cancels the rest.
func DecodeFiles(ctx context.Context, root string, paths ...string) ([]*renderer.Bitmap, error) {
	out := make([]*renderer.Bitmap, len(paths))
	maxSize := config.GetMaxTextureSize()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(config.GetDecodeWorkers())
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b, err := DecodeFile(root, p, maxSize)
			if err != nil {
				return err
			}
			out[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// CubemapFaces lists face files in +X -X +Y -Y +Z -Z order.
type CubemapFaces [6]string

// DecodeCubemap decodes six square faces of equal size.
func DecodeCubemap(ctx context.Context, root string, faces CubemapFaces) ([]*renderer.Bitmap, error) {
	bitmaps, err := DecodeFiles(ctx, root, faces[:]...)
	if err != nil {
		return nil, err
	}
	for i, b := range bitmaps {
		if b.Width != b.Height || b.Width != bitmaps[0].Width {
			return nil, fmt.Errorf("cubemap face %d (%s) is %dx%d, want %dx%d",
				i, faces[i], b.Width, b.Height, bitmaps[0].Width, bitmaps[0].Width)
		}
	}
	return bitmaps, nil
}
