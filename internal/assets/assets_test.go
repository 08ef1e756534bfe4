package assets

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"ark-render/internal/config"
	"ark-render/internal/graphics/renderer"
	"ark-render/internal/graphics/renderer/headless"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func writePNG(t *testing.T, dir, name string, img image.Image) {
	t.Helper()
	f, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func writeBMP(t *testing.T, dir, name string, img image.Image) {
	t.Helper()
	f, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, bmp.Encode(f, img))
}

func TestDecodeFileFormats(t *testing.T) {
	dir := t.TempDir()
	red := color.RGBA{255, 0, 0, 255}
	writePNG(t, dir, "a.png", solid(4, 2, red))
	writeBMP(t, dir, "b.bmp", solid(3, 3, red))

	a, err := DecodeFile(dir, "a.png", 0)
	require.NoError(t, err)
	assert.Equal(t, 4, a.Width)
	assert.Equal(t, 2, a.Height)
	assert.Equal(t, renderer.FormatRGBA8, a.Format)
	assert.Equal(t, []byte{255, 0, 0, 255}, a.Pix[:4])

	b, err := DecodeFile(dir, filepath.Join(dir, "b.bmp"), 0)
	require.NoError(t, err)
	assert.Equal(t, 3, b.Width)
}

func TestDecodeFileErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := DecodeFile(dir, "missing.png", 0)
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.png"), []byte("not an image"), 0o644))
	_, err = DecodeFile(dir, "junk.png", 0)
	assert.ErrorContains(t, err, "decode image")
}

func TestFitKeepsAspect(t *testing.T) {
	b := renderer.BitmapFromImage(solid(128, 32, color.RGBA{A: 255}))
	fitted := Fit(b, 64)
	assert.Equal(t, 64, fitted.Width)
	assert.Equal(t, 16, fitted.Height)
	assert.Same(t, b, Fit(b, 128))
}

func TestDecodeFilesKeepsOrderAndLimit(t *testing.T) {
	dir := t.TempDir()
	for i, name := range []string{"0.png", "1.png", "2.png"} {
		writePNG(t, dir, name, solid(i+1, 1, color.RGBA{A: 255}))
	}
	config.SetMaxTextureSize(64)
	t.Cleanup(func() { config.SetMaxTextureSize(4096) })

	out, err := DecodeFiles(context.Background(), dir, "0.png", "1.png", "2.png")
	require.NoError(t, err)
	for i, b := range out {
		assert.Equal(t, i+1, b.Width)
	}

	_, err = DecodeFiles(context.Background(), dir, "0.png", "nope.png")
	assert.Error(t, err)
}

func TestDecodeCubemapRejectsMismatchedFaces(t *testing.T) {
	dir := t.TempDir()
	var faces CubemapFaces
	for i := range faces {
		faces[i] = filepath.Join(dir, string(rune('a'+i))+".png")
		size := 2
		if i == 5 {
			size = 4
		}
		writePNG(t, dir, filepath.Base(faces[i]), solid(size, size, color.RGBA{A: 255}))
	}
	_, err := DecodeCubemap(context.Background(), "", faces)
	assert.ErrorContains(t, err, "cubemap face 5")
}

func TestPoolDeliversResults(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "x.png", solid(2, 2, color.RGBA{G: 255, A: 255}))

	p := NewPool(dir, 4)
	defer p.Shutdown()
	results := make(chan DecodeResult, 2)
	require.True(t, p.Submit(DecodeJob{Path: "x.png", Result: results}))
	p.SubmitBlocking(DecodeJob{Path: "y.png", Result: results})

	got := map[string]DecodeResult{}
	timeout := time.After(5 * time.Second)
	for len(got) < 2 {
		select {
		case r := <-results:
			got[r.Path] = r
		case <-timeout:
			t.Fatal("pool did not deliver results")
		}
	}
	require.NoError(t, got["x.png"].Err)
	assert.Equal(t, 2, got["x.png"].Bitmap.Width)
	assert.Error(t, got["y.png"].Err)
}

func TestLoadTextureUploadsOnHeadless(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "t.png", solid(2, 1, color.RGBA{R: 7, G: 8, B: 9, A: 255}))

	recycler := renderer.NewRecycler()
	f := headless.NewFactory(recycler)
	m := config.Default().Renderer
	m.Backend = "headless"
	e, err := renderer.NewRenderEngine(m, f, renderer.PlatformInfo{Width: 8, Height: 8})
	require.NoError(t, err)
	require.NoError(t, e.OnSurfaceCreated())
	rc := renderer.NewRenderController(e, recycler)
	gc := renderer.NewGraphicsContext(e, rc)

	tex, err := LoadTexture(context.Background(), rc, dir, "t.png", renderer.DefaultTextureParameters(), renderer.UploadOnce)
	require.NoError(t, err)
	rc.OnDrawFrame(gc)
	got, ok := f.Device().Bytes(tex.ID())
	require.True(t, ok)
	assert.Equal(t, []byte{7, 8, 9, 255, 7, 8, 9, 255}, got)
}
