package assets

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"

	"ark-render/internal/graphics/renderer"
)

func TestBuildGlyphAtlasPacksWithoutOverlap(t *testing.T) {
	runes := append(ASCII(), '世')
	atlas, err := BuildGlyphAtlas(basicfont.Face7x13, 64, runes)
	require.NoError(t, err)

	b := atlas.Bitmap
	assert.Equal(t, renderer.FormatR8, b.Format)
	assert.Equal(t, 64, b.Width)
	assert.Len(t, b.Pix, b.Width*b.Height)
	assert.Len(t, atlas.Glyphs, 95, "missing runes are skipped")
	assert.Equal(t, 13, atlas.LineHeight)

	var rects []image.Rectangle
	for r, g := range atlas.Glyphs {
		assert.Equal(t, 7, g.Advance, "rune %q", r)
		if g.Width == 0 {
			continue
		}
		rect := image.Rect(g.X, g.Y, g.X+g.Width, g.Y+g.Height)
		assert.True(t, rect.In(image.Rect(0, 0, b.Width, b.Height)), "rune %q outside atlas", r)
		for _, other := range rects {
			assert.False(t, rect.Overlaps(other), "rune %q overlaps", r)
		}
		rects = append(rects, rect)
	}

	a := atlas.Glyphs['A']
	covered := 0
	for y := a.Y; y < a.Y+a.Height; y++ {
		for x := a.X; x < a.X+a.Width; x++ {
			if b.Pix[y*b.Width+x] > 0 {
				covered++
			}
		}
	}
	assert.Positive(t, covered)
}

func TestBuildGlyphAtlasRejectsNarrowAtlas(t *testing.T) {
	_, err := BuildGlyphAtlas(basicfont.Face7x13, 3, []rune{'A'})
	require.Error(t, err)
}

func TestLoadGlyphAtlas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "go.ttf")
	require.NoError(t, os.WriteFile(path, goregular.TTF, 0o644))

	atlas, err := LoadGlyphAtlas(path, 24, 256, ASCII())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(atlas.Glyphs), 94)
	m := atlas.Glyphs['M']
	assert.Positive(t, m.Height)
	assert.Positive(t, m.Advance)
	assert.Greater(t, atlas.LineHeight, 20)

	_, err = LoadGlyphAtlas(filepath.Join(t.TempDir(), "missing.ttf"), 24, 256, ASCII())
	require.ErrorIs(t, err, os.ErrNotExist)
}
