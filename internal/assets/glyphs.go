package assets

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"ark-render/internal/graphics/renderer"
)

// Glyph is one rune's placement in a GlyphAtlas, in pixels.
type Glyph struct {
	X, Y          int
	Width, Height int
	// BearingX and BearingY offset the glyph's top-left from the pen
	// position on the baseline.
	BearingX, BearingY int
	Advance            int
}

// GlyphAtlas is a single-channel coverage bitmap holding a set of glyphs.
type GlyphAtlas struct {
	Bitmap *renderer.Bitmap
	Glyphs map[rune]Glyph
	// LineHeight is the face's baseline-to-baseline distance.
	LineHeight int
}

const glyphPadding = 1

// ASCII is the printable ASCII range.
func ASCII() []rune {
	runes := make([]rune, 0, 95)
	for r := rune(32); r <= 126; r++ {
		runes = append(runes, r)
	}
	return runes
}

// LoadGlyphAtlas parses a TrueType or OpenType file and bakes runes at size
// pixels.
func LoadGlyphAtlas(path string, size float64, width int, runes []rune) (*GlyphAtlas, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}
	defer func() { _ = face.Close() }()
	return BuildGlyphAtlas(face, width, runes)
}

// BuildGlyphAtlas packs runes into rows of an R8 bitmap width pixels wide.
// Runes the face lacks are skipped; blank glyphs such as space only record
// their advance.
func BuildGlyphAtlas(face font.Face, width int, runes []rune) (*GlyphAtlas, error) {
	type placed struct {
		r     rune
		dr    image.Rectangle
		mask  image.Image
		maskp image.Point
		glyph Glyph
	}
	var glyphs []placed
	x, y, rowHeight := 0, 0, 0
	for _, r := range runes {
		dr, mask, maskp, advance, ok := face.Glyph(fixed.P(0, 0), r)
		if !ok {
			continue
		}
		g := Glyph{
			Width:    dr.Dx(),
			Height:   dr.Dy(),
			BearingX: dr.Min.X,
			BearingY: -dr.Min.Y,
			Advance:  advance.Round(),
		}
		if g.Width > width {
			return nil, fmt.Errorf("glyph %q is %d pixels wide, atlas is %d", r, g.Width, width)
		}
		if g.Width > 0 && g.Height > 0 {
			if x+g.Width > width {
				x = 0
				y += rowHeight + glyphPadding
				rowHeight = 0
			}
			g.X, g.Y = x, y
			x += g.Width + glyphPadding
			rowHeight = max(rowHeight, g.Height)
		}
		glyphs = append(glyphs, placed{r: r, dr: dr, mask: mask, maskp: maskp, glyph: g})
	}

	height := max(y+rowHeight, 1)
	canvas := image.NewAlpha(image.Rect(0, 0, width, height))
	atlas := &GlyphAtlas{
		Glyphs:     make(map[rune]Glyph, len(glyphs)),
		LineHeight: face.Metrics().Height.Ceil(),
	}
	for _, p := range glyphs {
		g := p.glyph
		if g.Width > 0 && g.Height > 0 {
			draw.Draw(canvas, image.Rect(g.X, g.Y, g.X+g.Width, g.Y+g.Height), p.mask, p.maskp, draw.Src)
		}
		atlas.Glyphs[p.r] = g
	}
	atlas.Bitmap = &renderer.Bitmap{Width: width, Height: height, Format: renderer.FormatR8, Pix: canvas.Pix}
	return atlas, nil
}
