// Package render draws game states as PNG images without a display.
package render

import (
	"fmt"
	"image"
	"log"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"

	"github.com/hailam/chessrules/internal/board"
)

// spriteKey identifies one glyph.
type spriteKey struct {
	kind board.PieceKind
	side board.Side
}

// SpriteSet holds a rasterized glyph per piece kind and side.
type SpriteSet struct {
	pieces      map[spriteKey]*image.RGBA
	size        int     // Output size (e.g., 64)
	renderScale float64 // Render at higher resolution, then downscale
}

// NewSpriteSet rasterizes every glyph at the given size.
func NewSpriteSet(size int) *SpriteSet {
	ss := &SpriteSet{
		pieces:      make(map[spriteKey]*image.RGBA),
		size:        size,
		renderScale: 3.0,
	}
	ss.loadPieces()
	return ss
}

// Get returns the glyph for a piece, or nil for Empty.
func (ss *SpriteSet) Get(p board.Piece) *image.RGBA {
	if p.IsEmpty() {
		return nil
	}
	return ss.pieces[spriteKey{p.Kind, p.Side}]
}

// Size returns the glyph size in pixels.
func (ss *SpriteSet) Size() int {
	return ss.size
}

func (ss *SpriteSet) loadPieces() {
	renderSize := int(float64(ss.size) * ss.renderScale)

	for kind := board.Pawn; kind <= board.King; kind++ {
		for _, side := range []board.Side{board.White, board.Black} {
			src := pieceSVG(kind, side)
			icon, err := oksvg.ReadIconStream(strings.NewReader(src))
			if err != nil {
				log.Printf("Failed to parse %s %s glyph: %v", side, kind, err)
				continue
			}

			icon.SetTarget(0, 0, float64(renderSize), float64(renderSize))

			big := image.NewRGBA(image.Rect(0, 0, renderSize, renderSize))
			scanner := rasterx.NewScannerGV(renderSize, renderSize, big, big.Bounds())
			raster := rasterx.NewDasher(renderSize, renderSize, scanner)
			icon.Draw(raster, 1.0)

			small := image.NewRGBA(image.Rect(0, 0, ss.size, ss.size))
			draw.CatmullRom.Scale(small, small.Bounds(), big, big.Bounds(), draw.Src, nil)
			ss.pieces[spriteKey{kind, side}] = small
		}
	}
}

// Glyph outlines on a 45x45 canvas.
var glyphShapes = map[board.PieceKind]string{
	board.Pawn: `<circle cx="22.5" cy="14" r="5"/>
<path d="M 17 34 L 19.5 21 L 25.5 21 L 28 34 Z"/>`,
	board.Knight: `<path d="M 14 34 L 16 25 L 11 21 L 15 13 L 22 8 L 30 10 L 33 20 L 31 34 Z"/>
<circle cx="19" cy="15" r="1.5" fill="{accent}"/>`,
	board.Bishop: `<circle cx="22.5" cy="7" r="2.5"/>
<circle cx="22.5" cy="16" r="6"/>
<path d="M 15 34 L 19 21 L 26 21 L 30 34 Z"/>`,
	board.Rook: `<path d="M 12 17 L 12 10 L 16 10 L 16 13 L 20 13 L 20 10 L 25 10 L 25 13 L 29 13 L 29 10 L 33 10 L 33 17 Z"/>
<path d="M 14 34 L 15.5 17 L 29.5 17 L 31 34 Z"/>`,
	board.Queen: `<path d="M 12 34 L 9 14 L 16 24 L 22.5 11 L 29 24 L 36 14 L 33 34 Z"/>
<circle cx="9" cy="13" r="2"/>
<circle cx="22.5" cy="10" r="2"/>
<circle cx="36" cy="13" r="2"/>`,
	board.King: `<path d="M 21 4 L 24 4 L 24 7 L 27 7 L 27 10 L 24 10 L 24 14 L 21 14 L 21 10 L 18 10 L 18 7 L 21 7 Z"/>
<path d="M 16 22 L 18 14 L 27 14 L 29 22 Z"/>
<path d="M 13 34 L 12 22 L 33 22 L 32 34 Z"/>`,
}

const glyphBase = `<path d="M 10 39 L 35 39 L 35 34 L 10 34 Z"/>`

// pieceSVG builds the SVG document for a glyph.
func pieceSVG(kind board.PieceKind, side board.Side) string {
	fill, stroke := "#ffffff", "#202020"
	if side == board.Black {
		fill, stroke = "#202020", "#e0e0e0"
	}

	shape := strings.ReplaceAll(glyphShapes[kind], "{accent}", stroke)
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="45" height="45" viewBox="0 0 45 45">
<g fill="%s" stroke="%s" stroke-width="1.5" stroke-linejoin="round">
%s
%s
</g>
</svg>`, fill, stroke, shape, glyphBase)
}
