package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/game"
)

// Theme defines the color scheme for the board.
type Theme struct {
	LightSquare    color.NRGBA
	DarkSquare     color.NRGBA
	LegalMoveColor color.NRGBA
	LastMoveColor  color.NRGBA
	CheckColor     color.NRGBA
}

// DefaultTheme returns the default color theme.
func DefaultTheme() *Theme {
	return &Theme{
		LightSquare:    color.NRGBA{240, 217, 181, 255}, // Tan
		DarkSquare:     color.NRGBA{181, 136, 99, 255},  // Brown
		LegalMoveColor: color.NRGBA{130, 151, 105, 200}, // Green dots
		LastMoveColor:  color.NRGBA{180, 190, 100, 110},
		CheckColor:     color.NRGBA{255, 100, 100, 180}, // Red
	}
}

// Options controls a single render.
type Options struct {
	// Flip draws rank 7 at the bottom instead of rank 0.
	Flip bool
	// Targets are marked with a dot, e.g. the legal moves of a selected piece.
	Targets []board.Square
	// Coordinates draws file letters and rank numbers along the edges.
	Coordinates bool
}

// Renderer draws states onto RGBA images. It is safe for concurrent use.
type Renderer struct {
	sprites    *SpriteSet
	theme      *Theme
	squareSize int
	labels     font.Face
}

// NewRenderer creates a renderer with square images of squareSize pixels.
func NewRenderer(squareSize int) (*Renderer, error) {
	if squareSize < 8 {
		return nil, fmt.Errorf("square size %d too small", squareSize)
	}

	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse label font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(squareSize) / 5,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("label face: %w", err)
	}

	return &Renderer{
		sprites:    NewSpriteSet(squareSize),
		theme:      DefaultTheme(),
		squareSize: squareSize,
		labels:     face,
	}, nil
}

// BoardSize returns the image size in pixels.
func (r *Renderer) BoardSize() int {
	return board.Size * r.squareSize
}

// SquareSize returns the size of one square in pixels.
func (r *Renderer) SquareSize() int {
	return r.squareSize
}

// Theme returns the current theme.
func (r *Renderer) Theme() *Theme {
	return r.theme
}

// SquareRect returns the pixel rectangle covered by sq.
func (r *Renderer) SquareRect(sq board.Square, flip bool) image.Rectangle {
	col, row := sq.File, board.Size-1-sq.Rank
	if flip {
		col, row = board.Size-1-sq.File, sq.Rank
	}
	corner := image.Pt(col*r.squareSize, row*r.squareSize)
	return image.Rectangle{Min: corner, Max: corner.Add(image.Pt(r.squareSize, r.squareSize))}
}

// SquareAt converts pixel coordinates to a board square.
func (r *Renderer) SquareAt(x, y int, flip bool) (board.Square, error) {
	size := r.BoardSize()
	if x < 0 || x >= size || y < 0 || y >= size {
		return board.Square{}, fmt.Errorf("%w: pixel (%d,%d)", board.ErrOutOfBounds, x, y)
	}
	col, row := x/r.squareSize, y/r.squareSize
	if flip {
		return board.NewSquare(row, board.Size-1-col), nil
	}
	return board.NewSquare(board.Size-1-row, col), nil
}

// Render draws s.
func (r *Renderer) Render(s *game.State, opts Options) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.BoardSize(), r.BoardSize()))

	r.drawBoard(img, opts.Flip)
	r.drawHighlights(img, s, opts.Flip)
	r.drawPieces(img, &s.Board, opts.Flip)
	r.drawTargets(img, opts.Targets, opts.Flip)
	if opts.Coordinates {
		r.drawCoordinates(img, opts.Flip)
	}
	return img
}

// WritePNG renders s and encodes it as PNG.
func (r *Renderer) WritePNG(w io.Writer, s *game.State, opts Options) error {
	return png.Encode(w, r.Render(s, opts))
}

func (r *Renderer) drawBoard(img *image.RGBA, flip bool) {
	for rank := 0; rank < board.Size; rank++ {
		for file := 0; file < board.Size; file++ {
			sq := board.NewSquare(rank, file)
			c := r.squareColor(sq)
			draw.Draw(img, r.SquareRect(sq, flip), image.NewUniform(c), image.Point{}, draw.Src)
		}
	}
}

// squareColor returns the background of sq; a1 is dark.
func (r *Renderer) squareColor(sq board.Square) color.NRGBA {
	if (sq.Rank+sq.File)%2 == 0 {
		return r.theme.DarkSquare
	}
	return r.theme.LightSquare
}

func (r *Renderer) drawHighlights(img *image.RGBA, s *game.State, flip bool) {
	if s.HasLastMove() {
		r.highlightSquare(img, s.LastMove.From, r.theme.LastMoveColor, flip)
		r.highlightSquare(img, s.LastMove.To, r.theme.LastMoveColor, flip)
	}

	if game.IsKingInCheck(s, s.ToMove) {
		if king, ok := s.Board.KingSquare(s.ToMove); ok {
			r.highlightSquare(img, king, r.theme.CheckColor, flip)
		}
	}
}

// highlightSquare draws a colored overlay on a square.
func (r *Renderer) highlightSquare(img *image.RGBA, sq board.Square, c color.NRGBA, flip bool) {
	if !sq.OnBoard() {
		return
	}
	draw.Draw(img, r.SquareRect(sq, flip), image.NewUniform(c), image.Point{}, draw.Over)
}

func (r *Renderer) drawPieces(img *image.RGBA, b *board.Board, flip bool) {
	for _, side := range []board.Side{board.White, board.Black} {
		for _, sq := range b.PiecesOf(side) {
			p, _ := b.At(sq)
			sprite := r.sprites.Get(p)
			if sprite == nil {
				continue
			}
			rect := r.SquareRect(sq, flip)
			draw.Draw(img, rect, sprite, image.Point{}, draw.Over)
		}
	}
}

// drawTargets draws a dot in the middle of each target square.
func (r *Renderer) drawTargets(img *image.RGBA, targets []board.Square, flip bool) {
	if len(targets) == 0 {
		return
	}

	size := r.BoardSize()
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	filler := rasterx.NewFiller(size, size, scanner)
	filler.SetColor(r.theme.LegalMoveColor)

	radius := float64(r.squareSize) * 0.15
	for _, sq := range targets {
		if !sq.OnBoard() {
			continue
		}
		rect := r.SquareRect(sq, flip)
		cx := float64(rect.Min.X) + float64(r.squareSize)/2
		cy := float64(rect.Min.Y) + float64(r.squareSize)/2
		rasterx.AddCircle(cx, cy, radius, filler)
	}
	filler.Draw()
}

// drawCoordinates draws file letters along the bottom edge and rank numbers
// along the left edge, each in the color of the opposite square shade.
func (r *Renderer) drawCoordinates(img *image.RGBA, flip bool) {
	pad := r.squareSize / 16
	ascent := r.labels.Metrics().Ascent.Ceil()

	for i := 0; i < board.Size; i++ {
		// Bottom row: one square per file.
		bottom := board.NewSquare(0, i)
		if flip {
			bottom = board.NewSquare(board.Size-1, i)
		}
		rect := r.SquareRect(bottom, flip)
		label := string(rune('a' + i))
		width := font.MeasureString(r.labels, label).Ceil()
		r.drawLabel(img, label, rect.Max.X-width-pad, rect.Max.Y-pad, r.labelColor(bottom))

		// Left column: one square per rank.
		left := board.NewSquare(i, 0)
		if flip {
			left = board.NewSquare(i, board.Size-1)
		}
		rect = r.SquareRect(left, flip)
		r.drawLabel(img, string(rune('1'+i)), rect.Min.X+pad, rect.Min.Y+pad+ascent, r.labelColor(left))
	}
}

func (r *Renderer) labelColor(sq board.Square) color.NRGBA {
	if r.squareColor(sq) == r.theme.DarkSquare {
		return r.theme.LightSquare
	}
	return r.theme.DarkSquare
}

func (r *Renderer) drawLabel(img *image.RGBA, s string, x, y int, c color.NRGBA) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: r.labels,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
