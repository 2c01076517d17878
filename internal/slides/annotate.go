package slides

import (
	"fmt"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	answerOriginX  = 20.0
	answerOriginY  = 20.0
	answerPadding  = 10.0
	answerBoxColor = "#bbbbbb"
	answerInkColor = "#333333"
)

// Annotator draws quiz answers onto slide images.
type Annotator struct {
	font        *truetype.Font
	size        float64
	jpegQuality int
}

// NewAnnotator parses the embedded Go Regular font. size is in points at
// 72 DPI, so it equals the rendered pixel height.
func NewAnnotator(size float64, jpegQuality int) (*Annotator, error) {
	parsed, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse answer font: %w", err)
	}
	if size <= 0 {
		size = 40
	}
	if jpegQuality <= 0 || jpegQuality > 100 {
		jpegQuality = 92
	}
	return &Annotator{font: parsed, size: size, jpegQuality: jpegQuality}, nil
}

// AnswerText renders the overlay label for a problem's answers.
func AnswerText(answers []string) string {
	return "Answer: " + strings.Join(answers, "; ")
}

// Annotate writes a copy of src to dst with the answer box drawn in the
// top-left corner.
func (a *Annotator) Annotate(src, dst string, answers []string) error {
	im, err := gg.LoadImage(src)
	if err != nil {
		return fmt.Errorf("load slide image: %w", err)
	}
	// Faces cache glyphs and are not safe to share across goroutines.
	face := truetype.NewFace(a.font, &truetype.Options{
		Size:    a.size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	defer face.Close()

	dc := gg.NewContextForImage(im)
	dc.SetFontFace(face)
	text := AnswerText(answers)
	tw, th := dc.MeasureString(text)

	dc.SetHexColor(answerBoxColor)
	dc.DrawRectangle(answerOriginX-answerPadding, answerOriginY-answerPadding, tw+2*answerPadding, th+2*answerPadding)
	dc.Fill()

	dc.SetHexColor(answerInkColor)
	dc.DrawStringAnchored(text, answerOriginX, answerOriginY, 0, 1)

	if err := gg.SaveJPG(dst, dc.Image(), a.jpegQuality); err != nil {
		return fmt.Errorf("save annotated slide: %w", err)
	}
	return nil
}
