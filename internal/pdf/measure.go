package pdf

import (
	"strings"

	"github.com/phpdave11/gofpdf"
)

// Measurer sizes text for the layout pass. Implementations must agree with
// the backend that eventually paints the text.
type Measurer interface {
	// TextWidth is the advance width of s on a single line.
	TextWidth(f Font, s string) float64
	// LineCount is the number of lines s wraps to inside width. Empty text
	// counts as one line.
	LineCount(f Font, s string, width float64) int
}

// fpdfMeasurer measures with the core font metrics bundled in gofpdf. It
// owns a scratch document and must not be shared between compositions.
type fpdfMeasurer struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func newFpdfMeasurer() *fpdfMeasurer {
	pdf := gofpdf.New("P", "pt", A4.Name, "")
	pdf.SetCellMargin(0)
	return &fpdfMeasurer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (m *fpdfMeasurer) TextWidth(f Font, s string) float64 {
	m.pdf.SetFont(f.Family, f.Style, f.Size)
	return m.pdf.GetStringWidth(m.tr(s))
}

func (m *fpdfMeasurer) LineCount(f Font, s string, width float64) int {
	if strings.TrimSpace(s) == "" || width <= 0 {
		return 1
	}
	m.pdf.SetFont(f.Family, f.Style, f.Size)
	n := len(m.pdf.SplitLines([]byte(m.tr(s)), width))
	if n < 1 {
		return 1
	}
	return n
}

// TextHeight is the height of s wrapped inside width.
func TextHeight(m Measurer, f Font, s string, width float64) float64 {
	return float64(m.LineCount(f, s, width)) * f.LineHeight()
}

// RowHeight is the height of a table row whose description wraps to the
// given number of lines at size pt. It never drops below RowFloor.
func RowHeight(lines int, size float64) float64 {
	if lines < 1 {
		lines = 1
	}
	h := float64(lines)*size*LineHeightScale + RowPadding
	if h < RowFloor {
		return RowFloor
	}
	return h
}
