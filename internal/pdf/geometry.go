package pdf

// PaperSize is a page size in points (1" = 72pt).
type PaperSize struct {
	Name   string
	Width  float64
	Height float64
}

// A4 is 210mm x 297mm.
var A4 = PaperSize{Name: "A4", Width: 595.28, Height: 841.89}

// Layout constants, in points.
const (
	Margin        = 50.0
	FooterReserve = 20.0
	FooterOffset  = 30.0 // footer baseline distance from the page bottom

	HeaderHeight    = 110.0
	LogoBox         = 100.0
	LogoGap         = 5.0
	BadgeWidth      = 180.0
	BadgeHeight     = 85.0
	CornerRadius    = 8.0
	RecipientTall   = 100.0
	RecipientShort  = 70.0
	RecipientRatio  = 0.55
	TableHeaderRow  = 30.0
	RowFloor        = 35.0
	RowPadding      = 20.0
	TotalsWidth     = 250.0
	TotalsRow       = 22.0
	TotalsBar       = 40.0
	TotalsValueCol  = 80.0
	TermsBoxMin     = 60.0
	CellInset       = 5.0
	LineHeightScale = 1.15

	// DefaultReservedTrailingSpace is kept free below each table row so the
	// totals block usually lands on the same page as the last row.
	DefaultReservedTrailingSpace = 250.0
)

// ContentWidth is the printable width between the side margins.
func (p PaperSize) ContentWidth() float64 { return p.Width - 2*Margin }

// ContentBottom is the lowest y any block may reach before a page break.
func (p PaperSize) ContentBottom() float64 { return p.Height - Margin - FooterReserve }

// Fits reports whether a block of the given height fits in the remaining
// vertical space.
func Fits(remaining, blockHeight float64) bool {
	return blockHeight <= remaining
}

// Columns holds the line-item table column widths.
type Columns struct {
	Pos, Desc, Qty, Unit, Price, Total float64
}

// TableColumns derives the column widths from the content width.
func TableColumns(contentWidth float64) Columns {
	return Columns{
		Pos:   30,
		Desc:  contentWidth * 0.42,
		Qty:   contentWidth * 0.10,
		Unit:  contentWidth * 0.08,
		Price: contentWidth * 0.15,
		Total: contentWidth * 0.15,
	}
}

// Color is an RGB triple.
type Color struct{ R, G, B int }

var (
	colorInk       = Color{31, 41, 55}
	colorBody      = Color{55, 65, 81}
	colorMuted     = Color{75, 85, 99}
	colorSubtle    = Color{107, 114, 128}
	colorFaint     = Color{156, 163, 175}
	colorBrand     = Color{37, 99, 235}
	colorBrandDark = Color{29, 78, 216}
	colorBrandEdge = Color{30, 64, 175}
	colorBadgeText = Color{191, 219, 254}
	colorTint      = Color{239, 246, 255}
	colorRule      = Color{229, 231, 235}
	colorZebra     = Color{249, 250, 251}
	colorWhite     = Color{255, 255, 255}
)

// Font selects a core font face.
type Font struct {
	Family string
	Style  string
	Size   float64
}

func regular(size float64) Font { return Font{Family: "Helvetica", Size: size} }
func bold(size float64) Font    { return Font{Family: "Helvetica", Style: "B", Size: size} }

// LineHeight is the vertical advance of one text line in this font.
func (f Font) LineHeight() float64 { return f.Size * LineHeightScale }
