package pdf

import (
	"strings"
	"time"
)

// Kind is the type of a paint command.
type Kind int

const (
	KindRect Kind = iota
	KindRoundedRect
	KindLine
	KindText
	KindParagraph
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindRect:
		return "rect"
	case KindRoundedRect:
		return "rounded-rect"
	case KindLine:
		return "line"
	case KindText:
		return "text"
	case KindParagraph:
		return "paragraph"
	case KindImage:
		return "image"
	}
	return "unknown"
}

// Block tags identify which part of the document a command belongs to.
const (
	BlockHeader      = "header"
	BlockRecipient   = "recipient"
	BlockSubject     = "subject"
	BlockTableTitle  = "table.title"
	BlockTableHeader = "table.header"
	BlockTableRow    = "table.row"
	BlockTotals      = "totals"
	BlockNotes       = "notes"
	BlockTerms       = "terms"
	BlockFooter      = "footer"
)

// Box is an axis aligned rectangle with its origin at the top-left corner.
type Box struct {
	X, Y, W, H float64
}

// Bottom is the y coordinate of the lower edge.
func (b Box) Bottom() float64 { return b.Y + b.H }

// Point is a position on the page.
type Point struct {
	X, Y float64
}

// Fill modes for shapes.
const (
	DrawFill       = "F"
	DrawStroke     = "D"
	DrawFillStroke = "FD"
)

// Command is one paint operation. Only the fields relevant to Kind are set.
type Command struct {
	Kind  Kind
	Block string
	// Row is the 1-based table row for BlockTableRow commands.
	Row int

	Box    Box
	Radius float64
	To     Point // end point of a line, Box.X/Box.Y being the start

	Mode      string
	Fill      Color
	Stroke    Color
	LineWidth float64

	Text       string
	Font       Font
	Color      Color
	Align      string
	LineHeight float64

	Image *Logo
}

// Page is the ordered list of commands painted on one page.
type Page struct {
	Number   int
	Commands []Command
}

// Metadata is written to the document information dictionary.
type Metadata struct {
	Title   string
	Author  string
	Subject string
	Creator string
	Created time.Time
}

// Document is the complete, backend independent description of a quote.
type Document struct {
	Paper PaperSize
	Meta  Metadata
	Pages []Page
}

// Blocks returns the commands of the given block across all pages, in
// paint order.
func (d *Document) Blocks(block string) []Command {
	var out []Command
	for _, p := range d.Pages {
		for _, c := range p.Commands {
			if c.Block == block {
				out = append(out, c)
			}
		}
	}
	return out
}

// state is the builder's position in its page lifecycle.
type state int

const (
	statePainting state = iota
	stateBreakPending
	stateFinalized
)

func (s state) String() string {
	switch s {
	case statePainting:
		return "PAINTING"
	case stateBreakPending:
		return "PAGE_BREAK_PENDING"
	case stateFinalized:
		return "FINALIZED"
	}
	return "UNKNOWN"
}

// builder accumulates commands top to bottom. The cursor y only moves down
// except when a page break resets it to the top margin.
type builder struct {
	paper   PaperSize
	cw      float64
	cols    Columns
	m       Measurer
	f       Formatter
	l       Labels
	reserve float64

	doc   *Document
	y     float64
	state state
	block string
	row   int
}

func newBuilder(m Measurer, l Labels, reserve float64) *builder {
	b := &builder{
		paper:   A4,
		cw:      A4.ContentWidth(),
		cols:    TableColumns(A4.ContentWidth()),
		m:       m,
		f:       NewFormatter(l.Lang),
		l:       l,
		reserve: reserve,
		doc:     &Document{Paper: A4},
	}
	b.startPage()
	return b
}

func (b *builder) startPage() {
	b.doc.Pages = append(b.doc.Pages, Page{Number: len(b.doc.Pages) + 1})
	b.y = Margin
	b.state = statePainting
}

// remaining is the vertical space left above the footer reserve.
func (b *builder) remaining() float64 {
	return b.paper.ContentBottom() - b.y
}

// ensure breaks the page when h does not fit below the cursor and reports
// whether it did.
func (b *builder) ensure(h float64) bool {
	if Fits(b.remaining(), h) {
		return false
	}
	b.breakPage()
	return true
}

func (b *builder) breakPage() {
	b.state = stateBreakPending
	b.footer()
	b.startPage()
}

// finish paints the last footer. The builder accepts no commands afterwards.
func (b *builder) finish() *Document {
	if b.state != stateFinalized {
		b.footer()
		b.state = stateFinalized
	}
	return b.doc
}

func (b *builder) emit(c Command) {
	if b.state == stateFinalized {
		panic("pdf: paint after finalize")
	}
	c.Block = b.block
	if b.block == BlockTableRow {
		c.Row = b.row
	}
	p := &b.doc.Pages[len(b.doc.Pages)-1]
	p.Commands = append(p.Commands, c)
}

func (b *builder) rect(box Box, mode string, fill, stroke Color, lw float64) {
	b.emit(Command{Kind: KindRect, Box: box, Mode: mode, Fill: fill, Stroke: stroke, LineWidth: lw})
}

func (b *builder) roundedRect(box Box, r float64, mode string, fill, stroke Color, lw float64) {
	b.emit(Command{Kind: KindRoundedRect, Box: box, Radius: r, Mode: mode, Fill: fill, Stroke: stroke, LineWidth: lw})
}

func (b *builder) line(x1, y1, x2, y2 float64, c Color, lw float64) {
	b.emit(Command{Kind: KindLine, Box: Box{X: x1, Y: y1}, To: Point{X: x2, Y: y2}, Stroke: c, LineWidth: lw, Mode: DrawStroke})
}

// text paints a single line whose top edge sits at y.
func (b *builder) text(s string, x, y, w float64, f Font, c Color, align string) {
	b.emit(Command{Kind: KindText, Box: Box{X: x, Y: y, W: w, H: f.Size}, Text: s, Font: f, Color: c, Align: align})
}

const ellipsis = "…"

// clip folds s onto one line and shortens it with an ellipsis until it fits
// in w.
func (b *builder) clip(s string, w float64, f Font) string {
	s = strings.Join(strings.Fields(s), " ")
	if b.m.TextWidth(f, s) <= w {
		return s
	}
	r := []rune(s)
	lo, hi := 0, len(r)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if b.m.TextWidth(f, string(r[:mid])+ellipsis) <= w {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return strings.TrimRight(string(r[:lo]), " ") + ellipsis
}

// paragraph paints wrapped text and returns its measured height.
func (b *builder) paragraph(s string, x, y, w float64, f Font, c Color, align string) float64 {
	h := TextHeight(b.m, f, s, w)
	b.emit(Command{Kind: KindParagraph, Box: Box{X: x, Y: y, W: w, H: h}, Text: s, Font: f, Color: c, Align: align, LineHeight: f.LineHeight()})
	return h
}

func (b *builder) image(l *Logo, box Box) {
	b.emit(Command{Kind: KindImage, Box: box, Image: l})
}
