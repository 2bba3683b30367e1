package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"
)

// Render paints doc with gofpdf and serialises it. Any canvas failure is
// returned as a *RenderError and no bytes.
func Render(doc *Document) (out []byte, err error) {
	defer func() {
		// gofpdf panics on some malformed inputs (e.g. corrupt images).
		if r := recover(); r != nil {
			out, err = nil, &RenderError{Op: "paint", Err: fmt.Errorf("%v", r)}
		}
	}()

	pdf := gofpdf.New("P", "pt", doc.Paper.Name, "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(Margin, Margin, Margin)
	pdf.SetCellMargin(0)
	pdf.SetCatalogSort(true)
	created := doc.Meta.Created
	if created.IsZero() {
		created = time.Unix(0, 0).UTC()
	}
	pdf.SetCreationDate(created)
	pdf.SetTitle(doc.Meta.Title, true)
	pdf.SetAuthor(doc.Meta.Author, true)
	pdf.SetSubject(doc.Meta.Subject, true)
	pdf.SetCreator(doc.Meta.Creator, true)

	r := &fpdfRenderer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), images: map[*Logo]string{}}
	for _, page := range doc.Pages {
		pdf.AddPage()
		for _, c := range page.Commands {
			r.paint(c)
		}
		if pdf.Err() {
			return nil, &RenderError{Op: "paint", Page: page.Number, Err: pdf.Error()}
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &RenderError{Op: "serialize", Err: err}
	}
	return buf.Bytes(), nil
}

type fpdfRenderer struct {
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	images map[*Logo]string
}

func (r *fpdfRenderer) paint(c Command) {
	switch c.Kind {
	case KindRect:
		r.shapeStyle(c)
		r.pdf.Rect(c.Box.X, c.Box.Y, c.Box.W, c.Box.H, c.Mode)
	case KindRoundedRect:
		r.shapeStyle(c)
		r.roundedRect(c.Box, c.Radius, c.Mode)
	case KindLine:
		r.pdf.SetDrawColor(c.Stroke.R, c.Stroke.G, c.Stroke.B)
		r.pdf.SetLineWidth(c.LineWidth)
		r.pdf.Line(c.Box.X, c.Box.Y, c.To.X, c.To.Y)
	case KindText:
		r.font(c)
		r.pdf.SetXY(c.Box.X, c.Box.Y)
		r.pdf.CellFormat(c.Box.W, c.Box.H, r.tr(c.Text), "", 0, c.Align, false, 0, "")
	case KindParagraph:
		r.font(c)
		r.pdf.SetXY(c.Box.X, c.Box.Y)
		r.pdf.MultiCell(c.Box.W, c.LineHeight, r.tr(c.Text), "", c.Align, false)
	case KindImage:
		r.image(c)
	}
}

func (r *fpdfRenderer) font(c Command) {
	r.pdf.SetFont(c.Font.Family, c.Font.Style, c.Font.Size)
	r.pdf.SetTextColor(c.Color.R, c.Color.G, c.Color.B)
}

func (r *fpdfRenderer) shapeStyle(c Command) {
	r.pdf.SetFillColor(c.Fill.R, c.Fill.G, c.Fill.B)
	r.pdf.SetDrawColor(c.Stroke.R, c.Stroke.G, c.Stroke.B)
	if c.LineWidth > 0 {
		r.pdf.SetLineWidth(c.LineWidth)
	}
}

// roundedRect clamps the radius to half the shorter side.
func (r *fpdfRenderer) roundedRect(b Box, rad float64, mode string) {
	if rad*2 > b.W {
		rad = b.W / 2
	}
	if rad*2 > b.H {
		rad = b.H / 2
	}
	r.pdf.RoundedRect(b.X, b.Y, b.W, b.H, rad, "1234", mode)
}

func (r *fpdfRenderer) image(c Command) {
	if c.Image == nil || len(c.Image.Data) == 0 {
		return
	}
	opt := gofpdf.ImageOptions{ImageType: "PNG"}
	name, ok := r.images[c.Image]
	if !ok {
		name = fmt.Sprintf("%s-%d", orDefault(c.Image.Name, "logo"), len(r.images))
		r.pdf.RegisterImageOptionsReader(name, opt, bytes.NewReader(c.Image.Data))
		if r.pdf.Err() {
			return
		}
		r.images[c.Image] = name
	}
	r.pdf.ImageOptions(name, c.Box.X, c.Box.Y, c.Box.W, c.Box.H, false, opt, 0, "")
}
