package pdf

import (
	"strings"
)

// Settings tune a layout pass.
type Settings struct {
	Measurer Measurer
	Labels   Labels
	// ReservedTrailingSpace is kept free below every table row so that the
	// totals block tends to stay on the page of the last row.
	ReservedTrailingSpace float64
}

// DefaultSettings measure with the gofpdf core fonts and print Italian labels.
func DefaultSettings() Settings {
	return Settings{
		Labels:                LabelsFor("it"),
		ReservedTrailingSpace: DefaultReservedTrailingSpace,
	}
}

// Layout turns a quote into per-page paint commands. It performs no I/O:
// logo is the already decoded image, or nil when there is none.
func Layout(q Quote, iss Issuer, logo *Logo, s Settings) *Document {
	if s.Measurer == nil {
		s.Measurer = newFpdfMeasurer()
	}
	if s.Labels.Lang == "" {
		s.Labels = LabelsFor("it")
	}
	b := newBuilder(s.Measurer, s.Labels, s.ReservedTrailingSpace)
	b.doc.Meta = Metadata{
		Title:   strings.TrimSpace(s.Labels.MetaTitle + " " + q.ID),
		Author:  "PrevenGo",
		Subject: s.Labels.MetaSubject,
		Creator: "PrevenGo PDF Generator",
		Created: q.CreatedAt,
	}

	b.header(q, iss, logo)
	b.recipient(q.Customer)
	b.subject(q.Subject)
	b.table(q.Items)
	b.totals(q)
	b.notes(q.Notes)
	b.terms(q.PaymentTerms)
	return b.finish()
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// fitBox scales w×h to fit inside maxW×maxH keeping the aspect ratio.
func fitBox(w, h int, maxW, maxH float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return maxW, maxH
	}
	scale := maxW / float64(w)
	if s := maxH / float64(h); s < scale {
		scale = s
	}
	return float64(w) * scale, float64(h) * scale
}

func (b *builder) header(q Quote, iss Issuer, logo *Logo) {
	b.block = BlockHeader
	top := b.y

	textX := Margin
	if logo != nil {
		w, h := fitBox(logo.Width, logo.Height, LogoBox, LogoBox)
		b.image(logo, Box{X: Margin, Y: top, W: w, H: h})
		textX = Margin + LogoBox + LogoGap
	}
	badgeX := b.paper.Width - Margin - BadgeWidth
	textW := badgeX - 10 - textX

	// Issuer lines are single-line and clipped so they never reach the badge.
	issuerLine := func(s string, y float64, f Font, c Color) {
		b.text(b.clip(s, textW, f), textX, y, textW, f, c, "L")
	}
	issuerLine(orDefault(iss.Name, b.l.CompanyPlaceholder), top, bold(12), colorInk)
	if v := strings.TrimSpace(iss.Address); v != "" {
		issuerLine(v, top+16, regular(9), colorMuted)
	}
	if v := strings.TrimSpace(iss.VATNumber); v != "" {
		issuerLine(b.l.VAT+" "+v, top+40, regular(9), colorMuted)
	}
	if v := strings.TrimSpace(iss.Phone); v != "" {
		issuerLine(b.l.Phone+" "+v, top+52, regular(9), colorMuted)
	}
	if v := strings.TrimSpace(iss.Email); v != "" {
		issuerLine(b.l.Email+" "+v, top+64, regular(9), colorMuted)
	}

	b.roundedRect(Box{X: badgeX, Y: top, W: BadgeWidth, H: BadgeHeight}, CornerRadius, DrawFill, colorBrand, colorBrand, 0)
	b.text(b.l.Title, badgeX, top+15, BadgeWidth, bold(24), colorWhite, "C")
	b.text(b.l.Number+" "+q.DisplayNumber(), badgeX, top+48, BadgeWidth, regular(10), colorBadgeText, "C")
	b.text(b.l.Date+" "+b.f.Date(q.CreatedAt), badgeX, top+63, BadgeWidth, regular(10), colorBadgeText, "C")

	b.y = top + HeaderHeight
	b.line(Margin, b.y, b.paper.Width-Margin, b.y, colorRule, 1)
	b.y += 25
}

func (b *builder) recipient(c Customer) {
	b.block = BlockRecipient
	b.text(b.l.Recipient, Margin, b.y, b.cw, bold(11), colorInk, "L")
	b.y += 18

	h := RecipientShort
	company := strings.TrimSpace(c.Company)
	if company != "" {
		h = RecipientTall
	}
	box := Box{X: Margin, Y: b.y, W: b.cw * RecipientRatio, H: h}
	b.roundedRect(box, CornerRadius, DrawFillStroke, colorTint, colorBrand, 1.5)

	x, w := box.X+15, box.W-30
	cy := box.Y + 15
	if company != "" {
		b.text(company, x, cy, w, bold(11), colorInk, "L")
		cy += 18
	}
	b.text(orDefault(c.Name, b.l.CustomerPlaceholder), x, cy, w, regular(10), colorBody, "L")
	cy += 16
	if v := strings.TrimSpace(c.Email); v != "" {
		b.text(v, x, cy, w, regular(10), colorSubtle, "L")
		cy += 16
	}
	if v := strings.TrimSpace(c.Phone); v != "" {
		b.text(v, x, cy, w, regular(10), colorSubtle, "L")
	}
	b.y += h + 30
}

func (b *builder) subject(s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	b.block = BlockSubject
	label := b.l.Subject + " "
	lw := b.m.TextWidth(bold(10), label)
	b.text(label, Margin, b.y, lw, bold(10), colorInk, "L")
	b.text(s, Margin+lw, b.y, b.cw-lw, regular(10), colorMuted, "L")
	b.y += 25
}

// columnX returns the left edge of each of the six table columns.
func (b *builder) columnX() [6]float64 {
	c := b.cols
	x0 := Margin
	x1 := x0 + c.Pos
	x2 := x1 + c.Desc
	x3 := x2 + c.Qty
	x4 := x3 + c.Unit
	x5 := x4 + c.Price
	return [6]float64{x0, x1, x2, x3, x4, x5}
}

func (b *builder) tableHeader() {
	b.block = BlockTableHeader
	b.rect(Box{X: Margin, Y: b.y, W: b.cw, H: TableHeaderRow}, DrawFillStroke, colorBrandDark, colorBrandEdge, 1)

	x := b.columnX()
	c := b.cols
	ty := b.y + 10
	f := bold(9)
	b.text(b.l.ColPos, x[0]+CellInset, ty, c.Pos-2*CellInset, f, colorWhite, "C")
	b.text(b.l.ColDesc, x[1]+CellInset, ty, c.Desc-2*CellInset, f, colorWhite, "L")
	b.text(b.l.ColQty, x[2]+CellInset, ty, c.Qty-2*CellInset, f, colorWhite, "C")
	b.text(b.l.ColUnit, x[3]+CellInset, ty, c.Unit-2*CellInset, f, colorWhite, "C")
	b.text(b.l.ColPrice, x[4]+CellInset, ty, c.Price-2*CellInset, f, colorWhite, "R")
	b.text(b.l.ColTotal, x[5]+CellInset, ty, c.Total-2*CellInset, f, colorWhite, "R")
	b.y += TableHeaderRow
}

func (b *builder) table(items []Item) {
	b.block = BlockTableTitle
	b.text(b.l.Items, Margin, b.y, b.cw, bold(12), colorInk, "L")
	b.y += 20
	b.tableHeader()

	x := b.columnX()
	c := b.cols
	descFont := bold(9)
	descW := c.Desc - 2*CellInset
	pageRows := 0

	for i, it := range items {
		desc := orDefault(it.Description, b.l.ItemPlaceholder)
		h := RowHeight(b.m.LineCount(descFont, desc, descW), descFont.Size)

		// A continuation page always takes at least one row.
		continued := pageRows == 0 && len(b.doc.Pages) > 1
		if !continued && b.ensure(h+b.reserve) {
			b.tableHeader()
			pageRows = 0
		}

		b.block = BlockTableRow
		b.row = i + 1
		if i%2 == 0 {
			b.rect(Box{X: Margin, Y: b.y, W: b.cw, H: h}, DrawFill, colorZebra, colorZebra, 0)
		}
		b.line(Margin, b.y+h, Margin+b.cw, b.y+h, colorRule, 0.5)

		vc := b.y + h/2 - 6
		f := regular(9)
		b.text(b.f.Number(float64(i+1)), x[0]+CellInset, vc, c.Pos-2*CellInset, f, colorSubtle, "C")
		b.paragraph(desc, x[1]+CellInset, b.y+10, descW, descFont, colorInk, "L")
		b.text(b.f.Number(it.EffectiveQuantity()), x[2]+CellInset, vc, c.Qty-2*CellInset, f, colorBody, "C")
		b.text(orDefault(it.Unit, b.l.DefaultUnit), x[3]+CellInset, vc, c.Unit-2*CellInset, f, colorSubtle, "C")
		b.text(b.f.Currency(it.UnitPrice), x[4]+CellInset, vc, c.Price-2*CellInset, f, colorBody, "R")
		b.text(b.f.Currency(it.LineTotal()), x[5]+CellInset, vc, c.Total-2*CellInset, bold(9), colorInk, "R")

		b.y += h
		pageRows++
	}
	b.row = 0
	b.y += 15
}

type totalsLine struct {
	label string
	value float64
}

func (b *builder) totalsLines(q Quote) []totalsLine {
	var lines []totalsLine
	if q.Discount > 0 {
		label := b.l.Discount
		if q.DiscountPercentage > 0 {
			label += " " + b.f.Number(q.DiscountPercentage) + "%"
		}
		lines = append(lines, totalsLine{label, -q.Discount})
	}
	lines = append(lines,
		totalsLine{b.l.Subtotal, q.Subtotal},
		totalsLine{b.l.Tax + " " + b.f.Number(q.TaxRatePercent()) + "%", q.Tax},
	)
	return lines
}

// TotalsHeight is the height of the totals block for the given number of
// label/value lines, excluding the gap that follows it.
func TotalsHeight(lines int) float64 {
	return float64(lines)*TotalsRow + 15 + TotalsBar
}

func (b *builder) totals(q Quote) {
	b.block = BlockTotals
	lines := b.totalsLines(q)
	b.ensure(TotalsHeight(len(lines)))

	x := Margin + b.cw - TotalsWidth
	ty := b.y
	for _, ln := range lines {
		b.text(ln.label, x, ty, TotalsWidth-TotalsValueCol, regular(10), colorBody, "L")
		b.text(b.f.Currency(ln.value), x+TotalsWidth-TotalsValueCol, ty, TotalsValueCol, regular(10), colorBody, "R")
		ty += TotalsRow
	}
	b.line(x, ty+5, x+TotalsWidth, ty+5, colorBrand, 2)
	ty += 15

	b.roundedRect(Box{X: x, Y: ty, W: TotalsWidth, H: TotalsBar}, CornerRadius, DrawFill, colorBrand, colorBrand, 0)
	b.text(b.l.GrandTotal, x+10, ty+12, TotalsWidth-20, bold(13), colorWhite, "L")
	b.text(b.f.Currency(q.Total), x+10, ty+12, TotalsWidth-20, bold(16), colorWhite, "R")
	b.y = ty + TotalsBar + 30
}

func (b *builder) notes(s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	b.block = BlockNotes
	body := regular(9)
	h := TextHeight(b.m, body, s, b.cw)
	b.ensure(18 + h + 25)

	b.text(b.l.Notes, Margin, b.y, b.cw, bold(10), colorInk, "L")
	b.y += 18
	b.paragraph(s, Margin, b.y, b.cw, body, colorMuted, "J")
	b.y += h + 25
}

func (b *builder) terms(s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	b.block = BlockTerms
	body := regular(8)
	innerW := b.cw - 40
	boxH := 35 + TextHeight(b.m, body, s, innerW) + 12
	if boxH < TermsBoxMin {
		boxH = TermsBoxMin
	}
	b.ensure(boxH + 20)

	b.roundedRect(Box{X: Margin, Y: b.y, W: b.cw, H: boxH}, CornerRadius, DrawFillStroke, colorTint, colorBrand, 1)
	b.text(b.l.Validity, Margin+20, b.y+15, innerW, bold(10), colorBrandDark, "C")
	b.paragraph(s, Margin+20, b.y+35, innerW, body, colorSubtle, "C")
	b.y += boxH + 20
}

func (b *builder) footer() {
	prev := b.block
	b.block = BlockFooter
	b.text(b.l.Footer, Margin, b.paper.Height-FooterOffset, b.cw, regular(8), colorFaint, "C")
	b.block = prev
}
