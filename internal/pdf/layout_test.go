package pdf

import (
	"math"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// charMeasurer treats every rune as half an em wide.
type charMeasurer struct{}

func (charMeasurer) TextWidth(f Font, s string) float64 {
	return float64(utf8.RuneCountInString(s)) * f.Size / 2
}

func (m charMeasurer) LineCount(f Font, s string, width float64) int {
	n := 0
	for _, para := range strings.Split(s, "\n") {
		lines := int(math.Ceil(m.TextWidth(f, para) / width))
		if lines < 1 {
			lines = 1
		}
		n += lines
	}
	return n
}

func testSettings() Settings {
	return Settings{Measurer: charMeasurer{}, Labels: LabelsFor("it"), ReservedTrailingSpace: DefaultReservedTrailingSpace}
}

func sampleQuote(items int) Quote {
	q := Quote{
		ID:        "65f1c0ffee00112233445566",
		CreatedAt: time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC),
		Customer:  Customer{Name: "Mario Rossi", Email: "mario@example.com", Phone: "+39 333 1234567"},
		Subject:   "Ristrutturazione bagno",
		Subtotal:  100,
		Tax:       22,
		Total:     122,
	}
	for i := 0; i < items; i++ {
		q.Items = append(q.Items, Item{Description: "Posa piastrelle", Quantity: 2, UnitPrice: 50})
	}
	return q
}

func texts(cmds []Command) []string {
	var out []string
	for _, c := range cmds {
		if c.Kind == KindText || c.Kind == KindParagraph {
			out = append(out, c.Text)
		}
	}
	return out
}

func rowOrder(doc *Document) []int {
	var rows []int
	for _, c := range doc.Blocks(BlockTableRow) {
		if len(rows) == 0 || rows[len(rows)-1] != c.Row {
			rows = append(rows, c.Row)
		}
	}
	return rows
}

func TestFits(t *testing.T) {
	cases := []struct {
		remaining, h float64
		want         bool
	}{
		{100, 50, true},
		{100, 100, true},
		{100, 100.01, false},
		{0, 1, false},
		{-5, 0, false},
	}
	for _, c := range cases {
		if got := Fits(c.remaining, c.h); got != c.want {
			t.Errorf("Fits(%v, %v) = %v, want %v", c.remaining, c.h, got, c.want)
		}
	}
}

func TestRowHeightMonotonicWithFloor(t *testing.T) {
	prev := 0.0
	for lines := 0; lines <= 30; lines++ {
		h := RowHeight(lines, 9)
		if h < RowFloor {
			t.Fatalf("lines=%d: height %v below floor", lines, h)
		}
		if h < prev {
			t.Fatalf("lines=%d: height %v decreased from %v", lines, h, prev)
		}
		prev = h
	}
	assert.Equal(t, RowFloor, RowHeight(1, 9))
}

func TestLayoutRowsKeepInputOrder(t *testing.T) {
	q := sampleQuote(0)
	for _, d := range []string{"alpha", "bravo", "charlie", "delta", "echo"} {
		q.Items = append(q.Items, Item{Description: d, Quantity: 1, UnitPrice: 1})
	}
	doc := Layout(q, Issuer{Name: "ACME"}, nil, testSettings())

	require.Equal(t, []int{1, 2, 3, 4, 5}, rowOrder(doc))

	var descs, index []string
	for _, c := range doc.Blocks(BlockTableRow) {
		switch {
		case c.Kind == KindParagraph:
			descs = append(descs, c.Text)
		case c.Kind == KindText && c.Box.X == Margin+CellInset:
			index = append(index, c.Text)
		}
	}
	if diff := cmp.Diff([]string{"alpha", "bravo", "charlie", "delta", "echo"}, descs); diff != "" {
		t.Errorf("descriptions (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"1", "2", "3", "4", "5"}, index); diff != "" {
		t.Errorf("row index (-want +got):\n%s", diff)
	}
}

func TestLayoutRowTotalIgnoresSuppliedTotal(t *testing.T) {
	q := sampleQuote(0)
	q.Items = []Item{{Description: "Consulenza", Quantity: 3, UnitPrice: 12.5, Total: 999}}
	doc := Layout(q, Issuer{}, nil, testSettings())

	got := texts(doc.Blocks(BlockTableRow))
	assert.Contains(t, got, "€37,50")
	assert.NotContains(t, got, "€999,00")
}

func TestLayoutRowDefaults(t *testing.T) {
	q := sampleQuote(0)
	q.Items = []Item{{UnitPrice: 10}}
	doc := Layout(q, Issuer{}, nil, testSettings())

	got := texts(doc.Blocks(BlockTableRow))
	assert.Contains(t, got, "Descrizione articolo")
	assert.Contains(t, got, "pz")
	assert.Contains(t, got, "1")
	assert.Contains(t, got, "€10,00")
}

func TestLayoutLongDescriptionGrowsRow(t *testing.T) {
	q := sampleQuote(0)
	q.Items = []Item{
		{Description: "short", Quantity: 1, UnitPrice: 1},
		{Description: strings.Repeat("molto lungo ", 60), Quantity: 1, UnitPrice: 1},
	}
	doc := Layout(q, Issuer{}, nil, testSettings())

	heights := map[int]float64{}
	for _, c := range doc.Blocks(BlockTableRow) {
		if c.Kind == KindLine {
			heights[c.Row] = c.Box.Y
		}
	}
	var paras []Command
	for _, c := range doc.Blocks(BlockTableRow) {
		if c.Kind == KindParagraph {
			paras = append(paras, c)
		}
	}
	require.Len(t, paras, 2)
	// the bottom rule of the long row sits below its wrapped text
	assert.GreaterOrEqual(t, heights[2], paras[1].Box.Bottom())
	assert.Greater(t, paras[1].Box.H, paras[0].Box.H)
}

func TestLayoutPaginationRepaintsTableHeader(t *testing.T) {
	doc := Layout(sampleQuote(40), Issuer{Name: "ACME"}, nil, testSettings())

	require.Greater(t, len(doc.Pages), 1)
	assert.Equal(t, 40, len(rowOrder(doc)))

	for i, p := range doc.Pages {
		footers := 0
		for _, c := range p.Commands {
			if c.Block == BlockFooter {
				footers++
			}
		}
		assert.Equalf(t, 1, footers, "page %d footers", i+1)

		if i == 0 {
			continue
		}
		hasRows := false
		for _, c := range p.Commands {
			if c.Block == BlockTableRow {
				hasRows = true
				break
			}
		}
		if hasRows {
			assert.Equalf(t, BlockTableHeader, p.Commands[0].Block, "page %d must start with the table header", i+1)
			assert.Equalf(t, Margin, p.Commands[0].Box.Y, "page %d header at top margin", i+1)
		}
	}
	// the footer is the last command of every page
	for i, p := range doc.Pages {
		last := p.Commands[len(p.Commands)-1]
		assert.Equalf(t, BlockFooter, last.Block, "page %d", i+1)
	}
}

func TestLayoutNothingCrossesContentBottom(t *testing.T) {
	doc := Layout(sampleQuote(60), Issuer{}, nil, testSettings())
	limit := A4.ContentBottom()
	for _, p := range doc.Pages {
		for _, c := range p.Commands {
			if c.Block == BlockFooter || c.Block == BlockTotals {
				continue
			}
			if c.Kind == KindRect || c.Kind == KindParagraph {
				assert.LessOrEqualf(t, c.Box.Bottom(), limit, "page %d %s %s", p.Number, c.Block, c.Kind)
			}
		}
	}
}

func TestLayoutZeroItems(t *testing.T) {
	doc := Layout(sampleQuote(0), Issuer{}, nil, testSettings())

	require.Len(t, doc.Pages, 1)
	assert.Empty(t, doc.Blocks(BlockTableRow))
	assert.NotEmpty(t, doc.Blocks(BlockTableHeader))
	assert.NotEmpty(t, doc.Blocks(BlockTotals))

	// totals follow the table header directly
	var order []string
	for _, c := range doc.Pages[0].Commands {
		if len(order) == 0 || order[len(order)-1] != c.Block {
			order = append(order, c.Block)
		}
	}
	idx := -1
	for i, b := range order {
		if b == BlockTableHeader {
			idx = i
		}
	}
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, BlockTotals, order[idx+1])
}

func TestLayoutRecipientTiers(t *testing.T) {
	box := func(doc *Document) Command {
		for _, c := range doc.Blocks(BlockRecipient) {
			if c.Kind == KindRoundedRect {
				return c
			}
		}
		t.Fatalf("no recipient box")
		return Command{}
	}

	q := sampleQuote(1)
	plain := Layout(q, Issuer{}, nil, testSettings())
	assert.Equal(t, RecipientShort, box(plain).Box.H)
	assert.NotContains(t, texts(plain.Blocks(BlockRecipient)), "Rossi SRL")

	q.Customer.Company = "Rossi SRL"
	withCompany := Layout(q, Issuer{}, nil, testSettings())
	assert.Equal(t, RecipientTall, box(withCompany).Box.H)

	got := texts(withCompany.Blocks(BlockRecipient))
	want := []string{"Spett.le", "Rossi SRL", "Mario Rossi", "mario@example.com", "+39 333 1234567"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("recipient lines (-want +got):\n%s", diff)
	}
}

func TestLayoutDiscountLine(t *testing.T) {
	q := sampleQuote(1)
	q.Subtotal = 125
	q.Discount = 12.5
	q.DiscountPercentage = 10
	q.Tax = 24.75
	q.Total = 137.25
	doc := Layout(q, Issuer{}, nil, testSettings())

	got := texts(doc.Blocks(BlockTotals))
	want := []string{
		"Sconto 10%", "-€12,50",
		"Imponibile", "€125,00",
		"IVA 22%", "€24,75",
		"TOTALE PREVENTIVO", "€137,25",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("totals (-want +got):\n%s", diff)
	}
}

func TestLayoutNoDiscountLineWithoutDiscount(t *testing.T) {
	rate := 10.0
	q := sampleQuote(1)
	q.TaxRate = &rate
	got := texts(Layout(q, Issuer{}, nil, testSettings()).Blocks(BlockTotals))
	assert.NotContains(t, strings.Join(got, "|"), "Sconto")
	assert.Contains(t, got, "IVA 10%")
}

func TestLayoutHeaderShiftsWithoutLogo(t *testing.T) {
	iss := Issuer{Name: "ACME Srl", VATNumber: "IT01234567890"}
	name := func(doc *Document) Command {
		for _, c := range doc.Blocks(BlockHeader) {
			if c.Kind == KindText && c.Text == "ACME Srl" {
				return c
			}
		}
		t.Fatalf("issuer name not painted")
		return Command{}
	}

	without := Layout(sampleQuote(1), iss, nil, testSettings())
	assert.Equal(t, Margin, name(without).Box.X)

	logo := &Logo{Name: "logo", Data: []byte{1}, Width: 200, Height: 100}
	with := Layout(sampleQuote(1), iss, logo, testSettings())
	assert.Equal(t, Margin+LogoBox+LogoGap, name(with).Box.X)

	var img *Command
	for _, c := range with.Blocks(BlockHeader) {
		if c.Kind == KindImage {
			c := c
			img = &c
		}
	}
	require.NotNil(t, img)
	assert.Equal(t, Box{X: Margin, Y: Margin, W: 100, H: 50}, img.Box)
	assert.Contains(t, texts(with.Blocks(BlockHeader)), "P.IVA: IT01234567890")
}

func TestLayoutIssuerLinesStayClearOfBadge(t *testing.T) {
	iss := Issuer{
		Name:      strings.Repeat("Costruzioni Generali ", 8),
		Address:   strings.Repeat("Via Giuseppe Garibaldi 123\nScala B interno 4\n", 6),
		VATNumber: "IT01234567890",
		Phone:     "+39 02 1234567",
		Email:     strings.Repeat("amministrazione", 6) + "@example.com",
	}
	badgeX := A4.Width - Margin - BadgeWidth
	m := charMeasurer{}

	for _, logo := range []*Logo{nil, {Name: "logo", Data: []byte{1}, Width: 10, Height: 10}} {
		var issuer []Command
		for _, c := range Layout(sampleQuote(1), iss, logo, testSettings()).Blocks(BlockHeader) {
			if c.Kind == KindText && c.Box.X < badgeX {
				issuer = append(issuer, c)
			}
		}
		require.Len(t, issuer, 5)
		for _, c := range issuer {
			assert.NotContains(t, c.Text, "\n")
			assert.LessOrEqual(t, c.Box.X+m.TextWidth(c.Font, c.Text), badgeX, c.Text)
		}
		assert.True(t, strings.HasPrefix(issuer[1].Text, "Via Giuseppe Garibaldi 123 Scala B"), issuer[1].Text)
		assert.True(t, strings.HasSuffix(issuer[1].Text, "…"), issuer[1].Text)
	}

	short := Issuer{Name: "ACME Srl", Address: "Via Roma 1\n20121 Milano"}
	got := texts(Layout(sampleQuote(1), short, nil, testSettings()).Blocks(BlockHeader))
	assert.Contains(t, got, "Via Roma 1 20121 Milano")
}

func TestLayoutBadge(t *testing.T) {
	q := sampleQuote(0)
	got := texts(Layout(q, Issuer{}, nil, testSettings()).Blocks(BlockHeader))
	assert.Contains(t, got, "Nome Azienda")
	assert.Contains(t, got, "PREVENTIVO")
	assert.Contains(t, got, "N. 65F1C0FF")
	assert.Contains(t, got, "del 09/03/2024")

	q.Number = "PRV-2024-0007"
	q.CreatedAt = time.Time{}
	got = texts(Layout(q, Issuer{}, nil, testSettings()).Blocks(BlockHeader))
	assert.Contains(t, got, "N. PRV-2024-0007")
	assert.Contains(t, got, "del -")
}

func TestLayoutNotesBreakToNewPage(t *testing.T) {
	q := sampleQuote(3)
	q.Notes = strings.Repeat("Nota importante sul cantiere. ", 40)
	doc := Layout(q, Issuer{}, nil, testSettings())

	notes := doc.Blocks(BlockNotes)
	require.NotEmpty(t, notes)
	last := doc.Pages[len(doc.Pages)-1]
	assert.Equal(t, BlockNotes, last.Commands[0].Block)
	assert.Equal(t, Margin, last.Commands[0].Box.Y)
}

func TestLayoutTermsBox(t *testing.T) {
	q := sampleQuote(1)
	q.PaymentTerms = "50% all'ordine, saldo a fine lavori"
	doc := Layout(q, Issuer{}, nil, testSettings())

	got := texts(doc.Blocks(BlockTerms))
	assert.Equal(t, []string{"Preventivo valido 30 giorni", q.PaymentTerms}, got)
	for _, c := range doc.Blocks(BlockTerms) {
		if c.Kind == KindRoundedRect {
			assert.GreaterOrEqual(t, c.Box.H, TermsBoxMin)
			assert.Equal(t, DrawFillStroke, c.Mode)
		}
	}
}

func TestLayoutTotalsNotSplit(t *testing.T) {
	// A reserve of zero lets rows run to the bottom; the totals block must
	// still land whole on one page.
	s := testSettings()
	s.ReservedTrailingSpace = 0
	for n := 0; n < 40; n++ {
		doc := Layout(sampleQuote(n), Issuer{}, nil, s)
		pages := map[int]bool{}
		for _, p := range doc.Pages {
			for _, c := range p.Commands {
				if c.Block == BlockTotals {
					pages[p.Number] = true
					assert.LessOrEqualf(t, c.Box.Bottom(), A4.ContentBottom(), "items=%d", n)
				}
			}
		}
		assert.Lenf(t, pages, 1, "items=%d", n)
	}
}

func TestLayoutMetadata(t *testing.T) {
	q := sampleQuote(0)
	doc := Layout(q, Issuer{}, nil, testSettings())
	want := Metadata{
		Title:   "Preventivo " + q.ID,
		Author:  "PrevenGo",
		Subject: "Preventivo",
		Creator: "PrevenGo PDF Generator",
		Created: q.CreatedAt,
	}
	if diff := cmp.Diff(want, doc.Meta); diff != "" {
		t.Errorf("metadata (-want +got):\n%s", diff)
	}
}

func TestLayoutEnglishLabels(t *testing.T) {
	s := testSettings()
	s.Labels = LabelsFor("en-GB")
	q := sampleQuote(1)
	q.Subtotal = 12345.5
	doc := Layout(q, Issuer{}, nil, s)
	got := texts(doc.Blocks(BlockTotals))
	assert.Contains(t, got, "Subtotal")
	assert.Contains(t, got, "€12,345.50")
}
