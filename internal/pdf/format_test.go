package pdf

import (
	"testing"
	"time"
)

func TestFormatterCurrency(t *testing.T) {
	it := NewFormatter("it")
	cases := []struct {
		in   float64
		want string
	}{
		{0, "€0,00"},
		{12.5, "€12,50"},
		{-12.5, "-€12,50"},
		{12345.5, "€12.345,50"},
		{1234567.891, "€1.234.567,89"},
	}
	for _, c := range cases {
		if got := it.Currency(c.in); got != c.want {
			t.Errorf("it Currency(%v) = %q, want %q", c.in, got, c.want)
		}
	}

	if got := NewFormatter("en").Currency(12345.5); got != "€12,345.50" {
		t.Errorf("en Currency = %q", got)
	}
	if got := NewFormatter("not a tag!").Currency(12.5); got != "€12,50" {
		t.Errorf("fallback Currency = %q", got)
	}
}

func TestFormatterNumber(t *testing.T) {
	it := NewFormatter("it")
	cases := []struct {
		in   float64
		want string
	}{
		{1, "1"},
		{22, "22"},
		{5.5, "5,5"},
		{2.25, "2,25"},
		{0.125, "0,125"},
		{10.0001, "10"},
	}
	for _, c := range cases {
		if got := it.Number(c.in); got != c.want {
			t.Errorf("Number(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatterDate(t *testing.T) {
	f := NewFormatter("it")
	if got := f.Date(time.Date(2024, 1, 5, 23, 0, 0, 0, time.UTC)); got != "05/01/2024" {
		t.Fatalf("Date = %q", got)
	}
	if got := f.Date(time.Time{}); got != "-" {
		t.Fatalf("zero Date = %q", got)
	}
}

func TestDocumentName(t *testing.T) {
	cases := map[string]string{
		"01HV3K8Z9Q":       "preventivo-01HV3K8Z9Q.pdf",
		"../../etc/passwd": "preventivo-etc_passwd.pdf",
		"":                 "preventivo-quote.pdf",
		"a b":              "preventivo-a_b.pdf",
	}
	for in, want := range cases {
		if got := DocumentName(in); got != want {
			t.Errorf("DocumentName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestQuoteHelpers(t *testing.T) {
	if (Item{Quantity: 0, UnitPrice: 7}).LineTotal() != 7 {
		t.Fatalf("missing quantity must count as 1")
	}
	if (Item{Quantity: 2.5, UnitPrice: 4}).LineTotal() != 10 {
		t.Fatalf("line total")
	}
	if (Quote{}).TaxRatePercent() != DefaultTaxRate {
		t.Fatalf("default tax rate")
	}
	zero := 0.0
	if (Quote{TaxRate: &zero}).TaxRatePercent() != 0 {
		t.Fatalf("explicit zero tax rate must be kept")
	}
}

func TestResolveIssuer(t *testing.T) {
	legacy := LegacyCompany{CompanyName: "Old Srl", CompanyEmail: "old@example.com", LogoPath: "uploads/logo.png"}

	if got := ResolveIssuer(nil, legacy); got.Name != "Old Srl" || got.LogoRef != "uploads/logo.png" {
		t.Fatalf("nil profile: %+v", got)
	}
	got := ResolveIssuer(&Issuer{Name: "New Srl", Phone: "0123"}, legacy)
	want := Issuer{Name: "New Srl", Phone: "0123", Email: "old@example.com", LogoRef: "uploads/logo.png"}
	if got != want {
		t.Fatalf("merged = %+v, want %+v", got, want)
	}
}
