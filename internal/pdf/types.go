package pdf

import (
	"strings"
	"time"
)

// DefaultTaxRate is the VAT percentage applied when a quote does not carry one.
const DefaultTaxRate = 22.0

// Quote is the read-only input of a composition.
type Quote struct {
	ID        string    `json:"id"`
	Number    string    `json:"quoteNumber,omitempty"`
	CreatedAt time.Time `json:"createdAt"`

	Customer Customer `json:"customer"`
	Subject  string   `json:"subject,omitempty"`
	Items    []Item   `json:"items"`

	Subtotal           float64  `json:"subTotal"`
	Tax                float64  `json:"tax"`
	TaxRate            *float64 `json:"taxRate,omitempty"`
	Discount           float64  `json:"discount,omitempty"`
	DiscountPercentage float64  `json:"discountPercentage,omitempty"`
	Total              float64  `json:"total"`

	Notes        string `json:"notes,omitempty"`
	PaymentTerms string `json:"paymentTerms,omitempty"`
	LogoPath     string `json:"logoPath,omitempty"`
}

// Customer is the recipient of a quote.
type Customer struct {
	Name    string `json:"name"`
	Company string `json:"company,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// Item is one line of the quote table. Total is accepted for wire
// compatibility but never printed: row totals are recomputed.
type Item struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Unit        string  `json:"unit,omitempty"`
	Total       float64 `json:"total,omitempty"`
}

// EffectiveQuantity returns the quantity, or 1 when absent.
func (it Item) EffectiveQuantity() float64 {
	if it.Quantity <= 0 {
		return 1
	}
	return it.Quantity
}

// LineTotal is quantity × unit price.
func (it Item) LineTotal() float64 {
	return it.EffectiveQuantity() * it.UnitPrice
}

// TaxRatePercent returns the tax rate, or DefaultTaxRate when unset.
func (q Quote) TaxRatePercent() float64 {
	if q.TaxRate == nil {
		return DefaultTaxRate
	}
	return *q.TaxRate
}

// DisplayNumber is the quote number printed in the title badge. Quotes
// without a number fall back to the first 8 characters of their ID.
func (q Quote) DisplayNumber() string {
	if n := strings.TrimSpace(q.Number); n != "" {
		return n
	}
	id := strings.TrimSpace(q.ID)
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}

// Issuer is the company profile printed in the header.
type Issuer struct {
	Name      string `json:"companyName"`
	Address   string `json:"address,omitempty"`
	VATNumber string `json:"vatNumber,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	// LogoRef is either an http(s) URL or a local file path.
	LogoRef string `json:"logoUrl,omitempty"`
}

// LegacyCompany is the company snapshot older quotes carry on themselves.
type LegacyCompany struct {
	CompanyName    string
	CompanyAddress string
	VATNumber      string
	CompanyPhone   string
	CompanyEmail   string
	LogoPath       string
}

// Issuer maps the snapshot onto the Issuer shape.
func (l LegacyCompany) Issuer() Issuer {
	return Issuer{
		Name:      strings.TrimSpace(l.CompanyName),
		Address:   strings.TrimSpace(l.CompanyAddress),
		VATNumber: strings.TrimSpace(l.VATNumber),
		Phone:     strings.TrimSpace(l.CompanyPhone),
		Email:     strings.TrimSpace(l.CompanyEmail),
		LogoRef:   strings.TrimSpace(l.LogoPath),
	}
}

// ResolveIssuer merges a profile with a legacy snapshot. Profile fields win;
// blank ones are filled from the snapshot. A nil profile yields the snapshot.
func ResolveIssuer(profile *Issuer, legacy LegacyCompany) Issuer {
	snap := legacy.Issuer()
	if profile == nil {
		return snap
	}
	out := *profile
	fill := func(dst *string, src string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = src
		}
	}
	fill(&out.Name, snap.Name)
	fill(&out.Address, snap.Address)
	fill(&out.VATNumber, snap.VATNumber)
	fill(&out.Phone, snap.Phone)
	fill(&out.Email, snap.Email)
	fill(&out.LogoRef, snap.LogoRef)
	return out
}

// Logo is a decoded, PNG-normalised image ready to embed.
type Logo struct {
	Name   string
	Data   []byte
	Width  int
	Height int
}

// Options control a single composition.
type Options struct {
	Persist bool
	// Name is the storage key used when Persist is set. Defaults to
	// "preventivo-<quote id>.pdf".
	Name string
}

// Result is the outcome of a composition.
type Result struct {
	Bytes    []byte
	Location string
	Pages    int
}
