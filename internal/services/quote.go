package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/diewo77/prevengo/internal/models"
	"github.com/diewo77/prevengo/internal/pdf"
	"github.com/diewo77/prevengo/validation"
)

var (
	ErrQuoteNotFound = errors.New("quote not found")
	ErrForbidden     = errors.New("forbidden")
)

// Composer renders a quote document.
type Composer interface {
	Compose(ctx context.Context, q pdf.Quote, iss pdf.Issuer, opts pdf.Options) (pdf.Result, error)
}

// Authorizer decides whether userID may perform action on resource.
type Authorizer interface {
	Can(ctx context.Context, userID uint, action string, resource any) bool
}

type ownerOnly struct{}

func (ownerOnly) Can(_ context.Context, userID uint, _ string, resource any) bool {
	o, ok := resource.(interface{ GetUserID() uint })
	return ok && o.GetUserID() == userID
}

// QuoteInput is the payload of a quote creation request.
type QuoteInput struct {
	CustomerName    string      `json:"customerName"`
	CustomerCompany string      `json:"customerCompany"`
	CustomerEmail   string      `json:"customerEmail"`
	CustomerPhone   string      `json:"customerPhone"`
	Subject         string      `json:"subject"`
	Items           []ItemInput `json:"items"`

	// Totals are recomputed unless subtotal, tax and total are all given.
	Subtotal           *float64 `json:"subTotal"`
	Tax                *float64 `json:"tax"`
	Total              *float64 `json:"total"`
	TaxRate            *float64 `json:"taxRate"`
	Discount           float64  `json:"discount"`
	DiscountPercentage float64  `json:"discountPercentage"`

	Notes        string `json:"notes"`
	PaymentTerms string `json:"paymentTerms"`
	LogoPath     string `json:"-"`

	CompanyName    string `json:"companyName"`
	CompanyAddress string `json:"companyAddress"`
	VATNumber      string `json:"vatNumber"`
	CompanyPhone   string `json:"companyPhone"`
	CompanyEmail   string `json:"companyEmail"`
}

// ItemInput is one requested quote line.
type ItemInput struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Unit        string  `json:"unit"`
	Total       float64 `json:"total"`
}

// Validate returns the field violations of in, keyed by JSON field name.
func (in *QuoteInput) Validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("customerName", in.CustomerName, v)
	validation.Required("customerEmail", in.CustomerEmail, v)
	validation.Email("customerEmail", in.CustomerEmail, v)
	validation.Email("companyEmail", in.CompanyEmail, v)
	if len(in.Items) == 0 {
		v["items"] = "required"
	}
	for i, it := range in.Items {
		prefix := "items." + strconv.Itoa(i) + "."
		validation.Required(prefix+"description", it.Description, v)
		validation.NonNegativeFloat(prefix+"quantity", it.Quantity, v)
		validation.NonNegativeFloat(prefix+"unitPrice", it.UnitPrice, v)
	}
	if in.TaxRate != nil {
		validation.RangeFloat("taxRate", *in.TaxRate, 0, 100, v)
	}
	validation.RangeFloat("discountPercentage", in.DiscountPercentage, 0, 100, v)
	validation.NonNegativeFloat("discount", in.Discount, v)
	return v
}

// Totals are the money amounts of a quote.
type Totals struct {
	Subtotal float64
	Discount float64
	Tax      float64
	Total    float64
}

// ComputeTotals derives the quote amounts from its items. An explicit
// discount wins over the percentage; the tax applies to the discounted
// subtotal at the quote rate or pdf.DefaultTaxRate.
func ComputeTotals(items []ItemInput, discount, discountPct float64, taxRate *float64) Totals {
	var t Totals
	for _, it := range items {
		t.Subtotal += pdf.Item{Quantity: it.Quantity, UnitPrice: it.UnitPrice}.LineTotal()
	}
	t.Subtotal = roundCents(t.Subtotal)
	t.Discount = discount
	if t.Discount <= 0 && discountPct > 0 {
		t.Discount = roundCents(t.Subtotal * discountPct / 100)
	}
	rate := pdf.DefaultTaxRate
	if taxRate != nil {
		rate = *taxRate
	}
	t.Tax = roundCents((t.Subtotal - t.Discount) * rate / 100)
	t.Total = roundCents(t.Subtotal - t.Discount + t.Tax)
	return t
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// QuoteService handles quote persistence and document generation.
type QuoteService struct {
	db       *gorm.DB
	composer Composer
	authz    Authorizer
	text     *bluemonday.Policy
	now      func() time.Time
}

// NewQuoteService builds a QuoteService. A nil authz restricts every quote
// to its owner.
func NewQuoteService(db *gorm.DB, composer Composer, authz Authorizer) *QuoteService {
	if authz == nil {
		authz = ownerOnly{}
	}
	return &QuoteService{
		db:       db,
		composer: composer,
		authz:    authz,
		text:     bluemonday.StrictPolicy(),
		now:      time.Now,
	}
}

// clean strips markup from user text. StrictPolicy escapes what it keeps,
// so the result is unescaped back to plain text for printing.
func (s *QuoteService) clean(v string) string {
	return strings.TrimSpace(html.UnescapeString(s.text.Sanitize(v)))
}

// Create stores a new quote for userID. Input must already be valid.
func (s *QuoteService) Create(ctx context.Context, userID uint, in QuoteInput) (*models.Quote, error) {
	q := &models.Quote{
		UserID:             userID,
		CustomerName:       s.clean(in.CustomerName),
		CustomerCompany:    s.clean(in.CustomerCompany),
		CustomerEmail:      strings.TrimSpace(in.CustomerEmail),
		CustomerPhone:      s.clean(in.CustomerPhone),
		Subject:            s.clean(in.Subject),
		TaxRate:            in.TaxRate,
		DiscountPercentage: in.DiscountPercentage,
		Notes:              s.clean(in.Notes),
		PaymentTerms:       s.clean(in.PaymentTerms),
		LogoPath:           strings.TrimSpace(in.LogoPath),
		CompanyName:        s.clean(in.CompanyName),
		CompanyAddress:     s.clean(in.CompanyAddress),
		VATNumber:          s.clean(in.VATNumber),
		CompanyPhone:       s.clean(in.CompanyPhone),
		CompanyEmail:       strings.TrimSpace(in.CompanyEmail),
	}
	for i, it := range in.Items {
		q.Items = append(q.Items, models.QuoteItem{
			Description: s.clean(it.Description),
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Unit:        s.clean(it.Unit),
			Total:       it.Total,
			Position:    i,
		})
	}

	t := ComputeTotals(in.Items, in.Discount, in.DiscountPercentage, in.TaxRate)
	if in.Subtotal != nil && in.Tax != nil && in.Total != nil {
		t.Subtotal, t.Tax, t.Total = *in.Subtotal, *in.Tax, *in.Total
	}
	q.Subtotal, q.Discount, q.Tax, q.Total = t.Subtotal, t.Discount, t.Tax, t.Total

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := models.GenerateQuoteNumber(tx, userID, s.now().Year())
		if err != nil {
			return err
		}
		q.Number = number
		return tx.Create(q).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create quote: %w", err)
	}
	return q, nil
}

// ListForUser returns the user's quotes, newest first.
func (s *QuoteService) ListForUser(ctx context.Context, userID uint) ([]models.Quote, error) {
	var quotes []models.Quote
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("created_at DESC").
		Find(&quotes).Error
	if err != nil {
		return nil, err
	}
	return quotes, nil
}

// Get loads a quote with its items and checks that userID may view it.
func (s *QuoteService) Get(ctx context.Context, userID uint, id string) (*models.Quote, error) {
	var q models.Quote
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ?", id).
		First(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrQuoteNotFound
	}
	if err != nil {
		return nil, err
	}
	if !s.authz.Can(ctx, userID, "view", &q) {
		return nil, ErrForbidden
	}
	return &q, nil
}

// RenderPDF composes the quote document and persists it. A *pdf.PersistError
// comes back together with the rendered bytes.
func (s *QuoteService) RenderPDF(ctx context.Context, userID uint, id string) (pdf.Result, error) {
	q, err := s.Get(ctx, userID, id)
	if err != nil {
		return pdf.Result{}, err
	}
	var owner models.User
	if err := s.db.WithContext(ctx).Preload("Company").First(&owner, q.UserID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return pdf.Result{}, err
	}
	issuer := pdf.ResolveIssuer(owner.Issuer(), q.LegacyCompany())
	return s.composer.Compose(ctx, q.Document(), issuer, pdf.Options{Persist: true})
}
