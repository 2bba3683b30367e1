package models

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"

	"github.com/diewo77/prevengo/internal/pdf"
)

// Quote represents a customer quote ("preventivo").
// Implements the Ownable interface for ownership-based authorization.
type Quote struct {
	ID        string         `gorm:"primaryKey;size:26" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// UserID is the owner of this quote (for multi-tenant isolation)
	UserID uint `gorm:"index;not null;uniqueIndex:idx_quote_user_number" json:"userId"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	// Number is assigned on creation, e.g. PRV-2024-0007
	Number string `gorm:"size:50;uniqueIndex:idx_quote_user_number" json:"quoteNumber"`

	// Customer
	CustomerName    string `gorm:"size:255;not null" json:"customerName"`
	CustomerCompany string `gorm:"size:255" json:"customerCompany,omitempty"`
	CustomerEmail   string `gorm:"size:255;not null" json:"customerEmail"`
	CustomerPhone   string `gorm:"size:50" json:"customerPhone,omitempty"`

	Subject string      `gorm:"size:500" json:"subject,omitempty"`
	Items   []QuoteItem `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE" json:"items"`

	// Amounts are stored as computed at creation time.
	Subtotal           float64  `gorm:"not null;default:0" json:"subTotal"`
	Discount           float64  `gorm:"not null;default:0" json:"discount"`
	DiscountPercentage float64  `gorm:"not null;default:0" json:"discountPercentage"`
	TaxRate            *float64 `json:"taxRate,omitempty"`
	Tax                float64  `gorm:"not null;default:0" json:"tax"`
	Total              float64  `gorm:"not null;default:0" json:"total"`

	Notes        string `gorm:"type:text" json:"notes,omitempty"`
	PaymentTerms string `gorm:"type:text" json:"paymentTerms,omitempty"`

	// LogoPath is a per-quote logo uploaded with the quote form.
	LogoPath string `gorm:"size:500" json:"logoPath,omitempty"`

	// Company snapshot carried by quotes created before company profiles
	// existed. Used only to fill blanks in the owner's profile.
	CompanyName    string `gorm:"size:255" json:"companyName,omitempty"`
	CompanyAddress string `gorm:"size:500" json:"companyAddress,omitempty"`
	VATNumber      string `gorm:"size:30" json:"vatNumber,omitempty"`
	CompanyPhone   string `gorm:"size:50" json:"companyPhone,omitempty"`
	CompanyEmail   string `gorm:"size:255" json:"companyEmail,omitempty"`
}

// BeforeCreate assigns a ULID when the quote has no ID yet.
func (q *Quote) BeforeCreate(_ *gorm.DB) error {
	if q.ID == "" {
		q.ID = ulid.Make().String()
	}
	return nil
}

// GetUserID implements the Ownable interface for authorization.
func (q *Quote) GetUserID() uint {
	return q.UserID
}

// LegacyCompany returns the company snapshot stored on the quote.
func (q *Quote) LegacyCompany() pdf.LegacyCompany {
	return pdf.LegacyCompany{
		CompanyName:    q.CompanyName,
		CompanyAddress: q.CompanyAddress,
		VATNumber:      q.VATNumber,
		CompanyPhone:   q.CompanyPhone,
		CompanyEmail:   q.CompanyEmail,
		LogoPath:       q.LogoPath,
	}
}

// Document converts the quote to composer input. Items keep their
// stored order.
func (q *Quote) Document() pdf.Quote {
	items := make([]pdf.Item, 0, len(q.Items))
	for _, it := range q.Items {
		items = append(items, it.Document())
	}
	return pdf.Quote{
		ID:        q.ID,
		Number:    q.Number,
		CreatedAt: q.CreatedAt,
		Customer: pdf.Customer{
			Name:    q.CustomerName,
			Company: q.CustomerCompany,
			Email:   q.CustomerEmail,
			Phone:   q.CustomerPhone,
		},
		Subject:            q.Subject,
		Items:              items,
		Subtotal:           q.Subtotal,
		Tax:                q.Tax,
		TaxRate:            q.TaxRate,
		Discount:           q.Discount,
		DiscountPercentage: q.DiscountPercentage,
		Total:              q.Total,
		Notes:              q.Notes,
		PaymentTerms:       q.PaymentTerms,
		LogoPath:           q.LogoPath,
	}
}

// QuoteItem represents a line item on a quote.
type QuoteItem struct {
	ID      uint   `gorm:"primaryKey" json:"-"`
	QuoteID string `gorm:"size:26;index;not null" json:"-"`

	Description string  `gorm:"size:1000;not null" json:"description"`
	Quantity    float64 `gorm:"not null;default:1" json:"quantity"`
	UnitPrice   float64 `gorm:"not null" json:"unitPrice"`
	Unit        string  `gorm:"size:50" json:"unit,omitempty"`
	Total       float64 `gorm:"not null;default:0" json:"total"`

	// Position for ordering
	Position int `gorm:"default:0" json:"-"`
}

// LineTotal calculates quantity × unit price, counting a missing quantity
// as one.
func (item *QuoteItem) LineTotal() float64 {
	return item.Document().LineTotal()
}

// Document converts the item to composer input.
func (item *QuoteItem) Document() pdf.Item {
	return pdf.Item{
		Description: item.Description,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		Unit:        item.Unit,
		Total:       item.Total,
	}
}

// GenerateQuoteNumber generates the next quote number for a user.
// Format: PRV-YYYY-NNNN (e.g., PRV-2025-0001)
func GenerateQuoteNumber(db *gorm.DB, userID uint, year int) (string, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)
	var count int64
	err := db.Unscoped().Model(&Quote{}).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, from, to).
		Count(&count).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("PRV-%d-%04d", year, count+1), nil
}
