package models

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/prevengo/internal/pdf"
)

// CompanyProfile holds the issuer details printed in the quote header.
type CompanyProfile struct {
	ID        uint           `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time      `json:"-"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// UserID is the owner of the profile
	UserID uint `gorm:"uniqueIndex;not null" json:"-"`

	Name      string `gorm:"size:255" json:"companyName"`
	Address   string `gorm:"size:500" json:"address,omitempty"`
	VATNumber string `gorm:"size:30" json:"vatNumber,omitempty"`
	Phone     string `gorm:"size:50" json:"phone,omitempty"`
	Email     string `gorm:"size:255" json:"email,omitempty"`

	// LogoURL is the store location of the uploaded logo: a URL or a
	// local path.
	LogoURL string `gorm:"size:500" json:"logoUrl,omitempty"`
}

// GetUserID implements the Ownable interface.
func (c *CompanyProfile) GetUserID() uint {
	return c.UserID
}

// Issuer maps the profile onto composer input.
func (c *CompanyProfile) Issuer() pdf.Issuer {
	return pdf.Issuer{
		Name:      strings.TrimSpace(c.Name),
		Address:   strings.TrimSpace(c.Address),
		VATNumber: strings.TrimSpace(c.VATNumber),
		Phone:     strings.TrimSpace(c.Phone),
		Email:     strings.TrimSpace(c.Email),
		LogoRef:   strings.TrimSpace(c.LogoURL),
	}
}
