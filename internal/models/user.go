package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/prevengo/internal/pdf"
)

// User represents an authenticated user in the system.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Email     string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"` // Hashed, never exposed in JSON
	// Company is the profile printed on the user's quotes. Nil until the
	// user registers with a company name or saves the profile form.
	Company *CompanyProfile `gorm:"foreignKey:UserID" json:"company,omitempty"`
}

// Issuer returns the company profile as composer input, or nil when the
// user has none.
func (u *User) Issuer() *pdf.Issuer {
	if u == nil || u.Company == nil {
		return nil
	}
	iss := u.Company.Issuer()
	return &iss
}
