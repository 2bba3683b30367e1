package models

import (
	"strconv"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := db.AutoMigrate(&User{}, &CompanyProfile{}, &Quote{}, &QuoteItem{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestQuote_GetUserID(t *testing.T) {
	q := &Quote{UserID: 456}
	if got := q.GetUserID(); got != 456 {
		t.Errorf("GetUserID() = %d, want 456", got)
	}
}

func TestCompanyProfile_GetUserID(t *testing.T) {
	c := &CompanyProfile{UserID: 123}
	if got := c.GetUserID(); got != 123 {
		t.Errorf("GetUserID() = %d, want 123", got)
	}
}

func TestQuoteItem_LineTotal(t *testing.T) {
	tests := []struct {
		name string
		item QuoteItem
		want float64
	}{
		{"quantity times price", QuoteItem{Quantity: 3, UnitPrice: 12.5}, 37.5},
		{"missing quantity counts as one", QuoteItem{UnitPrice: 40}, 40},
		{"supplied total is ignored", QuoteItem{Quantity: 2, UnitPrice: 10, Total: 999}, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.LineTotal(); got != tt.want {
				t.Errorf("LineTotal() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestUser_Issuer(t *testing.T) {
	var nilUser *User
	if nilUser.Issuer() != nil {
		t.Error("nil user should have no issuer")
	}
	if (&User{}).Issuer() != nil {
		t.Error("user without company should have no issuer")
	}

	u := &User{Company: &CompanyProfile{Name: " ACME Srl ", VATNumber: "IT123", LogoURL: "logos/1/logo.png"}}
	iss := u.Issuer()
	if iss == nil {
		t.Fatal("expected issuer")
	}
	if iss.Name != "ACME Srl" || iss.VATNumber != "IT123" || iss.LogoRef != "logos/1/logo.png" {
		t.Errorf("unexpected issuer %+v", *iss)
	}
}

func TestQuote_Document(t *testing.T) {
	rate := 10.0
	q := &Quote{
		ID:            "01HQ",
		Number:        "PRV-2024-0001",
		CustomerName:  "Mario Rossi",
		CustomerEmail: "mario@example.com",
		TaxRate:       &rate,
		Items: []QuoteItem{
			{Description: "first", Quantity: 1, UnitPrice: 10},
			{Description: "second", Quantity: 2, UnitPrice: 5},
		},
		CompanyName: "Old Srl",
		LogoPath:    "uploads/logo.png",
	}

	doc := q.Document()
	if doc.Customer.Name != "Mario Rossi" || doc.Number != "PRV-2024-0001" {
		t.Errorf("unexpected document %+v", doc)
	}
	if len(doc.Items) != 2 || doc.Items[0].Description != "first" || doc.Items[1].Description != "second" {
		t.Errorf("items out of order: %+v", doc.Items)
	}
	if doc.TaxRatePercent() != 10 {
		t.Errorf("TaxRatePercent() = %f, want 10", doc.TaxRatePercent())
	}

	legacy := q.LegacyCompany()
	if legacy.CompanyName != "Old Srl" || legacy.LogoPath != "uploads/logo.png" {
		t.Errorf("unexpected snapshot %+v", legacy)
	}
}

func TestQuote_BeforeCreateAssignsULID(t *testing.T) {
	db := setupTestDB(t)
	u := User{Email: "a@example.com", Password: "x"}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	q := Quote{UserID: u.ID, Number: "PRV-1", CustomerName: "c", CustomerEmail: "c@example.com"}
	if err := db.Create(&q).Error; err != nil {
		t.Fatalf("create quote: %v", err)
	}
	if len(q.ID) != 26 {
		t.Errorf("ID = %q, want a 26 character ULID", q.ID)
	}
}

func TestGenerateQuoteNumber(t *testing.T) {
	db := setupTestDB(t)
	u := User{Email: "n@example.com", Password: "x"}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	year := time.Now().Year()

	got, err := GenerateQuoteNumber(db, u.ID, year)
	if err != nil {
		t.Fatalf("GenerateQuoteNumber: %v", err)
	}
	if want := "PRV-" + strconv.Itoa(year) + "-0001"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	for i := 0; i < 2; i++ {
		q := Quote{UserID: u.ID, Number: "X" + strconv.Itoa(i), CustomerName: "c", CustomerEmail: "c@example.com"}
		if err := db.Create(&q).Error; err != nil {
			t.Fatalf("create quote: %v", err)
		}
	}
	got, _ = GenerateQuoteNumber(db, u.ID, year)
	if want := "PRV-" + strconv.Itoa(year) + "-0003"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	got, _ = GenerateQuoteNumber(db, u.ID+1, year)
	if want := "PRV-" + strconv.Itoa(year) + "-0001"; got != want {
		t.Errorf("other user: got %q, want %q", got, want)
	}
	got, _ = GenerateQuoteNumber(db, u.ID, year-1)
	if want := "PRV-" + strconv.Itoa(year-1) + "-0001"; got != want {
		t.Errorf("previous year: got %q, want %q", got, want)
	}
}
