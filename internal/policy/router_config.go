package policy

import (
	"context"

	"gorm.io/gorm"

	"github.com/diewo77/prevengo/auth"
	"github.com/diewo77/prevengo/internal/handlers"
	"github.com/diewo77/prevengo/internal/models"
	"github.com/diewo77/prevengo/internal/ratelimit"
	"github.com/diewo77/prevengo/internal/services"
)

// Deps are the shared services the handlers are built from.
type Deps struct {
	DB       *gorm.DB
	Tokens   *auth.TokenManager
	Limiter  ratelimit.Limiter
	Store    handlers.FileStore
	Composer services.Composer
}

// RouterConfig holds configured handlers and middleware for the application.
type RouterConfig struct {
	// Auth authenticates bearer tokens and rejects tokens of deleted users
	Auth *auth.Middleware

	AuthHandler    *handlers.AuthHandler
	CompanyHandler *handlers.CompanyHandler
	QuoteHandler   *handlers.QuoteHandler

	// Services
	QuoteService *services.QuoteService
}

// NewRouterConfig wires handlers, services and the ownership policy.
func NewRouterConfig(d Deps) *RouterConfig {
	verify := func(ctx context.Context, uid uint) bool {
		var count int64
		d.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", uid).Count(&count)
		return count > 0
	}

	quoteService := services.NewQuoteService(d.DB, d.Composer, NewOwnershipPolicy())

	return &RouterConfig{
		Auth:           auth.NewMiddleware(d.Tokens, verify),
		AuthHandler:    handlers.NewAuthHandler(d.DB, d.Tokens, d.Limiter),
		CompanyHandler: handlers.NewCompanyHandler(d.DB, d.Store),
		QuoteHandler:   handlers.NewQuoteHandler(quoteService, d.Store),
		QuoteService:   quoteService,
	}
}
