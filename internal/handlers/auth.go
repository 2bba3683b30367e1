package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/diewo77/prevengo/auth"
	"github.com/diewo77/prevengo/httpx"
	"github.com/diewo77/prevengo/internal/models"
	"github.com/diewo77/prevengo/internal/observability"
	"github.com/diewo77/prevengo/internal/ratelimit"
	"github.com/diewo77/prevengo/validation"
)

type AuthHandler struct {
	db      *gorm.DB
	tokens  *auth.TokenManager
	limiter ratelimit.Limiter
}

func NewAuthHandler(db *gorm.DB, tokens *auth.TokenManager, limiter ratelimit.Limiter) *AuthHandler {
	if limiter == nil {
		limiter = ratelimit.NewMemoryLimiter(0, 0)
	}
	return &AuthHandler{db: db, tokens: tokens, limiter: limiter}
}

type credentials struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	CompanyName string `json:"companyName"`
}

type userSummary struct {
	ID          uint   `json:"id"`
	Email       string `json:"email"`
	CompanyName string `json:"companyName,omitempty"`
}

type tokenResponse struct {
	Msg   string      `json:"msg"`
	Token string      `json:"token"`
	User  userSummary `json:"user"`
}

func (c *credentials) validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("email", c.Email, v)
	validation.Email("email", c.Email, v)
	validation.Required("password", c.Password, v)
	return v
}

// Register creates an account and logs it in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	v := in.validate()
	if len(in.Password) > 72 { // bcrypt input limit, in bytes
		v["password"] = "too_long"
	}
	if !v.Empty() {
		writeViolations(w, r, v)
		return
	}

	var count int64
	if err := h.db.WithContext(r.Context()).Model(&models.User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
		internalError(w, r, "lookup user", err)
		return
	}
	if count > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "user_already_exists", nil)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		internalError(w, r, "hash password", err)
		return
	}
	user := models.User{Email: in.Email, Password: string(hashed)}
	if name := strings.TrimSpace(in.CompanyName); name != "" {
		user.Company = &models.CompanyProfile{Name: name}
	}
	if err := h.db.WithContext(r.Context()).Create(&user).Error; err != nil {
		// lost a race with a concurrent registration
		httpx.JSONError(w, http.StatusBadRequest, "user_already_exists", nil)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		internalError(w, r, "issue token", err)
		return
	}
	summary := userSummary{ID: user.ID, Email: user.Email}
	if user.Company != nil {
		summary.CompanyName = user.Company.Name
	}
	httpx.JSON(w, http.StatusOK, tokenResponse{Msg: "Registered", Token: token, User: summary})
}

// Login checks credentials. Failed attempts are counted per email and
// block further attempts for the limiter window.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if v := in.validate(); !v.Empty() {
		writeViolations(w, r, v)
		return
	}

	ctx := r.Context()
	if err := h.limiter.Allow(ctx, in.Email); err != nil {
		if errors.Is(err, ratelimit.ErrTooManyAttempts) {
			httpx.JSONError(w, http.StatusTooManyRequests, "too_many_attempts", nil)
			return
		}
		// A limiter outage must not lock everyone out.
		observability.FromContext(ctx).Warn("login limiter unavailable", zap.Error(err))
	}

	var user models.User
	err := h.db.WithContext(ctx).Where("email = ?", in.Email).First(&user).Error
	if err == nil {
		err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password))
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		internalError(w, r, "lookup user", err)
		return
	}
	if err != nil {
		if ferr := h.limiter.Fail(ctx, in.Email); ferr != nil {
			observability.FromContext(ctx).Warn("record failed login", zap.Error(ferr))
		}
		httpx.JSONError(w, http.StatusBadRequest, "invalid_credentials", nil)
		return
	}
	_ = h.limiter.Reset(ctx, in.Email)

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		internalError(w, r, "issue token", err)
		return
	}
	httpx.JSON(w, http.StatusOK, tokenResponse{Msg: "Logged in", Token: token, User: userSummary{ID: user.ID, Email: user.Email}})
}

type meResponse struct {
	User meUser `json:"user"`
}

type meUser struct {
	ID          uint   `json:"id"`
	Email       string `json:"email"`
	CompanyName string `json:"companyName,omitempty"`
	Address     string `json:"address,omitempty"`
	VATNumber   string `json:"vatNumber,omitempty"`
	Phone       string `json:"phone,omitempty"`
	CompanyMail string `json:"companyEmail,omitempty"`
	LogoURL     string `json:"logoUrl,omitempty"`
}

func profileView(u *models.User) meUser {
	out := meUser{ID: u.ID, Email: u.Email}
	if c := u.Company; c != nil {
		out.CompanyName = c.Name
		out.Address = c.Address
		out.VATNumber = c.VATNumber
		out.Phone = c.Phone
		out.CompanyMail = c.Email
		out.LogoURL = c.LogoURL
	}
	return out
}

// Me returns the authenticated user with the company profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var user models.User
	err := h.db.WithContext(r.Context()).Preload("Company").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "user_not_found", nil)
		return
	}
	if err != nil {
		internalError(w, r, "load user", err)
		return
	}
	httpx.JSON(w, http.StatusOK, meResponse{User: profileView(&user)})
}
