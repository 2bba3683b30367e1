package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/prevengo/auth"
	"github.com/diewo77/prevengo/httpx"
	"github.com/diewo77/prevengo/internal/models"
	"github.com/diewo77/prevengo/internal/observability"
	"github.com/diewo77/prevengo/validation"
)

type CompanyHandler struct {
	db    *gorm.DB
	store FileStore
}

func NewCompanyHandler(db *gorm.DB, store FileStore) *CompanyHandler {
	return &CompanyHandler{db: db, store: store}
}

type companyResponse struct {
	Msg     string `json:"msg"`
	Company meUser `json:"company"`
}

// UpdateProfile applies a partial update of the company profile from a
// multipart (or urlencoded) form. Only fields present in the form change.
// An optional "logo" file replaces the stored logo.
func (h *CompanyHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := auth.UserIDFromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		if !errors.Is(err, http.ErrNotMultipart) {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
			return
		}
		if err := r.ParseForm(); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
			return
		}
	}

	var user models.User
	err := h.db.WithContext(ctx).Preload("Company").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "user_not_found", nil)
		return
	}
	if err != nil {
		internalError(w, r, "load user", err)
		return
	}
	profile := user.Company
	if profile == nil {
		profile = &models.CompanyProfile{UserID: user.ID}
	}

	changed := false
	set := func(field string, dst *string) {
		if vals, ok := r.PostForm[field]; ok {
			*dst = strings.TrimSpace(vals[0])
			changed = true
		}
	}
	set("companyName", &profile.Name)
	set("address", &profile.Address)
	set("vatNumber", &profile.VATNumber)
	set("phone", &profile.Phone)
	set("email", &profile.Email)

	v := validation.Violations{}
	validation.Email("email", profile.Email, v)
	validation.MaxLen("companyName", profile.Name, 255, v)
	validation.MaxLen("address", profile.Address, 500, v)
	if !v.Empty() {
		writeViolations(w, r, v)
		return
	}

	if r.MultipartForm != nil && len(r.MultipartForm.File["logo"]) > 0 {
		data, ct, ext, err := readImage(r.MultipartForm.File["logo"][0])
		if err != nil {
			observability.FromContext(ctx).Info("logo rejected", zap.Error(err))
			httpx.JSONError(w, http.StatusBadRequest, "invalid_logo", nil)
			return
		}
		loc, err := h.store.Save(ctx, uploadKey("logos", user.ID, ext), data, ct)
		if err != nil {
			internalError(w, r, "store logo", err)
			return
		}
		profile.LogoURL = loc
		changed = true
	}

	if !changed {
		httpx.JSON(w, http.StatusOK, companyResponse{Msg: "No changes to update", Company: profileView(&user)})
		return
	}
	if err := h.db.WithContext(ctx).Save(profile).Error; err != nil {
		internalError(w, r, "save company profile", err)
		return
	}
	user.Company = profile
	httpx.JSON(w, http.StatusOK, companyResponse{Msg: "Company profile updated successfully", Company: profileView(&user)})
}
