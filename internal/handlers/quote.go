package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/diewo77/prevengo/auth"
	"github.com/diewo77/prevengo/httpx"
	"github.com/diewo77/prevengo/internal/models"
	"github.com/diewo77/prevengo/internal/observability"
	"github.com/diewo77/prevengo/internal/pdf"
	"github.com/diewo77/prevengo/internal/services"
)

type QuoteHandler struct {
	svc   *services.QuoteService
	store FileStore
}

func NewQuoteHandler(svc *services.QuoteService, store FileStore) *QuoteHandler {
	return &QuoteHandler{svc: svc, store: store}
}

type quoteList struct {
	Quotes []models.Quote `json:"quotes"`
}

// Create stores a quote from a JSON body or from a multipart form whose
// "items" field is a JSON array. The form may carry a "logo" file.
func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := auth.UserIDFromContext(ctx)

	var in services.QuoteInput
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+1<<20)
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
			return
		}
		var err error
		if in, err = quoteFromForm(r); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_items", nil)
			return
		}
		if files := r.MultipartForm.File["logo"]; len(files) > 0 {
			data, ct, ext, err := readImage(files[0])
			if err != nil {
				observability.FromContext(ctx).Info("quote logo rejected", zap.Error(err))
				httpx.JSONError(w, http.StatusBadRequest, "invalid_logo", nil)
				return
			}
			loc, err := h.store.Save(ctx, uploadKey("uploads", userID, ext), data, ct)
			if err != nil {
				internalError(w, r, "store quote logo", err)
				return
			}
			in.LogoPath = loc
		}
	} else if err := decodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	if v := in.Validate(); !v.Empty() {
		writeViolations(w, r, v)
		return
	}
	q, err := h.svc.Create(ctx, userID, in)
	if err != nil {
		internalError(w, r, "create quote", err)
		return
	}
	observability.FromContext(ctx).Info("quote created", zap.String("quote_id", q.ID), zap.String("number", q.Number))
	httpx.JSON(w, http.StatusCreated, q)
}

// quoteFromForm reads the multipart fields of a quote. Unparsable numbers
// count as zero.
func quoteFromForm(r *http.Request) (services.QuoteInput, error) {
	get := func(k string) string { return strings.TrimSpace(r.PostFormValue(k)) }
	num := func(keys ...string) *float64 {
		for _, k := range keys {
			if s := get(k); s != "" {
				f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
				if err != nil {
					f = 0
				}
				return &f
			}
		}
		return nil
	}
	val := func(p *float64) float64 {
		if p == nil {
			return 0
		}
		return *p
	}

	in := services.QuoteInput{
		CustomerName:       get("customerName"),
		CustomerCompany:    get("customerCompany"),
		CustomerEmail:      get("customerEmail"),
		CustomerPhone:      get("customerPhone"),
		Subject:            get("subject"),
		Subtotal:           num("subTotal", "subtotal"),
		Tax:                num("tax"),
		Total:              num("total"),
		TaxRate:            num("taxRate"),
		Discount:           val(num("discount")),
		DiscountPercentage: val(num("discountPercentage")),
		Notes:              get("notes"),
		PaymentTerms:       get("paymentTerms"),
		CompanyName:        get("companyName"),
		CompanyAddress:     get("companyAddress"),
		VATNumber:          get("vatNumber"),
		CompanyPhone:       get("companyPhone"),
		CompanyEmail:       get("companyEmail"),
	}
	if raw := get("items"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &in.Items); err != nil {
			return in, err
		}
	}
	return in, nil
}

// List returns the user's quotes, newest first. Also served as history.
func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	quotes, err := h.svc.ListForUser(r.Context(), userID)
	if err != nil {
		internalError(w, r, "list quotes", err)
		return
	}
	if quotes == nil {
		quotes = []models.Quote{}
	}
	httpx.JSON(w, http.StatusOK, quoteList{Quotes: quotes})
}

func (h *QuoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	q, err := h.svc.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeQuoteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

// PDF streams the quote document as an attachment. A failure to persist
// the copy is logged and the document is still sent.
func (h *QuoteHandler) PDF(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.FromContext(ctx)
	userID, _ := auth.UserIDFromContext(ctx)
	id := chi.URLParam(r, "id")

	res, err := h.svc.RenderPDF(ctx, userID, id)
	var persistErr *pdf.PersistError
	switch {
	case err == nil:
		logger.Info("quote pdf generated", zap.String("quote_id", id), zap.Int("pages", res.Pages), zap.String("location", res.Location))
	case errors.As(err, &persistErr) && len(res.Bytes) > 0:
		logger.Warn("quote pdf not persisted", zap.String("quote_id", id), zap.Error(err))
	case errors.Is(err, services.ErrQuoteNotFound), errors.Is(err, services.ErrForbidden):
		writeQuoteError(w, r, err)
		return
	default:
		logger.Error("quote pdf generation failed", zap.String("quote_id", id), zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "pdf_generation_failed", nil)
		return
	}
	httpx.Attachment(w, "application/pdf", pdf.DocumentName(id), res.Bytes)
}

func writeQuoteError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrQuoteNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, services.ErrForbidden):
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
	default:
		internalError(w, r, "load quote", err)
	}
}
