package pdf

import "github.com/diewo77/prevengo/i18n"

// Labels are the static strings printed on a quote.
type Labels struct {
	Lang string

	Title, Number, Date                 string
	CompanyPlaceholder                  string
	VAT, Phone, Email                   string
	Recipient, CustomerPlaceholder      string
	Subject, Items                      string
	ColPos, ColDesc, ColQty, ColUnit    string
	ColPrice, ColTotal                  string
	ItemPlaceholder, DefaultUnit        string
	Discount, Subtotal, Tax, GrandTotal string
	Notes, Validity, Footer             string
	MetaTitle, MetaSubject              string
}

// LabelsFor loads the labels for lang from the i18n catalogs.
func LabelsFor(lang string) Labels {
	lang = i18n.Normalize(lang)
	t := func(code string) string { return i18n.T(lang, code) }
	return Labels{
		Lang:                lang,
		Title:               t("doc.title"),
		Number:              t("doc.number"),
		Date:                t("doc.date"),
		CompanyPlaceholder:  t("doc.company"),
		VAT:                 t("doc.vat"),
		Phone:               t("doc.phone"),
		Email:               t("doc.email"),
		Recipient:           t("doc.recipient"),
		CustomerPlaceholder: t("doc.customer"),
		Subject:             t("doc.subject"),
		Items:               t("doc.items"),
		ColPos:              t("doc.col.pos"),
		ColDesc:             t("doc.col.desc"),
		ColQty:              t("doc.col.qty"),
		ColUnit:             t("doc.col.unit"),
		ColPrice:            t("doc.col.price"),
		ColTotal:            t("doc.col.total"),
		ItemPlaceholder:     t("doc.item"),
		DefaultUnit:         t("doc.unit"),
		Discount:            t("doc.discount"),
		Subtotal:            t("doc.subtotal"),
		Tax:                 t("doc.tax"),
		GrandTotal:          t("doc.grand_total"),
		Notes:               t("doc.notes"),
		Validity:            t("doc.validity"),
		Footer:              t("doc.footer"),
		MetaTitle:           t("doc.meta.title"),
		MetaSubject:         t("doc.meta.subject"),
	}
}
