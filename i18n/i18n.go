// Package i18n holds the user facing strings of the API and of the printed
// quote, for Italian (default), English and French.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Default is the language used when nothing better matches.
const Default = "it"

var supported = []language.Tag{language.Italian, language.English, language.French}

var matcher = language.NewMatcher(supported)

var catalogs = map[string]map[string]string{
	"it": {
		// validation / API
		"required":            "Obbligatorio",
		"invalid_email":       "Email non valida",
		"must_be_positive":    "Deve essere maggiore di zero",
		"must_be_nonnegative": "Non può essere negativo",
		"too_long":            "Troppo lungo",
		"invalid_json":        "JSON non valido",
		"invalid_items":       "Articoli non validi",
		"not_found":           "Non trovato",
		"forbidden":           "Accesso negato",
		// document
		"doc.title":           "PREVENTIVO",
		"doc.number":          "N.",
		"doc.date":            "del",
		"doc.company":         "Nome Azienda",
		"doc.vat":             "P.IVA:",
		"doc.phone":           "Tel:",
		"doc.email":           "Email:",
		"doc.recipient":       "Spett.le",
		"doc.customer":        "Nome Cognome",
		"doc.subject":         "Oggetto:",
		"doc.items":           "Dettaglio Servizi/Prodotti",
		"doc.col.pos":         "POS",
		"doc.col.desc":        "DESCRIZIONE",
		"doc.col.qty":         "Q.TÀ",
		"doc.col.unit":        "U.M.",
		"doc.col.price":       "PREZZO UNIT.",
		"doc.col.total":       "TOTALE",
		"doc.item":            "Descrizione articolo",
		"doc.unit":            "pz",
		"doc.discount":        "Sconto",
		"doc.subtotal":        "Imponibile",
		"doc.tax":             "IVA",
		"doc.grand_total":     "TOTALE PREVENTIVO",
		"doc.notes":           "Note",
		"doc.validity":        "Preventivo valido 30 giorni",
		"doc.footer":          "Preventivo creato con <3 con PrevenGo",
		"doc.meta.title":      "Preventivo",
		"doc.meta.subject":    "Preventivo",
	},
	"en": {
		"required":            "Required",
		"invalid_email":       "Invalid email",
		"must_be_positive":    "Must be greater than zero",
		"must_be_nonnegative": "Cannot be negative",
		"too_long":            "Too long",
		"invalid_json":        "Invalid JSON",
		"invalid_items":       "Invalid items",
		"not_found":           "Not found",
		"forbidden":           "Forbidden",
		"doc.title":           "QUOTE",
		"doc.number":          "No.",
		"doc.date":            "of",
		"doc.company":         "Company Name",
		"doc.vat":             "VAT:",
		"doc.phone":           "Phone:",
		"doc.email":           "Email:",
		"doc.recipient":       "To",
		"doc.customer":        "Full Name",
		"doc.subject":         "Subject:",
		"doc.items":           "Services/Products",
		"doc.col.pos":         "POS",
		"doc.col.desc":        "DESCRIPTION",
		"doc.col.qty":         "QTY",
		"doc.col.unit":        "UNIT",
		"doc.col.price":       "UNIT PRICE",
		"doc.col.total":       "TOTAL",
		"doc.item":            "Item description",
		"doc.unit":            "pcs",
		"doc.discount":        "Discount",
		"doc.subtotal":        "Subtotal",
		"doc.tax":             "VAT",
		"doc.grand_total":     "QUOTE TOTAL",
		"doc.notes":           "Notes",
		"doc.validity":        "Quote valid for 30 days",
		"doc.footer":          "Quote created with <3 with PrevenGo",
		"doc.meta.title":      "Quote",
		"doc.meta.subject":    "Quote",
	},
	"fr": {
		"required":            "Requis",
		"invalid_email":       "Email invalide",
		"must_be_positive":    "Doit être supérieur à zéro",
		"must_be_nonnegative": "Ne peut pas être négatif",
		"too_long":            "Trop long",
		"invalid_json":        "JSON invalide",
		"invalid_items":       "Articles invalides",
		"not_found":           "Introuvable",
		"forbidden":           "Accès refusé",
		"doc.title":           "DEVIS",
		"doc.number":          "N°",
		"doc.date":            "du",
		"doc.company":         "Nom de l'entreprise",
		"doc.vat":             "N° TVA :",
		"doc.phone":           "Tél :",
		"doc.email":           "Email :",
		"doc.recipient":       "À l'attention de",
		"doc.customer":        "Nom Prénom",
		"doc.subject":         "Objet :",
		"doc.items":           "Détail des prestations",
		"doc.col.pos":         "POS",
		"doc.col.desc":        "DÉSIGNATION",
		"doc.col.qty":         "QTÉ",
		"doc.col.unit":        "U.",
		"doc.col.price":       "PRIX UNIT.",
		"doc.col.total":       "TOTAL",
		"doc.item":            "Désignation",
		"doc.unit":            "u.",
		"doc.discount":        "Remise",
		"doc.subtotal":        "Total HT",
		"doc.tax":             "TVA",
		"doc.grand_total":     "TOTAL DEVIS",
		"doc.notes":           "Notes",
		"doc.validity":        "Devis valable 30 jours",
		"doc.footer":          "Devis créé avec <3 avec PrevenGo",
		"doc.meta.title":      "Devis",
		"doc.meta.subject":    "Devis",
	},
}

// DetectLanguage picks a supported language from an Accept-Language header.
func DetectLanguage(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return Default
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default
	}
	base, _ := supported[idx].Base()
	return base.String()
}

// Normalize maps any tag ("en-GB", "FR") onto a supported language code.
func Normalize(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	if _, ok := catalogs[lang]; ok {
		return lang
	}
	return Default
}

// T translates code. Unknown languages fall back to Default, unknown codes
// are returned unchanged.
func T(lang, code string) string {
	if msg, ok := catalogs[Normalize(lang)][code]; ok {
		return msg
	}
	if msg, ok := catalogs[Default][code]; ok {
		return msg
	}
	return code
}
