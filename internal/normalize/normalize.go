// Package normalize canonicalizes raw extracted values into comparable
// forms. Every transform is a deterministic pure function of (locale, raw);
// malformed input is returned unchanged with a failed flag, never an error,
// so the consistency checker can treat it as weak evidence.
package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/claimpilot/claimpilot/internal/model"
)

// Kind classifies how a canonical field is normalized
type Kind int

const (
	KindText Kind = iota
	KindDate
	KindCurrency
	KindIdentifier
	KindName
)

var fieldKinds = map[string]Kind{
	"policy_start_date":     KindDate,
	"policy_expiry_date":    KindDate,
	"accident_date":         KindDate,
	"claim_submission_date": KindDate,
	"date_of_birth":         KindDate,
	"expiry_date":           KindDate,

	"estimate_amount": KindCurrency,

	"policy_number":        KindIdentifier,
	"claim_number":         KindIdentifier,
	"vehicle_registration": KindIdentifier,
	"chassis_number":       KindIdentifier,
	"engine_number":        KindIdentifier,
	"license_number":       KindIdentifier,
	"aadhaar_number":       KindIdentifier,
	"pan_number":           KindIdentifier,

	"insured_name":  KindName,
	"holder_name":   KindName,
	"workshop_name": KindName,
}

// KindOf returns the normalization kind for a canonical field name.
// Unknown fields are treated as free text.
func KindOf(field string) Kind {
	if k, ok := fieldKinds[field]; ok {
		return k
	}
	return KindText
}

// Normalizer applies locale-aware canonicalization.
type Normalizer struct {
	locale      model.LocaleConfig
	dateLayouts []string
}

// New creates a normalizer for the given locale.
func New(locale model.LocaleConfig) *Normalizer {
	return &Normalizer{
		locale:      locale,
		dateLayouts: dateLayouts(locale.DayFirst),
	}
}

// Normalize canonicalizes raw for the given field. The second return value
// is true when normalization failed and raw was returned unchanged.
func (n *Normalizer) Normalize(field, raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return raw, true
	}

	switch KindOf(field) {
	case KindDate:
		return n.normalizeDate(raw, trimmed)
	case KindCurrency:
		return n.normalizeCurrency(raw, trimmed)
	case KindIdentifier:
		return normalizeIdentifier(raw, trimmed)
	case KindName, KindText:
		return normalizeText(trimmed), false
	default:
		return normalizeText(trimmed), false
	}
}

// ParseISODate parses a value already normalized by KindDate.
func ParseISODate(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", s)
	return t, err == nil
}

func (n *Normalizer) normalizeDate(raw, trimmed string) (string, bool) {
	for _, layout := range n.dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format("2006-01-02"), false
		}
	}
	return raw, true
}

// dateLayouts builds the layout table. ISO forms always win; the ambiguous
// numeric forms are ordered by the locale's day/month convention.
func dateLayouts(dayFirst bool) []string {
	layouts := []string{
		"2006-01-02",
		"2006/01/02",
	}
	if dayFirst {
		layouts = append(layouts,
			"02-01-2006", "02/01/2006", "02.01.2006",
			"02-01-06", "02/01/06",
		)
	} else {
		layouts = append(layouts,
			"01-02-2006", "01/02/2006", "01.02.2006",
			"01-02-06", "01/02/06",
		)
	}
	return append(layouts,
		"2 January 2006",
		"02 Jan 2006",
		"Jan 2, 2006",
	)
}

func (n *Normalizer) normalizeCurrency(raw, trimmed string) (string, bool) {
	code := n.locale.Currency
	s := trimmed

	// Explicit symbols or codes override the locale default. Ordered
	// longest-first so "Rs." never leaves a stray dot behind.
	for _, tok := range currencyTokens {
		if strings.Contains(s, tok.token) {
			code = tok.code
			s = strings.ReplaceAll(s, tok.token, "")
			break
		}
	}
	s = strings.TrimSpace(s)
	if n.locale.ThousandsSep != "" {
		s = strings.ReplaceAll(s, n.locale.ThousandsSep, "")
	}
	if n.locale.DecimalSep != "" && n.locale.DecimalSep != "." {
		s = strings.ReplaceAll(s, n.locale.DecimalSep, ".")
	}
	s = strings.ReplaceAll(s, " ", "")

	amount, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return raw, true
	}
	minor := int64(math.Round(amount * 100))
	return fmt.Sprintf("%s:%d", code, minor), false
}

// currencyTokens maps symbols and codes to ISO 4217, longest tokens first.
var currencyTokens = []struct {
	token string
	code  string
}{
	{"INR", "INR"},
	{"Rs.", "INR"},
	{"Rs", "INR"},
	{"₹", "INR"},
	{"USD", "USD"},
	{"$", "USD"},
	{"EUR", "EUR"},
	{"€", "EUR"},
}

func normalizeIdentifier(raw, trimmed string) (string, bool) {
	var b strings.Builder
	for _, r := range trimmed {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	if b.Len() == 0 {
		return raw, true
	}
	return b.String(), false
}

// normalizeText case-folds and collapses whitespace. Accents are kept on
// purpose: accent differences surface as minor discrepancies instead of
// being silently erased.
func normalizeText(trimmed string) string {
	return strings.ToLower(strings.Join(strings.Fields(trimmed), " "))
}
