// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package variables

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// Locale selects date formatting for substituted values.
type Locale string

const (
	Turkish Locale = "tr"
	English Locale = "en"
)

// DefaultLocale is used when no locale is negotiated.
const DefaultLocale = Turkish

// supported is in matcher preference order; the index is used below.
var supported = []language.Tag{language.Turkish, language.English}

var matcher = language.NewMatcher(supported)

// ParseLocale maps a configured locale name to a supported Locale.
func ParseLocale(s string) (Locale, bool) {
	tag, err := language.Parse(s)
	if err != nil {
		return DefaultLocale, false
	}
	base, _ := tag.Base()
	switch base.String() {
	case "tr":
		return Turkish, true
	case "en":
		return English, true
	}
	return DefaultLocale, false
}

// Negotiate picks the best supported locale for an Accept-Language header.
func Negotiate(acceptLanguage string, fallback Locale) Locale {
	if acceptLanguage == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return fallback
	}
	if idx == 1 {
		return English
	}
	return Turkish
}

var turkishMonths = [...]string{
	"Ocak", "Şubat", "Mart", "Nisan", "Mayıs", "Haziran",
	"Temmuz", "Ağustos", "Eylül", "Ekim", "Kasım", "Aralık",
}

// FormatDate renders t in the long date format of loc. A nil time renders
// as the empty string.
func FormatDate(t *time.Time, loc Locale) string {
	if t == nil || t.IsZero() {
		return ""
	}
	switch loc {
	case English:
		return t.Format("January 2, 2006")
	default:
		return fmt.Sprintf("%d %s %d", t.Day(), turkishMonths[t.Month()-1], t.Year())
	}
}
