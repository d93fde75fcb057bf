// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug turns proposal numbers and company names into ASCII tokens
// safe for download filenames.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// separators become a single hyphen.
	separators = regexp.MustCompile(`[\s_/\\.]+`)
	// nonSlug matches anything left that isn't a lowercase letter, digit or hyphen.
	nonSlug = regexp.MustCompile(`[^a-z0-9-]`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Letters that do not decompose into an ASCII base plus a mark.
var folds = strings.NewReplacer("ı", "i", "ß", "ss", "æ", "ae", "ø", "o", "đ", "d", "ł", "l")

// Generate creates a lowercase ASCII slug. Diacritics are folded
// ("İstanbul Fuarı" → "istanbul-fuari") and other symbols dropped.
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = folds.Replace(result)

	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(stripMarks, result); err == nil {
		result = folded
	}

	result = separators.ReplaceAllString(result, "-")
	result = nonSlug.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// Filename builds "<prefix>-<slug>.<ext>", or "<prefix>.<ext>" when the
// name slugs to nothing.
func Filename(prefix, name, ext string) string {
	if s := Generate(name); s != "" {
		return prefix + "-" + s + "." + ext
	}
	return prefix + "." + ext
}
