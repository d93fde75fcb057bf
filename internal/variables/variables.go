// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package variables resolves the symbolic placeholders on a cover design
// to values from the proposal being rendered.
package variables

import (
	"strings"
	"time"

	"standpress/internal/models"
)

// Kind tells the designer whether a variable renders as text or as an image.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindDate  Kind = "date"
)

// Record holds the proposal values placeholders are resolved against.
type Record struct {
	ProposalNumber  string
	CompanyName     string
	CompanyLogoURL  string
	FairName        string
	FairCountry     string
	FairCity        string
	FairVenue       string
	FairStartDate   *time.Time
	FairEndDate     *time.Time
	PreparedByName  string
	PreparedByTitle string
	PreparedDate    *time.Time
}

// RecordFromProposal copies the substitutable fields of p. A nil proposal
// yields an empty record, so every placeholder shows its fallback.
func RecordFromProposal(p *models.Proposal) Record {
	if p == nil {
		return Record{}
	}
	return Record{
		ProposalNumber:  p.ProposalNumber,
		CompanyName:     p.CompanyName,
		CompanyLogoURL:  p.CompanyLogoURL,
		FairName:        p.FairName,
		FairCountry:     p.FairCountry,
		FairCity:        p.FairCity,
		FairVenue:       p.FairVenue,
		FairStartDate:   p.FairStartDate,
		FairEndDate:     p.FairEndDate,
		PreparedByName:  p.PreparedByName,
		PreparedByTitle: p.PreparedByTitle,
		PreparedDate:    p.PreparedDate,
	}
}

// Variable is one entry of the placeholder catalogue.
type Variable struct {
	Token    string `json:"token"`
	Label    string `json:"label"`
	Kind     Kind   `json:"kind"`
	Fallback string `json:"fallback"`

	text func(Record) string
	date func(Record) *time.Time
}

func (v Variable) resolve(rec Record, loc Locale) string {
	if v.date != nil {
		return FormatDate(v.date(rec), loc)
	}
	return strings.TrimSpace(v.text(rec))
}

var catalogue = []Variable{
	{Token: "{{company_name}}", Label: "Firma Adı", Kind: KindText, Fallback: "[Firma Adı]",
		text: func(r Record) string { return r.CompanyName }},
	{Token: "{{company_logo}}", Label: "Firma Logosu", Kind: KindImage, Fallback: "[Logo]",
		text: func(r Record) string { return r.CompanyLogoURL }},
	{Token: "{{fair_name}}", Label: "Fuar Adı", Kind: KindText, Fallback: "[Fuar Adı]",
		text: func(r Record) string { return r.FairName }},
	{Token: "{{fair_country}}", Label: "Ülke", Kind: KindText, Fallback: "[Ülke]",
		text: func(r Record) string { return r.FairCountry }},
	{Token: "{{fair_city}}", Label: "Şehir", Kind: KindText, Fallback: "[Şehir]",
		text: func(r Record) string { return r.FairCity }},
	{Token: "{{fair_venue}}", Label: "Fuar Alanı", Kind: KindText, Fallback: "[Fuar Alanı]",
		text: func(r Record) string { return r.FairVenue }},
	{Token: "{{fair_start_date}}", Label: "Başlangıç Tarihi", Kind: KindDate, Fallback: "[Başlangıç Tarihi]",
		date: func(r Record) *time.Time { return r.FairStartDate }},
	{Token: "{{fair_end_date}}", Label: "Bitiş Tarihi", Kind: KindDate, Fallback: "[Bitiş Tarihi]",
		date: func(r Record) *time.Time { return r.FairEndDate }},
	{Token: "{{prepared_by_name}}", Label: "Hazırlayan", Kind: KindText, Fallback: "[Hazırlayan]",
		text: func(r Record) string { return r.PreparedByName }},
	{Token: "{{prepared_by_title}}", Label: "Ünvan", Kind: KindText, Fallback: "[Ünvan]",
		text: func(r Record) string { return r.PreparedByTitle }},
	{Token: "{{prepared_date}}", Label: "Tarih", Kind: KindDate, Fallback: "[Tarih]",
		date: func(r Record) *time.Time { return r.PreparedDate }},
	{Token: "{{proposal_number}}", Label: "Teklif No", Kind: KindText, Fallback: "[Teklif No]",
		text: func(r Record) string { return r.ProposalNumber }},
}

var byToken = func() map[string]Variable {
	m := make(map[string]Variable, len(catalogue))
	for _, v := range catalogue {
		m[v.Token] = v
	}
	return m
}()

// Variables returns the placeholder catalogue in palette order.
func Variables() []Variable {
	out := make([]Variable, len(catalogue))
	copy(out, catalogue)
	return out
}

// Lookup returns the catalogue entry for token.
func Lookup(token string) (Variable, bool) {
	v, ok := byToken[token]
	return v, ok
}

// Known reports whether token belongs to the catalogue.
func Known(token string) bool {
	_, ok := byToken[token]
	return ok
}

// Substitute resolves token against rec using the default locale.
func Substitute(token string, rec Record) string {
	return SubstituteLocale(token, rec, DefaultLocale)
}

// SubstituteLocale resolves token against rec. Unknown tokens are returned
// unchanged and blank values are replaced by the token's fallback label.
func SubstituteLocale(token string, rec Record, loc Locale) string {
	v, ok := byToken[token]
	if !ok {
		return token
	}
	if s := v.resolve(rec, loc); s != "" {
		return s
	}
	return v.Fallback
}

// Rendered pairs an element with its display value.
type Rendered struct {
	models.Element
	Display string `json:"display"`
}

// RenderElements resolves the display value of every element. The elements
// themselves are not modified.
func RenderElements(elements []models.Element, rec Record, loc Locale) []Rendered {
	out := make([]Rendered, len(elements))
	for i, el := range elements {
		out[i] = Rendered{Element: el, Display: SubstituteLocale(el.Variable, rec, loc)}
	}
	return out
}

// DisplayMap returns element id to display value, the form sent alongside
// editor state.
func DisplayMap(elements []models.Element, rec Record, loc Locale) map[string]string {
	m := make(map[string]string, len(elements))
	for _, el := range elements {
		m[el.ID] = SubstituteLocale(el.Variable, rec, loc)
	}
	return m
}
