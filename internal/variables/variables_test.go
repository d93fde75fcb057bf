// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package variables

import (
	"testing"
	"time"

	"standpress/internal/models"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func fullRecord() Record {
	return Record{
		ProposalNumber:  "TKL-2026-014",
		CompanyName:     "Acme Makina",
		CompanyLogoURL:  "https://cdn.example.com/acme.png",
		FairName:        "WIN Eurasia",
		FairCountry:     "Türkiye",
		FairCity:        "İstanbul",
		FairVenue:       "Tüyap",
		FairStartDate:   date(2026, time.March, 4),
		FairEndDate:     date(2026, time.March, 7),
		PreparedByName:  "Ayşe Yılmaz",
		PreparedByTitle: "Satış Müdürü",
		PreparedDate:    date(2026, time.January, 15),
	}
}

func TestSubstituteWithValues(t *testing.T) {
	rec := fullRecord()
	tests := []struct {
		token string
		want  string
	}{
		{"{{company_name}}", "Acme Makina"},
		{"{{company_logo}}", "https://cdn.example.com/acme.png"},
		{"{{fair_name}}", "WIN Eurasia"},
		{"{{fair_country}}", "Türkiye"},
		{"{{fair_city}}", "İstanbul"},
		{"{{fair_venue}}", "Tüyap"},
		{"{{fair_start_date}}", "4 Mart 2026"},
		{"{{fair_end_date}}", "7 Mart 2026"},
		{"{{prepared_by_name}}", "Ayşe Yılmaz"},
		{"{{prepared_by_title}}", "Satış Müdürü"},
		{"{{prepared_date}}", "15 Ocak 2026"},
		{"{{proposal_number}}", "TKL-2026-014"},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			if got := Substitute(tt.token, rec); got != tt.want {
				t.Errorf("Substitute(%q) = %q, want %q", tt.token, got, tt.want)
			}
		})
	}
}

func TestSubstituteFallbacks(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"{{company_name}}", "[Firma Adı]"},
		{"{{company_logo}}", "[Logo]"},
		{"{{fair_name}}", "[Fuar Adı]"},
		{"{{fair_country}}", "[Ülke]"},
		{"{{fair_city}}", "[Şehir]"},
		{"{{fair_venue}}", "[Fuar Alanı]"},
		{"{{fair_start_date}}", "[Başlangıç Tarihi]"},
		{"{{fair_end_date}}", "[Bitiş Tarihi]"},
		{"{{prepared_by_name}}", "[Hazırlayan]"},
		{"{{prepared_by_title}}", "[Ünvan]"},
		{"{{prepared_date}}", "[Tarih]"},
		{"{{proposal_number}}", "[Teklif No]"},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			if got := Substitute(tt.token, Record{}); got != tt.want {
				t.Errorf("Substitute(%q) = %q, want %q", tt.token, got, tt.want)
			}
		})
	}
}

func TestSubstituteBlankValueUsesFallback(t *testing.T) {
	rec := Record{CompanyName: "   "}
	if got := Substitute("{{company_name}}", rec); got != "[Firma Adı]" {
		t.Errorf("got %q, want fallback", got)
	}
}

func TestSubstituteUnknownTokenPassesThrough(t *testing.T) {
	for _, token := range []string{"{{unknown}}", "plain text", ""} {
		if got := Substitute(token, fullRecord()); got != token {
			t.Errorf("Substitute(%q) = %q, want unchanged", token, got)
		}
	}
}

func TestSubstituteEnglishDates(t *testing.T) {
	rec := fullRecord()
	if got := SubstituteLocale("{{fair_start_date}}", rec, English); got != "March 4, 2026" {
		t.Errorf("got %q, want March 4, 2026", got)
	}
	if got := SubstituteLocale("{{fair_start_date}}", Record{}, English); got != "[Başlangıç Tarihi]" {
		t.Errorf("missing date got %q", got)
	}
}

func TestFormatDateTurkishMonths(t *testing.T) {
	tests := []struct {
		month time.Month
		want  string
	}{
		{time.February, "1 Şubat 2026"},
		{time.May, "1 Mayıs 2026"},
		{time.August, "1 Ağustos 2026"},
		{time.September, "1 Eylül 2026"},
		{time.November, "1 Kasım 2026"},
		{time.December, "1 Aralık 2026"},
	}
	for _, tt := range tests {
		if got := FormatDate(date(2026, tt.month, 1), Turkish); got != tt.want {
			t.Errorf("FormatDate(%s) = %q, want %q", tt.month, got, tt.want)
		}
	}
	if got := FormatDate(nil, Turkish); got != "" {
		t.Errorf("FormatDate(nil) = %q, want empty", got)
	}
}

func TestNegotiate(t *testing.T) {
	tests := []struct {
		header string
		want   Locale
	}{
		{"", Turkish},
		{"en-US,en;q=0.9", English},
		{"tr-TR,tr;q=0.9,en;q=0.8", Turkish},
		{"en-GB", English},
		{"not a header;;", Turkish},
	}
	for _, tt := range tests {
		if got := Negotiate(tt.header, Turkish); got != tt.want {
			t.Errorf("Negotiate(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestParseLocale(t *testing.T) {
	if loc, ok := ParseLocale("en-US"); !ok || loc != English {
		t.Errorf("ParseLocale(en-US) = %q, %v", loc, ok)
	}
	if loc, ok := ParseLocale("tr"); !ok || loc != Turkish {
		t.Errorf("ParseLocale(tr) = %q, %v", loc, ok)
	}
	if _, ok := ParseLocale("!!"); ok {
		t.Error("ParseLocale accepted garbage")
	}
}

func TestVariablesCatalogue(t *testing.T) {
	vars := Variables()
	if len(vars) != 12 {
		t.Fatalf("catalogue size = %d, want 12", len(vars))
	}
	seen := map[string]bool{}
	for _, v := range vars {
		if seen[v.Token] {
			t.Errorf("duplicate token %q", v.Token)
		}
		seen[v.Token] = true
		if v.Fallback == "" || v.Label == "" {
			t.Errorf("token %q missing label or fallback", v.Token)
		}
		if !Known(v.Token) {
			t.Errorf("Known(%q) = false", v.Token)
		}
	}
	if v, ok := Lookup("{{company_logo}}"); !ok || v.Kind != KindImage {
		t.Errorf("company_logo kind = %q, want image", v.Kind)
	}
}

func TestRenderElementsDoesNotMutate(t *testing.T) {
	els := []models.Element{
		{ID: "el-1", Variable: "{{company_name}}"},
		{ID: "el-2", Variable: "{{fair_city}}"},
	}
	out := RenderElements(els, fullRecord(), Turkish)
	if out[0].Display != "Acme Makina" || out[1].Display != "İstanbul" {
		t.Errorf("unexpected display values: %+v", out)
	}
	if els[0].Variable != "{{company_name}}" {
		t.Error("RenderElements modified the input elements")
	}

	m := DisplayMap(els, Record{}, Turkish)
	if m["el-2"] != "[Şehir]" {
		t.Errorf("DisplayMap[el-2] = %q", m["el-2"])
	}
}

func TestRecordFromProposal(t *testing.T) {
	if rec := RecordFromProposal(nil); rec != (Record{}) {
		t.Error("nil proposal should give empty record")
	}
	p := &models.Proposal{CompanyName: "Acme", FairStartDate: date(2026, time.June, 1)}
	rec := RecordFromProposal(p)
	if rec.CompanyName != "Acme" || rec.FairStartDate == nil {
		t.Errorf("record not copied: %+v", rec)
	}
}
