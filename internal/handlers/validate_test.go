package handlers

import (
	"strings"
	"testing"
)

func TestValidateTemplateName(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantError bool
	}{
		{"valid", "Blue Gradient", false},
		{"empty", "", true},
		{"whitespace", "   ", true},
		{"too long", strings.Repeat("a", 201), true},
		{"max length", strings.Repeat("ş", 200), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateTemplateName(tt.input)
			if tt.wantError && result == "" {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && result != "" {
				t.Errorf("unexpected error: %s", result)
			}
		})
	}
}

func TestValidateDesignBody(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantError bool
	}{
		{"valid", `{"selectedTemplate":"custom","elements":[{"id":"el-1","type":"text","variable":"{{company_name}}","x":10,"y":10,"fontSize":30}]}`, false},
		{"empty elements pass schema", `{"elements":[]}`, false},
		{"extra display field allowed", `{"elements":[{"type":"text","variable":"{{fair_name}}","display":"IFA"}]}`, false},
		{"not json", `{elements`, true},
		{"missing elements", `{"selectedTemplate":"x"}`, true},
		{"elements not array", `{"elements":{}}`, true},
		{"unknown type", `{"elements":[{"type":"video","variable":"{{fair_name}}"}]}`, true},
		{"missing variable", `{"elements":[{"type":"text"}]}`, true},
		{"fractional font size", `{"elements":[{"type":"text","variable":"a","fontSize":12.5}]}`, true},
		{"string coordinate", `{"elements":[{"type":"text","variable":"a","x":"10"}]}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateDesignBody([]byte(tt.body))
			if tt.wantError && result == "" {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && result != "" {
				t.Errorf("unexpected error: %s", result)
			}
		})
	}
}
