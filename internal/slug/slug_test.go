package slug

import "testing"

func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"proposal number", "TK-2026-001", "tk-2026-001"},
		{"spaces", "Acme Stand Builders", "acme-stand-builders"},
		{"turkish letters", "İstanbul Fuarı Çağrı Şöğüş", "istanbul-fuari-cagri-sogus"},
		{"german", "Über die Brücke", "uber-die-brucke"},
		{"sharp s", "Straße", "strasse"},
		{"french", "Café Résumé à la carte", "cafe-resume-a-la-carte"},
		{"punctuation dropped", "Acme, Inc. (EU) & Co!", "acme-inc-eu-co"},
		{"slashes and dots separate", "2026/03 v2.1", "2026-03-v2-1"},
		{"tabs and newlines", "hello\tworld\nagain", "hello-world-again"},
		{"underscores", "cover_page_design", "cover-page-design"},
		{"leading and trailing hyphens", "--hello--world--", "hello-world"},
		{"only symbols", "!@#$%^&*()", ""},
		{"empty", "", ""},
		{"whitespace", "   ", ""},
		{"already a slug", "tk-2026-001", "tk-2026-001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Generate(tt.input); got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestGenerate_Idempotent verifies that a slug maps to itself.
func TestGenerate_Idempotent(t *testing.T) {
	for _, in := range []string{"Acme Stand", "İstanbul Fuarı", "TK/2026.001"} {
		once := Generate(in)
		if twice := Generate(once); twice != once {
			t.Errorf("Generate(Generate(%q)) = %q, want %q", in, twice, once)
		}
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		name, want string
	}{
		{"TK-2026-001", "cover-tk-2026-001.pdf"},
		{"Fuar Öncesi", "cover-fuar-oncesi.pdf"},
		{"", "cover.pdf"},
		{"???", "cover.pdf"},
	}
	for _, tt := range tests {
		if got := Filename("cover", tt.name, "pdf"); got != tt.want {
			t.Errorf("Filename(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
