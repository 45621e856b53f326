package locale

import "testing"

func TestMatcherMatch(t *testing.T) {
	m := NewMatcher([]string{"en", "zh", "es", "fr"}, "en")

	cases := map[string]string{
		"":                            "en",
		"zh-CN,zh;q=0.9,en;q=0.8":     "zh",
		"fr-CA":                       "fr",
		"es-ES;q=0.9, en;q=0.5":       "es",
		"de-DE":                       "en",
		"this is not a language list": "en",
	}
	for header, want := range cases {
		if got := m.Match(header); got != want {
			t.Errorf("Match(%q) = %q, want %q", header, got, want)
		}
	}
}

func TestMatcherDefaultAlwaysSupported(t *testing.T) {
	m := NewMatcher([]string{"zh", "fr"}, "en")
	if !m.IsSupported("en") {
		t.Fatal("default locale should be supported")
	}
	if got := m.Supported(); got[0] != "en" || len(got) != 3 {
		t.Fatalf("Supported() = %v", got)
	}
	if m.IsSupported("de") {
		t.Fatal("de is not configured")
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"zh-CN": "zh",
		"EN_us": "en",
		" fr ":  "fr",
		"":      "",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("fr"); got != "français" {
		t.Errorf("DisplayName(fr) = %q", got)
	}
	if got := DisplayName("!!"); got != "!!" {
		t.Errorf("invalid code should be returned as is, got %q", got)
	}
}
