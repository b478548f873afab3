package normalization

import "testing"

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"":                "",
		"hero":            "hero",
		" Hero ":          "hero",
		"trustedClients":  "trusted-clients",
		"TRUSTED_CLIENTS": "trusted-clients",
		"external link":   "external-link",
		"external--link":  "external-link",
		"faq_":            "faq",
	}

	for input, expected := range cases {
		if actual := Slug(input); actual != expected {
			t.Fatalf("Slug(%q) expected %q got %q", input, expected, actual)
		}
	}
}

func TestCanonical_UsesAliases(t *testing.T) {
	aliases := map[string]string{
		"trusted-clients": "trusted-clients",
		"trustedclients":  "trusted-clients",
		"clients":         "trusted-clients",
	}

	if got := Canonical("TrustedClients", aliases); got != "trusted-clients" {
		t.Fatalf("expected trusted-clients, got %s", got)
	}
	if got := Canonical("trustedclients", aliases); got != "trusted-clients" {
		t.Fatalf("expected trusted-clients, got %s", got)
	}
	if got := Canonical("Clients", aliases); got != "trusted-clients" {
		t.Fatalf("expected alias resolution, got %s", got)
	}
	if got := Canonical("Unknown Thing", aliases); got != "unknown-thing" {
		t.Fatalf("expected slug fallback, got %s", got)
	}
}

func TestAsInt(t *testing.T) {
	t.Parallel()

	if v, ok := AsInt(float64(3)); !ok || v != 3 {
		t.Fatalf("expected 3, got %d (%v)", v, ok)
	}
	if v, ok := AsInt(" 7 "); !ok || v != 7 {
		t.Fatalf("expected 7 from string, got %d (%v)", v, ok)
	}
	if _, ok := AsInt("seven"); ok {
		t.Fatal("expected non numeric string to be rejected")
	}
	if _, ok := AsInt(nil); ok {
		t.Fatal("expected nil to be rejected")
	}
}

func TestAsBool(t *testing.T) {
	t.Parallel()

	if !AsBool("true", false) {
		t.Fatal("expected textual true")
	}
	if AsBool(false, true) {
		t.Fatal("expected literal false")
	}
	if !AsBool("maybe", true) {
		t.Fatal("expected fallback for unparsable input")
	}
}
