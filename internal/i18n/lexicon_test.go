package i18n

import "testing"

func TestTFallsBackToUkrainian(t *testing.T) {
	if got := T(Lang("de"), CartEmpty); got != T(LangUA, CartEmpty) {
		t.Fatalf("expected ua fallback, got %q", got)
	}
}

func TestTUnknownKeyReturnsKey(t *testing.T) {
	if got := T(LangEN, Key("no_such_key")); got != "no_such_key" {
		t.Fatalf("expected key echo, got %q", got)
	}
}

func TestAllKeysPresentInBothLanguages(t *testing.T) {
	for key := range lexicon[LangUA] {
		if _, ok := lexicon[LangEN][key]; !ok {
			t.Fatalf("key %q missing from en table", key)
		}
	}
	for key := range lexicon[LangEN] {
		if _, ok := lexicon[LangUA][key]; !ok {
			t.Fatalf("key %q missing from ua table", key)
		}
	}
}

func TestNormalize(t *testing.T) {
	if Normalize("en") != LangEN {
		t.Fatal("en should normalize to en")
	}
	if Normalize("xx") != LangUA {
		t.Fatal("unknown language should fall back to ua")
	}
}

func TestCategoryTranslation(t *testing.T) {
	if got := Category(LangUA, "Laptops"); got != "Ноутбуки" {
		t.Fatalf("unexpected translation %q", got)
	}
	if got := Category(LangEN, "Custom"); got != "Custom" {
		t.Fatalf("untranslated category must pass through, got %q", got)
	}
}
