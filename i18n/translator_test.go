package i18n

import "testing"

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := T("type", nil); msg != "invalid type" {
		t.Fatalf("expected a human message, got %q", msg)
	}
	if msg := T("required", map[string]string{"missingProperty": "name"}); msg != "name is required" {
		t.Fatalf("placeholder not filled: %q", msg)
	}

	SetLanguage("ja")
	if msg := T("type", nil); msg != "型が不正です" {
		t.Fatalf("expected japanese message, got %q", msg)
	}
	if msg := T("required", map[string]string{"missingProperty": "name"}); msg != "name は必須です" {
		t.Fatalf("placeholder not filled: %q", msg)
	}

	// unsupported languages fall back to en
	SetLanguage("xx")
	if msg := T("minLength", nil); msg != "too short" {
		t.Fatalf("expected english fallback, got %q", msg)
	}
	SetLanguage("en")
}

type upper struct{}

func (upper) Message(code string, _ map[string]string) string { return "X:" + code }

func TestTranslator_UnknownAndCustom(t *testing.T) {
	if msg := T("someKeyword", nil); msg != "someKeyword" {
		t.Fatalf("unknown codes return the code, got %q", msg)
	}
	SetTranslator(upper{})
	if msg := T("type", nil); msg != "X:type" {
		t.Fatalf("custom translator not used: %q", msg)
	}
	SetTranslator(nil)
	if msg := T("type", nil); msg != "invalid type" {
		t.Fatalf("nil must restore the default: %q", msg)
	}
}
