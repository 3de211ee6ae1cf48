package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized messages for Issue codes, which are JSON
// Schema keyword names. data provides optional parameters to embed in the
// message (for example "missingProperty" or "limit").
type Translator interface {
	Message(code string, data map[string]string) string
}

// Placeholders are written as {name} and filled from data; unknown
// placeholders are left as is.
var dictionaries = map[string]map[string]string{
	"en": {
		"required":          "{missingProperty} is required",
		"type":              "invalid type",
		"enum":              "must be one of the allowed values",
		"const":             "must equal the fixed value",
		"minLength":         "too short",
		"maxLength":         "too long",
		"pattern":           "does not match the expected pattern",
		"format":            "invalid format",
		"minimum":           "too small",
		"maximum":           "too large",
		"exclusiveMinimum":  "too small",
		"exclusiveMaximum":  "too large",
		"multipleOf":        "not a valid multiple",
		"minItems":          "too few items",
		"maxItems":          "too many items",
		"uniqueItems":       "items must be unique",
		"minProperties":     "too few properties",
		"maxProperties":     "too many properties",
		"dependentRequired": "a dependent property is missing",
		"oneOf":             "must match exactly one option",
		"anyOf":             "must match at least one option",
		"not":               "matches a disallowed schema",
		"false":             "no value is allowed here",
		"schema_invalid":    "the schema is invalid",
	},
	"ja": {
		"required":          "{missingProperty} は必須です",
		"type":              "型が不正です",
		"enum":              "許可された値のいずれかである必要があります",
		"const":             "固定値と一致する必要があります",
		"minLength":         "短すぎます",
		"maxLength":         "長すぎます",
		"pattern":           "形式が一致しません",
		"format":            "フォーマットが不正です",
		"minimum":           "小さすぎます",
		"maximum":           "大きすぎます",
		"exclusiveMinimum":  "小さすぎます",
		"exclusiveMaximum":  "大きすぎます",
		"multipleOf":        "倍数ではありません",
		"minItems":          "要素が少なすぎます",
		"maxItems":          "要素が多すぎます",
		"uniqueItems":       "要素が重複しています",
		"minProperties":     "プロパティが少なすぎます",
		"maxProperties":     "プロパティが多すぎます",
		"dependentRequired": "依存するプロパティが不足しています",
		"oneOf":             "いずれか一つの選択肢に一致する必要があります",
		"anyOf":             "少なくとも一つの選択肢に一致する必要があります",
		"not":               "許可されないスキーマに一致しています",
		"false":             "ここには値を指定できません",
		"schema_invalid":    "スキーマが不正です",
	},
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dictionaries[t.lang][code]
	if !ok {
		return code
	}
	if len(data) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if _, ok := dictionaries[lang]; !ok {
		lang = "en"
	}
	SetTranslator(dictTranslator{lang: lang})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version). nil restores the English dictionary.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
