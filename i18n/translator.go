package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized messages for issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "key").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var messages = map[string]map[string]string{
	"en": {
		"invalid_type":       "invalid type",
		"invalid_value":      "invalid value",
		"invalid_enum":       "value is not one of the permitted values",
		"invalid_format":     "invalid format",
		"required":           "required property missing",
		"unknown_key":        "unknown key",
		"null_not_allowed":   "null is not allowed",
		"version_mismatch":   "property is not applicable to the target version",
		"duplicate_key":      "duplicate key",
		"parse_error":        "parse error",
		"truncated":          "truncated",
		"kind_mismatch":      "metadata kind does not match the model kind",
		"undefined_property": "no property is defined for key {key}",
	},
	"ja": {
		"invalid_type":       "型が不正です",
		"invalid_value":      "値が不正です",
		"invalid_enum":       "許可された値ではありません",
		"invalid_format":     "形式が不正です",
		"required":           "必須プロパティが不足しています",
		"unknown_key":        "未知のキーです",
		"null_not_allowed":   "null は許可されていません",
		"version_mismatch":   "対象バージョンでは使用できないプロパティです",
		"duplicate_key":      "キーが重複しています",
		"parse_error":        "解析エラー",
		"truncated":          "打ち切られました",
		"kind_mismatch":      "メタデータの種類がモデルの種類と一致しません",
		"undefined_property": "キー {key} に対応するプロパティが定義されていません",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := messages[t.lang][code]
	if !ok {
		return code
	}
	if len(data) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	for k, v := range data {
		msg = strings.ReplaceAll(msg, "{"+k+"}", v)
	}
	return msg
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	mu.Lock()
	defer mu.Unlock()
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
