// Package translation resolves message keys per participant locale from
// embedded catalogs. Translate is a pure function of its inputs and safe for
// concurrent use.
package translation

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/language"

	"teambooking/internal/domain"
)

//go:embed locales/*
var localesFS embed.FS

// supported lists the shipped catalogs; index-aligned with dirs.
var supported = []language.Tag{
	language.English,
	language.German,
	language.Spanish,
	language.French,
	language.BrazilianPortuguese,
}

var dirs = []string{"en", "de", "es", "fr", "pt-BR"}

var matcher = language.NewMatcher(supported)

var cache sync.Map // "dir/namespace" -> *translator

type translator struct {
	locale   string
	messages map[string]string
}

// T resolves key and substitutes {0}, {1}, ... with args in order. Unknown
// keys fall back to the key itself so a missing message never breaks a flow.
func (t *translator) T(key string, args ...string) string {
	msg, ok := t.messages[key]
	if !ok {
		msg = key
	}
	for i, arg := range args {
		msg = strings.ReplaceAll(msg, fmt.Sprintf("{%d}", i), arg)
	}
	return msg
}

// Translate returns a translator for the closest supported locale. It
// satisfies domain.TranslateFunc. Unparseable locales match English.
func Translate(locale, namespace string) (domain.Translator, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	_, idx, _ := matcher.Match(tag)
	dir := dirs[idx]

	cacheKey := dir + "/" + namespace
	if v, ok := cache.Load(cacheKey); ok {
		return v.(*translator), nil
	}

	raw, err := localesFS.ReadFile("locales/" + dir + "/" + namespace + ".json")
	if err != nil {
		return nil, fmt.Errorf("load catalog %s/%s: %w", dir, namespace, err)
	}
	messages := make(map[string]string)
	if err := json.Unmarshal(raw, &messages); err != nil {
		return nil, fmt.Errorf("parse catalog %s/%s: %w", dir, namespace, err)
	}

	t := &translator{locale: dir, messages: messages}
	cache.Store(cacheKey, t)
	return t, nil
}
