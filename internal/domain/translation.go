package domain

// Translator resolves message keys for one locale. Placeholders {0}, {1}, ...
// in the message are substituted with args in order.
type Translator interface {
	T(key string, args ...string) string
}

// TranslateFunc returns a translator for the given locale and namespace.
// Implementations must be pure functions of their inputs.
type TranslateFunc func(locale, namespace string) (Translator, error)
