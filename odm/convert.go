package odm

import (
	"strings"

	"golang.org/x/text/cases"
)

// Converter normalizes a unique field value before it is looked up.
type Converter func(any) any

func builtinConverters() map[string]Converter {
	return map[string]Converter{
		"lower": stringConverter(strings.ToLower),
		"upper": stringConverter(strings.ToUpper),
		"trim":  stringConverter(strings.TrimSpace),
		"fold": func(v any) any {
			s, ok := v.(string)
			if !ok {
				return v
			}
			return cases.Fold().String(s)
		},
	}
}

// stringConverter applies fn to string values and passes others through.
func stringConverter(fn func(string) string) Converter {
	return func(v any) any {
		if s, ok := v.(string); ok {
			return fn(s)
		}
		return v
	}
}
