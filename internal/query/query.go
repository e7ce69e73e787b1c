// Package query implements the Query Engine of spec.md §4.9:
// substituting {name} placeholders in a user-supplied template against
// a flat snapshot map.
package query

import (
	"strings"

	"github.com/dizictl/dizi/internal/apperr"
)

// Render substitutes every {name} placeholder in template with
// snapshot[name], failing with InvalidParameters on the first unknown
// placeholder.
func Render(template string, snapshot map[string]string) (string, error) {
	var b strings.Builder
	i := 0
	for i < len(template) {
		open := strings.IndexByte(template[i:], '{')
		if open == -1 {
			b.WriteString(template[i:])
			break
		}
		b.WriteString(template[i : i+open])
		start := i + open + 1
		close := strings.IndexByte(template[start:], '}')
		if close == -1 {
			return "", apperr.New(apperr.ParseError, "unterminated placeholder in query template")
		}
		name := template[start : start+close]
		v, ok := snapshot[name]
		if !ok {
			return "", apperr.New(apperr.InvalidParameters, "unknown query placeholder: "+name)
		}
		b.WriteString(v)
		i = start + close + 1
	}
	return b.String(), nil
}
