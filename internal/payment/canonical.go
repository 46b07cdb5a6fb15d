package payment

import (
	"strconv"
	"strings"
)

// Encoder serializes named values into the string a gateway signs. Field
// order always comes from the encoder, never from the map.
type Encoder interface {
	Encode(values map[string]string) string
}

// LengthPrefixed writes <byte length><value> for every non-empty field and the
// placeholder for missing ones, with no delimiter in between.
type LengthPrefixed struct {
	Fields      []string
	Placeholder string
}

func (e LengthPrefixed) Encode(values map[string]string) string {
	placeholder := e.Placeholder
	if placeholder == "" {
		placeholder = "-"
	}

	var b strings.Builder
	for _, name := range e.Fields {
		v := values[name]
		if v == "" {
			b.WriteString(placeholder)
			continue
		}
		b.WriteString(strconv.Itoa(len(v)))
		b.WriteString(v)
	}
	return b.String()
}

// DelimiterJoined joins raw values; a missing field keeps its slot empty.
type DelimiterJoined struct {
	Fields    []string
	Delimiter string
}

func (e DelimiterJoined) Encode(values map[string]string) string {
	parts := make([]string, len(e.Fields))
	for i, name := range e.Fields {
		parts[i] = values[name]
	}
	return strings.Join(parts, e.Delimiter)
}
