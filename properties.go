package artifactory

import (
	"sort"
	"strings"
)

// Properties are attached to a deployed artifact as matrix parameters on the
// deployment URL.  A key may carry several values.
type Properties map[string][]string

var propertyEscaper = strings.NewReplacer(
	`\`, `\\`,
	`;`, `\;`,
	`=`, `\=`,
	`,`, `\,`,
)

// Add appends value to the values of key
func (p Properties) Add(key, value string) {
	p[key] = append(p[key], value)
}

// String renders the properties as the suffix Artifactory expects after the
// artifact path: ";k1=v1;k2=v2a,v2b" with keys in sorted order.  Empty
// properties render as "".
func (p Properties) String() string {
	if len(p) == 0 {
		return ""
	}

	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		values := make([]string, len(p[k]))
		for i, v := range p[k] {
			values[i] = propertyEscaper.Replace(v)
		}
		sb.WriteString(";")
		sb.WriteString(propertyEscaper.Replace(k))
		sb.WriteString("=")
		sb.WriteString(strings.Join(values, ","))
	}
	return sb.String()
}

// ParseProperty splits a "key=value" string.  The key must be non-empty; the
// value may be empty.
func ParseProperty(s string) (string, string, error) {
	i := strings.Index(s, "=")
	if i <= 0 {
		return "", "", newErrorf(ErrBadProperty, "parsing property %q", s)
	}
	return s[:i], s[i+1:], nil
}
