package rotator

import "strings"

const placeholder = "{url}"

// BuildURL embeds target into a proxy template. The first matching rule wins:
//   - a "{url}" placeholder is replaced by the encoded target
//   - a template containing "?url=" or "?quest=", or ending in "?", gets the
//     encoded target appended
//   - anything else gets the raw target appended
func BuildURL(template, target string) string {
	if strings.Contains(template, placeholder) {
		return strings.Replace(template, placeholder, EncodeComponent(target), 1)
	}
	if strings.Contains(template, "?url=") || strings.Contains(template, "?quest=") || strings.HasSuffix(template, "?") {
		return template + EncodeComponent(target)
	}
	return template + target
}

const upperhex = "0123456789ABCDEF"

// EncodeComponent percent-encodes every byte of s except the unreserved set
// A-Z a-z 0-9 - _ . ! ~ * ' ( ). Unlike url.QueryEscape it never turns a
// space into '+'.
func EncodeComponent(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if !unreserved(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
