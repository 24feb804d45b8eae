package assets

import "strings"

const upperhex = "0123456789ABCDEF"

// Slug percent-encodes a filename so it can be used as a single URL path
// segment. Only the unreserved set (ALPHA / DIGIT / "-" / "." / "_" / "~") is
// left as is; everything else, including "/", spaces, "%" and every byte of a
// multibyte UTF-8 sequence, is written as %XX with uppercase hex.
//
// Slug does not guarantee that two distinct names map to distinct slugs when
// one of them already contains escape sequences.
func Slug(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '_', c == '.', c == '~':
		return true
	}
	return false
}
