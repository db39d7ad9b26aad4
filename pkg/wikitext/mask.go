// Package wikitext neutralizes wikitext constructs that confuse structural
// scanning, keeping every byte offset valid against the original string.
package wikitext

import "strings"

const maskByte = ' '

// HideComments replaces every <!-- ... --> span in code with a same-length
// run of spaces. An unterminated <!-- hides everything to the end of the
// string. Output length always equals input length, so indexes found by
// scanning the masked string can slice the original.
func HideComments(code string) string {
	const (
		open  = "<!--"
		close = "-->"
	)

	var b strings.Builder
	b.Grow(len(code))

	pos := 0
	for {
		start := strings.Index(code[pos:], open)
		if start < 0 {
			b.WriteString(code[pos:])
			break
		}
		start += pos
		b.WriteString(code[pos:start])

		end := strings.Index(code[start+len(open):], close)
		if end < 0 {
			// unterminated comment, mask to EOF
			maskInto(&b, len(code)-start)
			break
		}
		end = start + len(open) + end + len(close)
		maskInto(&b, end-start)
		pos = end
	}
	return b.String()
}

// HideTemplates masks {{ ... }} spans, including nested ones, the same way
// HideComments does. Used before heading scans so a template argument
// containing "==" cannot fake a section boundary.
func HideTemplates(code string) string {
	out := []byte(code)
	depth := 0
	for i := 0; i < len(out); i++ {
		if i+1 < len(out) && out[i] == '{' && out[i+1] == '{' {
			depth++
			out[i] = maskByte
			out[i+1] = maskByte
			i++
			continue
		}
		if depth > 0 {
			if i+1 < len(out) && out[i] == '}' && out[i+1] == '}' {
				depth--
				out[i] = maskByte
				out[i+1] = maskByte
				i++
				continue
			}
			if out[i] != '\n' {
				out[i] = maskByte
			}
		}
	}
	return string(out)
}

func maskInto(b *strings.Builder, n int) {
	for i := 0; i < n; i++ {
		b.WriteByte(maskByte)
	}
}
