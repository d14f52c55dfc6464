package mapfile

import "strings"

// Marker is the escape marker reserved by the format. Within a single
// line it encodes itself, the logical newline, and the key/value
// separator.
const Marker = '§'

const (
	markerText    = string(Marker)
	escapedMarker = markerText + markerText
	escapedNL     = markerText + "n"
	escapedEq     = markerText + "-"
)

// escaper rewrites all reserved sequences in one pass. Pattern order
// matters: the marker itself first so existing markers survive
// re-escaping, then CRLF before LF so a Windows line ending becomes a
// single encoded newline.
var escaper = strings.NewReplacer(
	markerText, escapedMarker,
	"\r\n", escapedNL,
	"\n", escapedNL,
	"=", escapedEq,
)

// Escape makes text safe to place in a single line of the format. The
// text "[" alone is prefixed with the marker so it cannot be confused
// with a block opening; otherwise markers are doubled, line terminators
// become the encoded newline, and "=" becomes the encoded equals.
//
// Escape is injective and reversed exactly by Unescape for any text that
// does not contain a bare carriage return.
func Escape(text string) string {
	if text == "[" {
		return markerText + "["
	}
	return escaper.Replace(text)
}

// Unescape reverses Escape in a single left-to-right scan. After a
// marker, "n" restores a newline and "-" restores an equals sign; any
// other character is kept with the marker dropped, which collapses a
// doubled marker to one. A marker at the very end of the text has
// nothing to consume and is kept as-is. Expanded output is never
// re-scanned.
func Unescape(text string) string {
	if !strings.ContainsRune(text, Marker) {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if runes[i] != Marker {
			b.WriteRune(runes[i])
			continue
		}
		if i == len(runes)-1 {
			b.WriteRune(Marker)
			break
		}
		i++
		switch runes[i] {
		case 'n':
			b.WriteByte('\n')
		case '-':
			b.WriteByte('=')
		default:
			b.WriteRune(runes[i])
		}
	}
	return b.String()
}
