package imageio

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/routemap"
)

// asciiFold strips combining marks. Letters without a decomposition, like
// Ø, are handled by foldSpecial. Chains are stateful, so each call gets
// its own.
func asciiFold() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

var foldSpecial = strings.NewReplacer(
	"Ø", "O", "ø", "o",
	"Æ", "AE", "æ", "ae",
	"Å", "A", "å", "a",
	"Ł", "L", "ł", "l",
	"Đ", "D", "đ", "d",
	"ß", "ss",
)

// SafeName folds name to ASCII and replaces every character that is not a
// letter, digit, '-' or '.' with '_'. An empty result becomes "map".
func SafeName(name string) string {
	folded, _, err := transform.String(asciiFold(), name)
	if err != nil {
		folded = name
	}
	folded = foldSpecial.Replace(folded)

	var b strings.Builder
	for _, r := range folded {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_.")
	if out == "" {
		return "map"
	}
	return out
}

// FileName builds the output name of a rendered map: the safe map name
// followed by the latitude and longitude of the top-left, top-right,
// bottom-right and bottom-left corners, each terminated by '_'.
func FileName(mapName string, q routemap.Quadrilateral, format Format) string {
	var b strings.Builder
	b.WriteString(SafeName(mapName))
	b.WriteByte('_')
	for _, c := range q.Corners() {
		b.WriteString(strconv.FormatFloat(c.Lat, 'f', -1, 64))
		b.WriteByte('_')
		b.WriteString(strconv.FormatFloat(c.Lon, 'f', -1, 64))
		b.WriteByte('_')
	}
	b.WriteByte('.')
	b.WriteString(format.Ext())
	return b.String()
}
