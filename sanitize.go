package imgnamer

import (
	"strings"
	"unicode"
)

// forbiddenChars are removed from suggested filenames.
var forbiddenChars = strings.NewReplacer(
	`\`, "", "/", "", ":", "", "*", "", "?", "",
	`"`, "", "<", "", ">", "", "|", "",
)

// StripForbidden removes characters that are illegal in filenames on common
// filesystems: \ / : * ? " < > |
func StripForbidden(name string) string {
	return forbiddenChars.Replace(name)
}

// Prettify strips forbidden characters and title-cases the result.
func Prettify(name string) string {
	return titleCase(StripForbidden(name))
}

// titleCase upper-cases the first letter of every run of letters and
// lower-cases the rest. Any non-letter starts a new run, so "it's" becomes
// "It'S" and "2nd" becomes "2Nd".
func titleCase(s string) string {
	prevLetter := false
	return strings.Map(func(r rune) rune {
		wasLetter := prevLetter
		prevLetter = unicode.IsLetter(r)
		switch {
		case !prevLetter:
			return r
		case wasLetter:
			return unicode.ToLower(r)
		default:
			return unicode.ToTitle(r)
		}
	}, s)
}
