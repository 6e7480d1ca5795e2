package transfer

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// Windows device names that must not be used as plain file names.
var reservedNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {},
	"COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {},
	"LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// SanitizeAssetName makes a manifest asset name safe to use as a file
// name under the destination directory. Path components are stripped,
// control characters removed, and Windows reserved device names prefixed
// with an underscore. An empty result is an error rather than a silent
// fallback: the manifest is the naming authority.
func SanitizeAssetName(name string) (string, error) {
	s := strings.ReplaceAll(name, `\`, "/")
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		s = s[i+1:]
	}

	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || !unicode.IsPrint(r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)

	if s == "" || strings.Trim(s, ".") == "" {
		return "", errors.Errorf("asset name %q does not yield a safe file name", name)
	}

	base := s
	if i := strings.IndexByte(s, '.'); i > 0 {
		base = s[:i]
	}
	if _, bad := reservedNames[strings.ToUpper(base)]; bad {
		s = "_" + s
	}

	return s, nil
}
