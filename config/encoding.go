package config

import (
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
)

// wow.export writes group and material names in the client locale,
// not utf-8. Windows1252 covers the western clients.
var currentCharMap *charmap.Charmap = charmap.Windows1252

func SetEncoding(name string) error {
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			if cm.String() == name {
				currentCharMap = cm
				return nil
			}
		}
	}
	return errors.Errorf("Failed to find encoding %q", name)
}

func ListEncodings() []string {
	list := make([]string, 0)
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			list = append(list, cm.String())
		}
	}
	return list
}

func GetEncoding() *charmap.Charmap {
	return currentCharMap
}

// DecodeName converts a raw name token to a string, passing valid
// utf-8 through untouched and decoding everything else with the
// configured charmap.
func DecodeName(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	if s, err := currentCharMap.NewDecoder().Bytes(b); err == nil {
		return string(s)
	}
	return string(b)
}
