package resolver

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decodePlainText decodes a plain-text payload into UTF-8, handling UTF-8
// BOMs, UTF-16 with BOM, and a Latin-1 fallback for legacy exports.
func decodePlainText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	if utf8.Valid(data) {
		return string(data), nil
	}

	if len(data) >= 2 {
		isLE := data[0] == 0xFF && data[1] == 0xFE
		isBE := data[0] == 0xFE && data[1] == 0xFF
		if isLE || isBE {
			decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
			decoded, _, err := transform.Bytes(decoder, data)
			if err == nil && utf8.Valid(decoded) {
				return string(decoded), nil
			}
		}
	}

	decoded, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("failed to decode text payload: %w", err)
	}
	return string(decoded), nil
}
