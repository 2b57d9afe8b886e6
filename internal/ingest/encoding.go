package ingest

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
)

var ErrUnknownEncoding = errors.New("unknown encoding")

// Labels seen in Korean public-data exports that the WHATWG index does not
// know. The WHATWG euc-kr decoder already covers the CP949 extensions.
var encodingAliases = map[string]encoding.Encoding{
	"cp949":       korean.EUCKR,
	"ms949":       korean.EUCKR,
	"windows-949": korean.EUCKR,
	"uhc":         korean.EUCKR,
	"utf-8-sig":   unicode.UTF8BOM,
	"utf8-sig":    unicode.UTF8BOM,
}

// LookupEncoding resolves an encoding label. An empty label means UTF-8.
// UTF-8 decoding strips a leading byte order mark.
func LookupEncoding(name string) (encoding.Encoding, error) {
	label := strings.ToLower(strings.TrimSpace(name))
	if label == "" || label == "utf-8" || label == "utf8" {
		return unicode.UTF8BOM, nil
	}
	if enc, ok := encodingAliases[label]; ok {
		return enc, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	if enc == unicode.UTF8 {
		return unicode.UTF8BOM, nil
	}
	return enc, nil
}

// Decode converts raw bytes in the named encoding to a UTF-8 string.
func Decode(raw []byte, encodingName string) (string, error) {
	enc, err := LookupEncoding(encodingName)
	if err != nil {
		return "", err
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", encodingName, err)
	}
	return string(out), nil
}
