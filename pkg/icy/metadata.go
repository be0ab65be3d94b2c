package icy

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
)

// Field is a single key/value assignment from a metadata block.
type Field struct {
	Key   string
	Value string
}

// Fields holds the assignments of one metadata block in encounter order.
// Keys are unique; assigning an existing key again updates its value in
// place.
type Fields []Field

// Get returns the value for key and whether the key is present.
func (f Fields) Get(key string) (string, bool) {
	if i := f.index(key); i >= 0 {
		return f[i].Value, true
	}
	return "", false
}

func (f Fields) index(key string) int {
	for i := range f {
		if f[i].Key == key {
			return i
		}
	}
	return -1
}

// parseBlock strips the trailing NUL padding, decodes the bytes as
// Windows-1252 (the code page ICY servers conventionally emit) and parses
// the assignments.
func parseBlock(block []byte) (Fields, error) {
	trimmed := bytes.TrimRight(block, "\x00")

	text, err := charmap.Windows1252.NewDecoder().String(string(trimmed))
	if err != nil {
		return nil, errors.Wrap(ErrMalformedMetadata, "metadata block is not valid Windows-1252")
	}

	return ParseFields(text)
}

// ParseFields decodes a sequence of key='value'; assignments. The protocol
// has no escaping: a value runs to the first '; or to a quote that closes
// the block, so an embedded apostrophe survives but an unterminated value
// is ErrMalformedMetadata. An empty input decodes to an empty mapping.
func ParseFields(text string) (Fields, error) {
	var fields Fields

	rest := text
	for rest != "" {
		sep := strings.Index(rest, "='")
		if sep < 0 {
			return nil, errors.Wrapf(ErrMalformedMetadata, "no key='value' assignment in %q", rest)
		}
		key := rest[:sep]
		rest = rest[sep+2:]

		var value string
		if end := strings.Index(rest, "';"); end >= 0 {
			value = rest[:end]
			rest = rest[end+2:]
		} else if strings.HasSuffix(rest, "'") {
			value = rest[:len(rest)-1]
			rest = ""
		} else {
			return nil, errors.Wrapf(ErrMalformedMetadata, "unterminated value for key %q", key)
		}

		if i := fields.index(key); i >= 0 {
			fields[i].Value = value
		} else {
			fields = append(fields, Field{Key: key, Value: value})
		}
	}

	return fields, nil
}
