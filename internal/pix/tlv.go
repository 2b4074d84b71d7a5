package pix

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const maxValueLength = 99

var (
	ErrFieldTooLong   = errors.New("pix: field value exceeds 99 bytes")
	ErrInvalidFieldID = errors.New("pix: field id must be two digits")
	ErrMalformedTLV   = errors.New("pix: malformed TLV data")
)

// Field is a single EMV Tag-Length-Value unit. The length is always derived
// from Value when encoding.
type Field struct {
	ID    string
	Value string
}

// Template returns a field whose value is the encoding of sub.
func Template(id string, sub ...Field) (Field, error) {
	value, err := Encode(sub...)
	if err != nil {
		return Field{}, fmt.Errorf("template %s: %w", id, err)
	}
	return Field{ID: id, Value: value}, nil
}

// Encode renders fields in order as ID + 2-digit byte length + value.
func Encode(fields ...Field) (string, error) {
	var b strings.Builder
	for _, f := range fields {
		if err := f.encodeTo(&b); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func (f Field) encodeTo(b *strings.Builder) error {
	if !validID(f.ID) {
		return fmt.Errorf("%w: %q", ErrInvalidFieldID, f.ID)
	}
	if len(f.Value) > maxValueLength {
		return fmt.Errorf("%w: field %s has %d bytes", ErrFieldTooLong, f.ID, len(f.Value))
	}
	b.WriteString(f.ID)
	fmt.Fprintf(b, "%02d", len(f.Value))
	b.WriteString(f.Value)
	return nil
}

// ParseFields decodes a flat sequence of TLV fields.
func ParseFields(s string) ([]Field, error) {
	var fields []Field
	for pos := 0; pos < len(s); {
		if len(s)-pos < 4 {
			return nil, fmt.Errorf("%w: truncated header at offset %d", ErrMalformedTLV, pos)
		}
		id := s[pos : pos+2]
		if !validID(id) {
			return nil, fmt.Errorf("%w: bad id %q at offset %d", ErrMalformedTLV, id, pos)
		}
		n, err := strconv.Atoi(s[pos+2 : pos+4])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: bad length at offset %d", ErrMalformedTLV, pos+2)
		}
		start := pos + 4
		if start+n > len(s) {
			return nil, fmt.Errorf("%w: field %s overruns input", ErrMalformedTLV, id)
		}
		fields = append(fields, Field{ID: id, Value: s[start : start+n]})
		pos = start + n
	}
	return fields, nil
}

// Lookup returns the value of the first field with the given id.
func Lookup(fields []Field, id string) (string, bool) {
	for _, f := range fields {
		if f.ID == id {
			return f.Value, true
		}
	}
	return "", false
}

func validID(id string) bool {
	return len(id) == 2 && id[0] >= '0' && id[0] <= '9' && id[1] >= '0' && id[1] <= '9'
}
