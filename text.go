package strictlite

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// Text is a byte-string holding a TEXT column's content with no UTF-8
// promise. The engine does not guarantee that stored text is well-formed
// UTF-8: a database written by another tool can contain arbitrary bytes in
// TEXT columns, and a wrapper that assumed otherwise would either lie or
// fail on read.
//
// Conversion to a validated string is the explicit, fallible Str. Ordering,
// equality and hashing are byte-wise.
type Text []byte

// NewText copies s into a Text.
func NewText(s string) Text { return Text(s) }

// Bytes returns the underlying bytes.
func (t Text) Bytes() []byte { return []byte(t) }

// Len returns the byte length.
func (t Text) Len() int { return len(t) }

// Str converts to a string after validating UTF-8.
func (t Text) Str() (string, error) {
	if !utf8.Valid(t) {
		return "", errCode(CodeMismatch, "text is not valid UTF-8")
	}
	return string(t), nil
}

// String renders the text for display, replacing ill-formed sequences with
// the replacement character. Use Str when validity matters.
func (t Text) String() string {
	return strings.ToValidUTF8(string(t), "�")
}

// Equal compares byte-wise.
func (t Text) Equal(other Text) bool { return bytes.Equal(t, other) }

// Compare orders byte-wise, like bytes.Compare.
func (t Text) Compare(other Text) int { return bytes.Compare(t, other) }

// Key returns a byte-preserving string usable as a map key.
func (t Text) Key() string { return string(t) }
