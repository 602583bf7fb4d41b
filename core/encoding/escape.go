// Package encoding provides shared text encoding and escaping utilities.
package encoding

import (
	"strings"
)

// EscapeXMLText escapes only the basic XML entities for text content.
func EscapeXMLText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// EscapeXMLAttr escapes text for use in XML attributes.
// Includes quote escaping in addition to basic XML entities.
func EscapeXMLAttr(s string) string {
	s = EscapeXMLText(s)
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}

// EscapeMetaValue escapes a metadata value for a single-line XML attribute.
// Newlines become character references, carriage returns are dropped and the
// CHAT time alignment marker (\x15) becomes a middle dot reference.
func EscapeMetaValue(s string) string {
	s = EscapeXMLAttr(s)
	s = strings.ReplaceAll(s, "\n", "&#10;")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\x15", "&#183;")
	return s
}
