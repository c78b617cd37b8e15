package styles

import "strings"

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&#34;",
	"'", "&#39;",
)

// EscapeXML escapes s for SVG text nodes and double- or single-quoted
// attribute values. Non-ASCII text such as "∩" passes through.
func EscapeXML(s string) string { return xmlEscaper.Replace(s) }
