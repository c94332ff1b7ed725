// Package entity converts the panel's embedded data blocks between their
// HTML-entity-escaped page form and plain text.
//
// Only the five entities the host emits are recognised. Other entity
// references pass through untouched, which is why html.UnescapeString is
// not used here.
package entity

import "strings"

// unescapeOrder is applied pair by pair. &amp; must stay last so that an
// escaped entity such as "&amp;lt;" decodes to "&lt;" and not to "<".
var unescapeOrder = [][2]string{
	{"&gt;", ">"},
	{"&lt;", "<"},
	{"&#039;", "'"},
	{"&#39;", "'"},
	{"&quot;", `"`},
	{"&amp;", "&"},
}

// escapeOrder is the inverse of unescapeOrder; & goes first.
var escapeOrder = [][2]string{
	{"&", "&amp;"},
	{"<", "&lt;"},
	{">", "&gt;"},
	{`"`, "&quot;"},
	{"'", "&#39;"},
}

// Unescape decodes &gt; &lt; &#39; (&#039;) &quot; and &amp;, in that order.
func Unescape(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	for _, p := range unescapeOrder {
		s = strings.ReplaceAll(s, p[0], p[1])
	}
	return s
}

// Escape encodes the five characters Unescape understands.
func Escape(s string) string {
	for _, p := range escapeOrder {
		s = strings.ReplaceAll(s, p[0], p[1])
	}
	return s
}
