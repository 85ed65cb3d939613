package reconcile

import (
	"regexp"
	"strings"
)

// Card descriptions are a sequence of sections joined by a horizontal rule:
//
//	**Last update:** <timestamp>
//
//	---
//
//	<body, lines equal to "---" escaped with a backslash>
//
//	---
//
//	**GLIDE:** <value>          (optional footers, fixed order)
//
// Descriptions written by older releases ("Last update: <ts>", a blank line,
// the body, and an optional "GLIDE: <value>" line) are still read.

const (
	sectionSeparator = "\n\n---\n\n"
	updatedHeader    = "**Last update:** "

	legacyUpdated = "Last update: "
	legacyGlide   = "\n\nGLIDE: "
)

// Footer headers, in the order they are written
const (
	FooterGlide = "GLIDE"
)

var footerOrder = []string{FooterGlide}

// BodyFormat tells which encoding a description was read from
type BodyFormat int

const (
	FormatUnknown BodyFormat = iota
	FormatLegacy
	FormatV2
)

// Body is the structured content of a card description
type Body struct {
	Updated string
	Text    string
	Footers map[string]string
}

var (
	escapedRule = regexp.MustCompile(`(?m)^(\\*)---$`)
	footerLine  = regexp.MustCompile(`^\*\*([A-Z][A-Za-z ]*):\*\* (.*)$`)
)

// NormalizeText gives body text the shape the board stores it in
func NormalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.TrimSpace(s)
}

func escapeText(s string) string {
	return escapedRule.ReplaceAllString(s, `\$1---`)
}

func unescapeText(s string) string {
	return escapedRule.ReplaceAllStringFunc(s, func(m string) string {
		if strings.HasPrefix(m, `\`) {
			return m[1:]
		}
		return m
	})
}

// Encode renders the description. Empty footers are omitted, and so is an
// empty body when no footer follows it, so the text never ends in a rule.
func (b Body) Encode() string {
	var footers []string
	for _, key := range footerOrder {
		if v := strings.TrimSpace(b.Footers[key]); v != "" {
			footers = append(footers, "**"+key+":** "+v)
		}
	}

	sections := []string{updatedHeader + b.Updated}
	if text := escapeText(NormalizeText(b.Text)); text != "" || len(footers) > 0 {
		sections = append(sections, text)
	}
	return strings.Join(append(sections, footers...), sectionSeparator)
}

// ParseBody reads a description in either format. It never fails: text in no
// known format comes back whole as the body with an empty timestamp.
func ParseBody(desc string) (Body, BodyFormat) {
	desc = strings.ReplaceAll(desc, "\r\n", "\n")

	if strings.HasPrefix(desc, updatedHeader) {
		return parseV2(desc), FormatV2
	}
	if strings.HasPrefix(desc, legacyUpdated) {
		return parseLegacy(desc), FormatLegacy
	}
	return Body{Text: NormalizeText(desc), Footers: map[string]string{}}, FormatUnknown
}

func parseV2(desc string) Body {
	// a board that trims descriptions may have cut a trailing separator short
	desc = strings.TrimRight(desc, " \n")
	desc = strings.TrimSuffix(desc, strings.TrimRight(sectionSeparator, "\n"))
	parts := strings.Split(desc, sectionSeparator)
	b := Body{
		Updated: strings.TrimSpace(strings.TrimPrefix(parts[0], updatedHeader)),
		Footers: map[string]string{},
	}
	if len(parts) < 2 {
		return b
	}

	// trailing sections that look like footers are footers; everything
	// between the header and them is the body
	end := len(parts)
	for end > 2 {
		m := footerLine.FindStringSubmatch(parts[end-1])
		if m == nil {
			break
		}
		b.Footers[m[1]] = strings.TrimSpace(m[2])
		end--
	}
	b.Text = NormalizeText(unescapeText(strings.Join(parts[1:end], sectionSeparator)))
	return b
}

func parseLegacy(desc string) Body {
	b := Body{Footers: map[string]string{}}

	rest := strings.TrimPrefix(desc, legacyUpdated)
	header, body, found := strings.Cut(rest, "\n")
	b.Updated = strings.TrimSpace(header)
	if !found {
		return b
	}

	if i := strings.LastIndex(body, legacyGlide); i >= 0 {
		b.Footers[FooterGlide] = strings.TrimSpace(body[i+len(legacyGlide):])
		body = body[:i]
	}
	b.Text = NormalizeText(body)
	return b
}
