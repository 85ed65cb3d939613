package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBodyEncode(t *testing.T) {
	b := Body{
		Updated: "2026-10-01T12:00:00Z",
		Text:    "First paragraph.\r\n\r\nSecond paragraph.\n",
		Footers: map[string]string{FooterGlide: "EQ-2023-000015-TUR"},
	}
	want := "**Last update:** 2026-10-01T12:00:00Z\n\n---\n\n" +
		"First paragraph.\n\nSecond paragraph.\n\n---\n\n" +
		"**GLIDE:** EQ-2023-000015-TUR"
	assert.Equal(t, want, b.Encode())
}

func TestBodyEncodeOmitsEmptyFooters(t *testing.T) {
	b := Body{Updated: "ts", Text: "text", Footers: map[string]string{FooterGlide: " "}}
	assert.Equal(t, "**Last update:** ts\n\n---\n\ntext", b.Encode())
}

func TestBodyEncodeEmptyText(t *testing.T) {
	assert.Equal(t, "**Last update:** ts", Body{Updated: "ts"}.Encode())

	withGlide := Body{Updated: "ts", Footers: map[string]string{FooterGlide: "FL-1"}}
	assert.Equal(t, "**Last update:** ts\n\n---\n\n\n\n---\n\n**GLIDE:** FL-1", withGlide.Encode())
}

func TestParseBodyTrimmedSeparator(t *testing.T) {
	for _, desc := range []string{
		"**Last update:** ts\n\n---\n\n",
		"**Last update:** ts\n\n---",
		"**Last update:** ts\n",
	} {
		got, format := ParseBody(desc)
		assert.Equal(t, FormatV2, format)
		assert.Equal(t, Body{Updated: "ts", Footers: map[string]string{}}, got, "%q", desc)
	}
}

func TestParseBodyRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		body Body
	}{
		{"plain", Body{Updated: "ts", Text: "Hello", Footers: map[string]string{}}},
		{"with glide", Body{Updated: "ts", Text: "Hello\n\nWorld", Footers: map[string]string{FooterGlide: "FL-1"}}},
		{"empty text", Body{Updated: "ts", Text: "", Footers: map[string]string{}}},
		{"empty text with glide", Body{Updated: "ts", Text: "", Footers: map[string]string{FooterGlide: "FL-1"}}},
		{"rule in text", Body{Updated: "ts", Text: "above\n\n---\n\nbelow", Footers: map[string]string{}}},
		{"escaped rule in text", Body{Updated: "ts", Text: "a\n\\---\nb", Footers: map[string]string{}}},
		{"footer lookalike in text", Body{Updated: "ts", Text: "**GLIDE:** not a footer", Footers: map[string]string{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, format := ParseBody(tt.body.Encode())
			assert.Equal(t, FormatV2, format)
			assert.Equal(t, tt.body, got)
		})
	}
}

func TestParseBodyEscapesRules(t *testing.T) {
	encoded := Body{Updated: "ts", Text: "above\n---\nbelow"}.Encode()
	assert.Equal(t, "**Last update:** ts\n\n---\n\nabove\n\\---\nbelow", encoded)
}

func TestParseBodyLegacy(t *testing.T) {
	tests := []struct {
		name string
		desc string
		want Body
	}{
		{
			name: "with glide",
			desc: "Last update: 2019-05-02T10:00:00+00:00\n\nSome text\n\nMore text\n\nGLIDE: TC-2019-000039-MOZ",
			want: Body{
				Updated: "2019-05-02T10:00:00+00:00",
				Text:    "Some text\n\nMore text",
				Footers: map[string]string{FooterGlide: "TC-2019-000039-MOZ"},
			},
		},
		{
			name: "without glide",
			desc: "Last update: 2019-05-02\n\nSome text",
			want: Body{Updated: "2019-05-02", Text: "Some text", Footers: map[string]string{}},
		},
		{
			name: "header only",
			desc: "Last update: 2019-05-02",
			want: Body{Updated: "2019-05-02", Footers: map[string]string{}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, format := ParseBody(tt.desc)
			assert.Equal(t, FormatLegacy, format)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseBodyUnknownFormat(t *testing.T) {
	got, format := ParseBody("  written by hand \n")
	assert.Equal(t, FormatUnknown, format)
	assert.Equal(t, "", got.Updated)
	assert.Equal(t, "written by hand", got.Text)
}
