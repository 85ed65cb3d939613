package model

import (
	"fmt"
	"strings"
)

// Kind identifies an upstream entity collection
type Kind string

const (
	KindCountry  Kind = "country"
	KindDisaster Kind = "disaster"
	KindTopic    Kind = "topic"
)

// Resource returns the upstream API resource name for the kind
func (k Kind) Resource() string {
	switch k {
	case KindCountry:
		return "countries"
	case KindDisaster:
		return "disasters"
	case KindTopic:
		return "topics"
	}
	return string(k)
}

// ParseKind accepts either the singular kind or the resource name
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "country", "countries":
		return KindCountry, nil
	case "disaster", "disasters":
		return KindDisaster, nil
	case "topic", "topics":
		return KindTopic, nil
	}
	return "", fmt.Errorf("unknown connector %q", s)
}

// NoReport marks an entity with no report ever published
const NoReport = -1

// Link is a titled URL used to build checklist items
type Link struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Entity is one normalized upstream record. It is built fresh on every run.
type Entity struct {
	ID             int
	Kind           Kind
	URL            string // canonical URL, always http:
	Name           string
	Body           string // truncated body text
	Status         string
	StatusPosition int
	Tags           []string

	// Disaster fields
	Glide          string
	LastReportDays int

	// Topic fields
	Featured  bool
	Rivers    []Link
	Sections  []Link
	Resources []Link
}

// NewEntity validates the required fields of an upstream record
func NewEntity(kind Kind, id int, name, rawURL string) (Entity, error) {
	if id <= 0 {
		return Entity{}, fmt.Errorf("%w: %s without id", ErrInvalidRecord, kind)
	}
	if strings.TrimSpace(name) == "" {
		return Entity{}, fmt.Errorf("%w: %s %d without name", ErrInvalidRecord, kind, id)
	}
	if strings.TrimSpace(rawURL) == "" {
		return Entity{}, fmt.Errorf("%w: %s %d without url", ErrInvalidRecord, kind, id)
	}
	return Entity{
		ID:             id,
		Kind:           kind,
		URL:            NormalizeURL(rawURL),
		Name:           strings.TrimSpace(name),
		LastReportDays: NoReport,
	}, nil
}

// NormalizeURL rewrites https: to http: so links match cards created before the
// scheme migration.
func NormalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if strings.HasPrefix(rawURL, "https:") {
		return "http:" + strings.TrimPrefix(rawURL, "https:")
	}
	return rawURL
}
