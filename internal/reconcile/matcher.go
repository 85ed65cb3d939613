package reconcile

import (
	"regexp"

	"go.uber.org/zap"

	"github.com/ppiankov/reliefboard/internal/model"
)

// Matcher pairs board cards with upstream entities through the canonical URL
// attached to the card
type Matcher struct {
	pattern *regexp.Regexp
	known   map[string]bool
	logger  *zap.Logger
}

// NewMatcher creates a matcher for attachments matching pattern. URLs of the
// current entities are accepted even when the pattern misses them.
func NewMatcher(pattern *regexp.Regexp, entities []model.Entity, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	known := make(map[string]bool, len(entities))
	for _, e := range entities {
		known[e.URL] = true
	}
	return &Matcher{pattern: pattern, known: known, logger: logger}
}

// CanonicalURL returns the first attachment that is a canonical entity URL,
// normalized to http:
func (m *Matcher) CanonicalURL(card model.Card) (string, bool) {
	for _, a := range card.Attachments {
		u := model.NormalizeURL(a.URL)
		if u == "" {
			continue
		}
		if m.known[u] || m.pattern.MatchString(u) {
			return u, true
		}
	}
	return "", false
}

// Match builds the one-to-one url -> card index. Cards are taken in board
// order; a card whose URL is already claimed is left out.
func (m *Matcher) Match(cards []model.Card) map[string]*model.Card {
	index := make(map[string]*model.Card)
	for i := range cards {
		card := &cards[i]
		u, ok := m.CanonicalURL(*card)
		if !ok {
			continue
		}
		if prev, dup := index[u]; dup {
			m.logger.Debug("duplicate card for entity url",
				zap.String("url", u),
				zap.String("card", card.ID),
				zap.String("kept", prev.ID),
			)
			continue
		}
		index[u] = card
	}
	return index
}
