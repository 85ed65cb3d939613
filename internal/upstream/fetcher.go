package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/reliefboard/internal/model"
)

// Fetcher retrieves one normalized entity collection
type Fetcher struct {
	client *Client
	cfg    model.ConnectorConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewFetcher creates a fetcher for the lists configured on a connector
func NewFetcher(client *Client, cfg model.ConnectorConfig, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		client: client,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Fetch dispatches on the entity kind
func (f *Fetcher) Fetch(ctx context.Context, kind model.Kind) ([]model.Entity, error) {
	var (
		entities []model.Entity
		err      error
	)
	switch kind {
	case model.KindCountry:
		entities, err = f.FetchCountries(ctx)
	case model.KindDisaster:
		entities, err = f.FetchDisasters(ctx)
	case model.KindTopic:
		entities, err = f.FetchTopics(ctx)
	default:
		return nil, fmt.Errorf("unknown connector %q", kind)
	}
	if err != nil {
		return nil, err
	}
	SortEntities(entities)
	return entities, nil
}

// Vocabulary lists every tag name the connector can derive, whether or not
// a current entity carries it. Only disasters have tags.
func (f *Fetcher) Vocabulary(ctx context.Context, kind model.Kind) ([]string, error) {
	if kind != model.KindDisaster {
		return nil, nil
	}
	return f.TagVocabulary(ctx)
}

// statuses returns the upstream statuses that map to configured lists
func (f *Fetcher) statuses() []string {
	out := make([]string, 0, len(f.cfg.Lists))
	for _, l := range f.cfg.Lists {
		if l.Status != "" {
			out = append(out, l.Status)
		}
	}
	return out
}

// decodeItems decodes every item's fields into T, failing on the first bad one
func decodeItems[T any](kind model.Kind, items []Item) ([]T, error) {
	out := make([]T, 0, len(items))
	for i, item := range items {
		var v T
		if err := json.Unmarshal(item.Fields, &v); err != nil {
			return nil, fmt.Errorf("%w: decode %s %d: %w", model.ErrUpstreamUnavailable, kind, i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// canonical prefers the URL alias, which is what cards were created with
func canonical(alias, raw string) string {
	if alias != "" {
		return alias
	}
	return raw
}

type named struct {
	Name string `json:"name"`
}

func names(in []named) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool)
	for _, n := range in {
		if n.Name == "" || seen[n.Name] {
			continue
		}
		seen[n.Name] = true
		out = append(out, n.Name)
	}
	return out
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", model.ErrUpstreamUnavailable, err)
}
