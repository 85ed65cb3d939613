package upstream

import (
	"context"
	"strings"

	"github.com/ppiankov/reliefboard/internal/model"
)

// siteBase resolves relative links found in topic HTML
const siteBase = "https://reliefweb.int"

type topicFields struct {
	ID            int          `json:"id"`
	Name          string       `json:"name"`
	URL           string       `json:"url"`
	URLAlias      string       `json:"url_alias"`
	Status        string       `json:"status"`
	Featured      bool         `json:"featured"`
	Introduction  string       `json:"introduction"`
	Overview      string       `json:"overview"`
	River         []model.Link `json:"river"`
	Sections      []model.Link `json:"sections"`
	ResourcesHTML string       `json:"resources-html"`
}

// FetchTopics returns the topics in the configured statuses with their
// checklist links.
func (f *Fetcher) FetchTopics(ctx context.Context) ([]model.Entity, error) {
	q := Query{
		Fields: Include("id", "name", "url", "url_alias", "status", "featured", "introduction",
			"overview", "river", "sections", "resources-html"),
		Filter: AnyOf("status", f.statuses()...),
		Sort:   []string{"id:desc"},
	}

	items, err := f.client.QueryAll(ctx, model.KindTopic.Resource(), q)
	if err != nil {
		return nil, err
	}
	records, err := decodeItems[topicFields](model.KindTopic, items)
	if err != nil {
		return nil, err
	}

	entities := make([]model.Entity, 0, len(records))
	for _, r := range records {
		e, err := model.NewEntity(model.KindTopic, r.ID, r.Name, canonical(r.URLAlias, r.URL))
		if err != nil {
			return nil, invalid(err)
		}
		e.Status = r.Status
		e.StatusPosition = f.cfg.StatusPosition(r.Status)
		e.Featured = r.Featured

		body := r.Introduction
		if strings.TrimSpace(body) == "" {
			body = r.Overview
		}
		e.Body = Truncate(body, e.URL)

		e.Rivers = cleanLinks(r.River)
		e.Sections = cleanLinks(r.Sections)
		e.Resources, err = ExtractAnchors(r.ResourcesHTML, siteBase)
		if err != nil {
			return nil, invalid(err)
		}
		entities = append(entities, e)
	}
	return entities, nil
}

// cleanLinks drops links without a URL and repeated URLs, keeping order
func cleanLinks(in []model.Link) []model.Link {
	out := make([]model.Link, 0, len(in))
	seen := make(map[string]bool)
	for _, l := range in {
		l.URL = strings.TrimSpace(l.URL)
		l.Title = strings.TrimSpace(l.Title)
		if l.URL == "" || seen[l.URL] {
			continue
		}
		if l.Title == "" {
			l.Title = l.URL
		}
		seen[l.URL] = true
		out = append(out, l)
	}
	return out
}
