package upstream

import (
	"context"

	"github.com/ppiankov/reliefboard/internal/model"
)

type countryFields struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	URLAlias    string `json:"url_alias"`
	Status      string `json:"status"`
	Description string `json:"description"`
}

// FetchCountries returns the countries in the configured statuses
func (f *Fetcher) FetchCountries(ctx context.Context) ([]model.Entity, error) {
	q := Query{
		Fields: Include("id", "name", "url", "url_alias", "status", "description"),
		Filter: AnyOf("status", f.statuses()...),
		Sort:   []string{"id:desc"},
	}

	items, err := f.client.QueryAll(ctx, model.KindCountry.Resource(), q)
	if err != nil {
		return nil, err
	}
	records, err := decodeItems[countryFields](model.KindCountry, items)
	if err != nil {
		return nil, err
	}

	entities := make([]model.Entity, 0, len(records))
	for _, r := range records {
		e, err := model.NewEntity(model.KindCountry, r.ID, r.Name, canonical(r.URLAlias, r.URL))
		if err != nil {
			return nil, invalid(err)
		}
		e.Status = r.Status
		e.StatusPosition = f.cfg.StatusPosition(r.Status)
		e.Body = Truncate(r.Description, e.URL)
		entities = append(entities, e)
	}
	return entities, nil
}
