package upstream

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/reliefboard/internal/model"
)

const (
	// recentWindow is the span of reports read one by one
	recentWindow = 60 * 24 * time.Hour

	// vocabularyLimit bounds each tag facet; ReliefWeb knows fewer countries
	vocabularyLimit = 1000
)

type disasterFields struct {
	ID             int     `json:"id"`
	Name           string  `json:"name"`
	URL            string  `json:"url"`
	URLAlias       string  `json:"url_alias"`
	Status         string  `json:"status"`
	Glide          string  `json:"glide"`
	Description    string  `json:"description"`
	PrimaryType    named   `json:"primary_type"`
	Type           []named `json:"type"`
	PrimaryCountry named   `json:"primary_country"`
	Country        []named `json:"country"`
}

// tags lists types then countries, primary ones first
func (d disasterFields) tags() []string {
	types := append([]named{d.PrimaryType}, d.Type...)
	countries := append([]named{d.PrimaryCountry}, d.Country...)
	return append(names(types), names(countries)...)
}

// FetchDisasters returns the disasters in the configured statuses, enriched
// with the age of their latest report.
func (f *Fetcher) FetchDisasters(ctx context.Context) ([]model.Entity, error) {
	q := Query{
		Fields: Include("id", "name", "url", "url_alias", "status", "glide", "description",
			"primary_type.name", "type.name", "primary_country.name", "country.name"),
		Filter: AnyOf("status", f.statuses()...),
		Sort:   []string{"id:desc"},
	}

	items, err := f.client.QueryAll(ctx, model.KindDisaster.Resource(), q)
	if err != nil {
		return nil, err
	}
	records, err := decodeItems[disasterFields](model.KindDisaster, items)
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	reportDays, err := f.lastReportDays(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("last report of disasters: %w", err)
	}

	entities := make([]model.Entity, 0, len(records))
	for _, r := range records {
		e, err := model.NewEntity(model.KindDisaster, r.ID, r.Name, canonical(r.URLAlias, r.URL))
		if err != nil {
			return nil, invalid(err)
		}
		e.Status = r.Status
		e.StatusPosition = f.cfg.StatusPosition(r.Status)
		e.Body = Truncate(r.Description, e.URL)
		e.Glide = r.Glide
		e.Tags = r.tags()
		e.LastReportDays = reportDays[r.ID]
		entities = append(entities, e)
	}
	return entities, nil
}

type reportFields struct {
	Disaster []struct {
		ID int `json:"id"`
	} `json:"disaster"`
	Date struct {
		Created string `json:"created"`
	} `json:"date"`
}

// lastReportDays buckets the age of the newest report of every disaster with
// two collection-wide queries. The first pages through the last 60 days of
// reports, newest first. The second facets all-time reports on disaster.id for
// the disasters the first one did not see, telling "old" (61) from "never".
func (f *Fetcher) lastReportDays(ctx context.Context, disasterIDs []int) (map[int]int, error) {
	out := make(map[int]int, len(disasterIDs))
	if len(disasterIDs) == 0 {
		return out, nil
	}
	wanted := make(map[int]bool, len(disasterIDs))
	values := make([]string, 0, len(disasterIDs))
	for _, id := range disasterIDs {
		wanted[id] = true
		values = append(values, strconv.Itoa(id))
	}

	now := f.now().UTC()
	recent := Query{
		Fields: Include("disaster.id", "date.created"),
		Filter: And(
			*AnyOf("disaster.id", values...),
			Filter{Field: "date.created", Value: Range{From: now.Add(-recentWindow).Format(time.RFC3339)}},
		),
		Sort: []string{"date.created:desc"},
	}
	items, err := f.client.QueryPages(ctx, "reports", recent)
	if err != nil {
		return nil, err
	}
	reports, err := decodeItems[reportFields](model.KindDisaster, items)
	if err != nil {
		return nil, err
	}
	for _, r := range reports {
		created, err := time.Parse(time.RFC3339, r.Date.Created)
		if err != nil {
			continue
		}
		days := int(now.Sub(created).Hours() / 24)
		if days < 0 {
			days = 0
		}
		for _, d := range r.Disaster {
			if _, seen := out[d.ID]; seen || !wanted[d.ID] {
				continue
			}
			out[d.ID] = ReportBucket(days)
		}
	}

	var quiet []string
	for _, id := range disasterIDs {
		if _, ok := out[id]; !ok {
			out[id] = model.NoReport
			quiet = append(quiet, strconv.Itoa(id))
		}
	}
	if len(quiet) == 0 {
		return out, nil
	}

	history := Query{
		Filter: AnyOf("disaster.id", quiet...),
		Limit:  0,
		Facets: []FacetSpec{{Field: "disaster.id", Name: "history", Limit: len(quiet)}},
	}
	resp, err := f.client.Query(ctx, "reports", history)
	if err != nil {
		return nil, err
	}
	for _, b := range resp.Facet("history").Data {
		id, err := strconv.Atoi(b.Value)
		if err != nil || b.Count <= 0 || !wanted[id] {
			continue
		}
		if out[id] == model.NoReport {
			out[id] = 61
		}
	}

	f.logger.Debug("report ages", zap.Int("disasters", len(disasterIDs)), zap.Int("recent reports", len(reports)))
	return out, nil
}

// TagVocabulary lists every type and country name any disaster has been
// tagged with, from one faceted query over the whole collection.
func (f *Fetcher) TagVocabulary(ctx context.Context) ([]string, error) {
	q := Query{
		Limit: 0,
		Facets: []FacetSpec{
			{Field: "type.name", Name: "types", Limit: vocabularyLimit},
			{Field: "country.name", Name: "countries", Limit: vocabularyLimit},
		},
	}
	resp, err := f.client.Query(ctx, model.KindDisaster.Resource(), q)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, facet := range []string{"types", "countries"} {
		for _, b := range resp.Facet(facet).Data {
			if b.Value != "" {
				out = append(out, b.Value)
			}
		}
	}
	return out, nil
}
