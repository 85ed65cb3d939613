package reconcile

import (
	"fmt"
	"regexp"

	"github.com/ppiankov/reliefboard/internal/model"
)

// Checklist group names managed on topic cards, in card order
const (
	ChecklistRivers    = "Rivers"
	ChecklistSections  = "Sections"
	ChecklistResources = "Resources"
)

// DesiredChecklist is a managed checklist and its ordered links
type DesiredChecklist struct {
	Name  string
	Links []model.Link
}

// Connector describes how one entity kind is represented on the board
type Connector interface {
	Kind() model.Kind
	Config() model.ConnectorConfig
	// Pattern matches the canonical URLs of this kind
	Pattern() *regexp.Regexp
	WithChecklists() bool
	// Labels is the desired label set of one entity
	Labels(e model.Entity) []model.LabelSpec
	// ManagedLabels is every label this connector may add or remove in a run,
	// given the entities of the run
	ManagedLabels(entities []model.Entity) []model.LabelSpec
	Footers(e model.Entity) map[string]string
	Checklists(e model.Entity) []DesiredChecklist
}

var (
	countryPattern  = regexp.MustCompile(`^https?://(www\.)?reliefweb\.int/country/[^/?#]+`)
	disasterPattern = regexp.MustCompile(`^https?://(www\.)?reliefweb\.int/disaster/[^/?#]+`)
	topicPattern    = regexp.MustCompile(`^https?://(www\.)?reliefweb\.int/topics/[^/?#]+`)
)

// NewConnector returns the connector for kind
func NewConnector(kind model.Kind, cfg *model.Config) (Connector, error) {
	cc, err := cfg.Connector(kind)
	if err != nil {
		return nil, err
	}
	base := connectorBase{cfg: cc}
	switch kind {
	case model.KindCountry:
		return &CountryConnector{base}, nil
	case model.KindDisaster:
		return &DisasterConnector{connectorBase: base, warnings: cfg.Warnings}, nil
	case model.KindTopic:
		return &TopicConnector{base}, nil
	}
	return nil, fmt.Errorf("unknown connector %q", kind)
}

type connectorBase struct {
	cfg model.ConnectorConfig
}

func (b connectorBase) Config() model.ConnectorConfig { return b.cfg }

func (b connectorBase) WithChecklists() bool { return false }

func (b connectorBase) Footers(model.Entity) map[string]string { return nil }

func (b connectorBase) Checklists(model.Entity) []DesiredChecklist { return nil }

// statusLabels returns the configured labels for the entity's status
func (b connectorBase) statusLabels(e model.Entity) []model.LabelSpec {
	var out []model.LabelSpec
	for _, l := range b.cfg.Labels {
		if l.Status == e.Status {
			out = append(out, l.Spec())
		}
	}
	return out
}

func (b connectorBase) configuredLabels() []model.LabelSpec {
	out := make([]model.LabelSpec, 0, len(b.cfg.Labels))
	for _, l := range b.cfg.Labels {
		out = append(out, l.Spec())
	}
	return out
}

// tagLabels turns entity tags into colorless labels
func tagLabels(tags []string) []model.LabelSpec {
	out := make([]model.LabelSpec, 0, len(tags))
	for _, t := range tags {
		out = append(out, model.LabelSpec{Name: t})
	}
	return out
}

// CountryConnector maps countries: one card per country, labelled by status
type CountryConnector struct {
	connectorBase
}

func (c *CountryConnector) Kind() model.Kind { return model.KindCountry }

func (c *CountryConnector) Pattern() *regexp.Regexp { return countryPattern }

func (c *CountryConnector) Labels(e model.Entity) []model.LabelSpec {
	return c.statusLabels(e)
}

func (c *CountryConnector) ManagedLabels([]model.Entity) []model.LabelSpec {
	return c.configuredLabels()
}

// DisasterConnector maps disasters: type and country tags, status labels, a
// warning when reporting has gone quiet, and the GLIDE number as a footer
type DisasterConnector struct {
	connectorBase
	warnings []model.WarningRule
}

func (c *DisasterConnector) Kind() model.Kind { return model.KindDisaster }

func (c *DisasterConnector) Pattern() *regexp.Regexp { return disasterPattern }

func (c *DisasterConnector) Labels(e model.Entity) []model.LabelSpec {
	out := tagLabels(e.Tags)
	out = append(out, c.statusLabels(e)...)
	if e.LastReportDays != model.NoReport {
		if w, ok := SelectWarning(e.LastReportDays, c.warnings); ok {
			out = append(out, model.LabelSpec{Name: w.Name, Color: w.Color})
		}
	}
	return out
}

func (c *DisasterConnector) ManagedLabels(entities []model.Entity) []model.LabelSpec {
	out := c.configuredLabels()
	for _, w := range c.warnings {
		out = append(out, model.LabelSpec{Name: w.Name, Color: w.Color})
	}
	for _, e := range entities {
		out = append(out, tagLabels(e.Tags)...)
	}
	return dedupeLabels(out)
}

func (c *DisasterConnector) Footers(e model.Entity) map[string]string {
	if e.Glide == "" {
		return nil
	}
	return map[string]string{FooterGlide: e.Glide}
}

// TopicConnector maps topics: featured and status labels plus the Rivers,
// Sections and Resources checklists
type TopicConnector struct {
	connectorBase
}

func (c *TopicConnector) Kind() model.Kind { return model.KindTopic }

func (c *TopicConnector) Pattern() *regexp.Regexp { return topicPattern }

func (c *TopicConnector) WithChecklists() bool { return true }

func (c *TopicConnector) Labels(e model.Entity) []model.LabelSpec {
	out := c.statusLabels(e)
	if e.Featured && c.cfg.FeaturedLabel.Name != "" {
		out = append(out, c.cfg.FeaturedLabel)
	}
	return out
}

func (c *TopicConnector) ManagedLabels([]model.Entity) []model.LabelSpec {
	out := c.configuredLabels()
	if c.cfg.FeaturedLabel.Name != "" {
		out = append(out, c.cfg.FeaturedLabel)
	}
	return dedupeLabels(out)
}

func (c *TopicConnector) Checklists(e model.Entity) []DesiredChecklist {
	return []DesiredChecklist{
		{Name: ChecklistRivers, Links: e.Rivers},
		{Name: ChecklistSections, Links: e.Sections},
		{Name: ChecklistResources, Links: e.Resources},
	}
}

// dedupeLabels keeps the first spec of each name
func dedupeLabels(in []model.LabelSpec) []model.LabelSpec {
	seen := make(map[string]bool, len(in))
	out := make([]model.LabelSpec, 0, len(in))
	for _, l := range in {
		if l.Name == "" || seen[l.Name] {
			continue
		}
		seen[l.Name] = true
		out = append(out, l)
	}
	return out
}
