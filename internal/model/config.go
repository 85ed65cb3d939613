package model

import (
	"fmt"
	"time"
)

// Config is the complete reliefboard configuration
type Config struct {
	Debug      bool             `yaml:"debug" mapstructure:"debug"`
	Upstream   UpstreamConfig   `yaml:"upstream" mapstructure:"upstream"`
	Board      BoardConfig      `yaml:"board" mapstructure:"board"`
	Proxy      ProxyConfig      `yaml:"proxy" mapstructure:"proxy"`
	Warnings   []WarningRule    `yaml:"warnings" mapstructure:"warnings"`
	Connectors ConnectorsConfig `yaml:"connectors" mapstructure:"connectors"`
}

// UpstreamConfig configures the ReliefWeb API client
type UpstreamConfig struct {
	BaseURL           string        `yaml:"base_url" mapstructure:"base_url"`
	AppName           string        `yaml:"appname" mapstructure:"appname"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	PageLimit         int           `yaml:"page_limit" mapstructure:"page_limit"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// ProxyConfig overrides the HTTP_PROXY / HTTPS_PROXY environment
type ProxyConfig struct {
	HTTP  string `yaml:"http,omitempty" mapstructure:"http"`
	HTTPS string `yaml:"https,omitempty" mapstructure:"https"`
}

// BoardConfig configures the Trello client
type BoardConfig struct {
	BaseURL           string        `yaml:"base_url" mapstructure:"base_url"`
	Key               string        `yaml:"key" mapstructure:"key"`
	Token             string        `yaml:"token" mapstructure:"token"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
	Concurrency       int           `yaml:"concurrency" mapstructure:"concurrency"`
}

// WarningRule maps an age threshold (strictly exceeded) to a warning label
type WarningRule struct {
	Days  int    `yaml:"days" mapstructure:"days"`
	Name  string `yaml:"name" mapstructure:"name"`
	Color string `yaml:"color" mapstructure:"color"`
}

// ConnectorsConfig holds one configuration per connector
type ConnectorsConfig struct {
	Countries ConnectorConfig `yaml:"countries" mapstructure:"countries"`
	Disasters ConnectorConfig `yaml:"disasters" mapstructure:"disasters"`
	Topics    ConnectorConfig `yaml:"topics" mapstructure:"topics"`
}

// ConnectorConfig describes the board layout owned by a connector
type ConnectorConfig struct {
	BoardID       string        `yaml:"board_id" mapstructure:"board_id"`
	Lists         []ListConfig  `yaml:"lists" mapstructure:"lists"`
	Labels        []StatusLabel `yaml:"labels" mapstructure:"labels"`
	FeaturedLabel LabelSpec     `yaml:"featured_label,omitempty" mapstructure:"featured_label"`
}

// ListConfig maps an upstream status to a managed board list
type ListConfig struct {
	Name     string `yaml:"name" mapstructure:"name"`
	Status   string `yaml:"status" mapstructure:"status"`
	Position int    `yaml:"position" mapstructure:"position"`
	Default  bool   `yaml:"default,omitempty" mapstructure:"default"`
}

// LabelSpec is a label name and color. An empty color means colorless.
type LabelSpec struct {
	Name  string `yaml:"name" mapstructure:"name"`
	Color string `yaml:"color" mapstructure:"color"`
}

// StatusLabel is a configured label applied to entities in one status
type StatusLabel struct {
	Status string `yaml:"status" mapstructure:"status"`
	Name   string `yaml:"name" mapstructure:"name"`
	Color  string `yaml:"color" mapstructure:"color"`
}

// Spec returns the label name and color
func (l StatusLabel) Spec() LabelSpec {
	return LabelSpec{Name: l.Name, Color: l.Color}
}

// Connector returns the configuration of the named connector
func (c *Config) Connector(kind Kind) (ConnectorConfig, error) {
	switch kind {
	case KindCountry:
		return c.Connectors.Countries, nil
	case KindDisaster:
		return c.Connectors.Disasters, nil
	case KindTopic:
		return c.Connectors.Topics, nil
	}
	return ConnectorConfig{}, fmt.Errorf("unknown connector %q", kind)
}

// Validate checks the settings needed to talk to the board
func (c *Config) Validate(kind Kind) error {
	if c.Board.Key == "" || c.Board.Token == "" {
		return fmt.Errorf("board key and token are required")
	}
	cc, err := c.Connector(kind)
	if err != nil {
		return err
	}
	if cc.BoardID == "" {
		return fmt.Errorf("%s: board_id is required", kind.Resource())
	}
	if len(cc.Lists) == 0 {
		return fmt.Errorf("%s: at least one list is required", kind.Resource())
	}
	seen := make(map[string]bool)
	for _, l := range cc.Lists {
		if l.Name == "" {
			return fmt.Errorf("%s: list name is required", kind.Resource())
		}
		if seen[l.Status] {
			return fmt.Errorf("%s: status %q mapped to more than one list", kind.Resource(), l.Status)
		}
		seen[l.Status] = true
	}
	for _, l := range cc.Labels {
		if l.Name == "" || l.Status == "" {
			return fmt.Errorf("%s: labels need a name and a status", kind.Resource())
		}
	}
	return nil
}

// StatusPosition returns the configured position of the list for status, or 0
func (cc ConnectorConfig) StatusPosition(status string) int {
	for _, l := range cc.Lists {
		if l.Status == status {
			return l.Position
		}
	}
	return 0
}

// ListFor returns the list configured for status, falling back to the default list
func (cc ConnectorConfig) ListFor(status string) (ListConfig, bool) {
	for _, l := range cc.Lists {
		if l.Status == status {
			return l, true
		}
	}
	for _, l := range cc.Lists {
		if l.Default {
			return l, true
		}
	}
	return ListConfig{}, false
}

// DefaultConfig returns the configuration used when no file overrides it
func DefaultConfig() *Config {
	return &Config{
		Upstream: UpstreamConfig{
			BaseURL:           "https://api.reliefweb.int/v1",
			AppName:           "reliefboard",
			Timeout:           30 * time.Second,
			PageLimit:         1000,
			RequestsPerSecond: 2,
		},
		Board: BoardConfig{
			BaseURL:           "https://api.trello.com/1",
			Timeout:           30 * time.Second,
			RequestsPerSecond: 8,
			Burst:             4,
			Concurrency:       1,
		},
		Warnings: []WarningRule{
			{Days: 7, Name: "No update > 7 days", Color: "yellow"},
			{Days: 14, Name: "No update > 14 days", Color: "orange"},
			{Days: 21, Name: "No update > 21 days", Color: "red"},
		},
		Connectors: ConnectorsConfig{
			Countries: ConnectorConfig{
				Lists: []ListConfig{
					{Name: "Current", Status: "current", Position: 1},
					{Name: "Normal", Status: "normal", Position: 2, Default: true},
				},
				Labels: []StatusLabel{
					{Status: "current", Name: "Current crisis", Color: "orange"},
				},
			},
			Disasters: ConnectorConfig{
				Lists: []ListConfig{
					{Name: "Alert", Status: "alert", Position: 1},
					{Name: "Ongoing", Status: "ongoing", Position: 2, Default: true},
				},
				Labels: []StatusLabel{
					{Status: "alert", Name: "Alert", Color: "red"},
				},
			},
			Topics: ConnectorConfig{
				Lists: []ListConfig{
					{Name: "Published", Status: "published", Position: 1, Default: true},
					{Name: "Archived", Status: "archived", Position: 2},
				},
				Labels: []StatusLabel{
					{Status: "published", Name: "Published", Color: "sky"},
					{Status: "archived", Name: "Archived", Color: "black"},
				},
				FeaturedLabel: LabelSpec{Name: "Featured", Color: "green"},
			},
		},
	}
}
