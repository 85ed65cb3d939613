package upstream

// Query is the JSON body of a ReliefWeb API request
type Query struct {
	Fields *Fields     `json:"fields,omitempty"`
	Filter *Filter     `json:"filter,omitempty"`
	Sort   []string    `json:"sort,omitempty"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset,omitempty"`
	Facets []FacetSpec `json:"facets,omitempty"`
}

// Fields selects the returned fields
type Fields struct {
	Include []string `json:"include,omitempty"`
}

// Filter is a field condition or a group of conditions
type Filter struct {
	Field      string   `json:"field,omitempty"`
	Value      any      `json:"value,omitempty"`
	Operator   string   `json:"operator,omitempty"`
	Negate     bool     `json:"negate,omitempty"`
	Conditions []Filter `json:"conditions,omitempty"`
}

// Range is a from/to filter value
type Range struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// FacetSpec requests an aggregation
type FacetSpec struct {
	Field    string `json:"field"`
	Name     string `json:"name,omitempty"`
	Interval string `json:"interval,omitempty"`
	Sort     string `json:"sort,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// Include builds a field selection
func Include(fields ...string) *Fields {
	return &Fields{Include: fields}
}

// AnyOf matches a field against several values
func AnyOf(field string, values ...string) *Filter {
	return &Filter{Field: field, Value: values, Operator: "OR"}
}

// And groups conditions that must all hold
func And(conditions ...Filter) *Filter {
	return &Filter{Operator: "AND", Conditions: conditions}
}
