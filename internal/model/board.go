package model

// Board is the snapshot of a Trello board read once per run
type Board struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Lists      []List      `json:"lists"`
	Labels     []Label     `json:"labels"`
	Cards      []Card      `json:"cards"`
	Checklists []Checklist `json:"checklists,omitempty"`
}

// List is a board column
type List struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Pos    float64 `json:"pos"`
	Closed bool    `json:"closed"`
}

// Label is a board-scoped label. Names are unique per board.
type Label struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Attachment is a card attachment; only the URL is used
type Attachment struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Card is the board representation of an entity
type Card struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Desc        string       `json:"desc"`
	ListID      string       `json:"idList"`
	Pos         float64      `json:"pos"`
	Closed      bool         `json:"closed"`
	LabelIDs    []string     `json:"idLabels"`
	Attachments []Attachment `json:"attachments"`
	Checklists  []Checklist  `json:"-"`
}

// Checklist is a named group of check items on a card
type Checklist struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	CardID string      `json:"idCard"`
	Pos    float64     `json:"pos"`
	Items  []CheckItem `json:"checkItems"`
}

// CheckItem is a single checklist entry
type CheckItem struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Pos  float64 `json:"pos"`
}

// CardFields is a partial card update. Nil fields are left unchanged.
type CardFields struct {
	Name   *string
	Desc   *string
	ListID *string
	Pos    *float64
	Closed *bool
}

// Empty reports whether the update changes nothing
func (f CardFields) Empty() bool {
	return f.Name == nil && f.Desc == nil && f.ListID == nil && f.Pos == nil && f.Closed == nil
}

// Changed lists the names of the fields set in the update
func (f CardFields) Changed() []string {
	var names []string
	if f.Name != nil {
		names = append(names, "name")
	}
	if f.Desc != nil {
		names = append(names, "desc")
	}
	if f.ListID != nil {
		names = append(names, "list")
	}
	if f.Pos != nil {
		names = append(names, "pos")
	}
	if f.Closed != nil {
		names = append(names, "closed")
	}
	return names
}

// NewCard holds the fields of a card created in one call
type NewCard struct {
	Name     string
	Desc     string
	ListID   string
	Pos      float64
	LabelIDs []string
}
