package trello

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ppiankov/reliefboard/internal/model"
)

func formatPos(pos float64) string {
	return strconv.FormatFloat(pos, 'f', -1, 64)
}

// CreateList adds an open list to a board
func (c *Client) CreateList(ctx context.Context, boardID, name string, pos float64) (model.List, error) {
	params := url.Values{}
	params.Set("name", name)
	params.Set("idBoard", boardID)
	params.Set("pos", formatPos(pos))

	var list model.List
	err := c.do(ctx, http.MethodPost, "/lists", params, &list)
	return list, err
}

// CreateLabel adds a label to a board. An empty color creates a colorless label.
func (c *Client) CreateLabel(ctx context.Context, boardID, name, color string) (model.Label, error) {
	params := url.Values{}
	params.Set("name", name)
	params.Set("idBoard", boardID)
	params.Set("color", color)
	if color == "" {
		params.Set("color", "null")
	}

	var label model.Label
	err := c.do(ctx, http.MethodPost, "/labels", params, &label)
	return label, err
}

// CreateCard creates a card with its name, description, list, position and
// labels in one call
func (c *Client) CreateCard(ctx context.Context, card model.NewCard) (model.Card, error) {
	params := url.Values{}
	params.Set("name", card.Name)
	params.Set("desc", card.Desc)
	params.Set("idList", card.ListID)
	params.Set("pos", formatPos(card.Pos))
	if len(card.LabelIDs) > 0 {
		params.Set("idLabels", strings.Join(card.LabelIDs, ","))
	}

	var created model.Card
	err := c.do(ctx, http.MethodPost, "/cards", params, &created)
	return created, err
}

// UpdateCard sends only the fields set in the update
func (c *Client) UpdateCard(ctx context.Context, cardID string, fields model.CardFields) error {
	params := url.Values{}
	if fields.Name != nil {
		params.Set("name", *fields.Name)
	}
	if fields.Desc != nil {
		params.Set("desc", *fields.Desc)
	}
	if fields.ListID != nil {
		params.Set("idList", *fields.ListID)
	}
	if fields.Pos != nil {
		params.Set("pos", formatPos(*fields.Pos))
	}
	if fields.Closed != nil {
		params.Set("closed", strconv.FormatBool(*fields.Closed))
	}
	return c.do(ctx, http.MethodPut, "/cards/"+url.PathEscape(cardID), params, nil)
}

// AddLabel applies a board label to a card
func (c *Client) AddLabel(ctx context.Context, cardID, labelID string) error {
	params := url.Values{}
	params.Set("value", labelID)
	return c.do(ctx, http.MethodPost, "/cards/"+url.PathEscape(cardID)+"/idLabels", params, nil)
}

// RemoveLabel removes a label from a card
func (c *Client) RemoveLabel(ctx context.Context, cardID, labelID string) error {
	return c.do(ctx, http.MethodDelete, "/cards/"+url.PathEscape(cardID)+"/idLabels/"+url.PathEscape(labelID), nil, nil)
}

// AddAttachment attaches a URL to a card
func (c *Client) AddAttachment(ctx context.Context, cardID, link string) error {
	params := url.Values{}
	params.Set("url", link)
	return c.do(ctx, http.MethodPost, "/cards/"+url.PathEscape(cardID)+"/attachments", params, nil)
}

// CreateChecklist adds an empty checklist at the bottom of a card
func (c *Client) CreateChecklist(ctx context.Context, cardID, name string) (model.Checklist, error) {
	params := url.Values{}
	params.Set("name", name)
	params.Set("pos", "bottom")

	var cl model.Checklist
	err := c.do(ctx, http.MethodPost, "/cards/"+url.PathEscape(cardID)+"/checklists", params, &cl)
	return cl, err
}

// AddCheckItem appends an item to a checklist
func (c *Client) AddCheckItem(ctx context.Context, checklistID, name string, pos float64) (model.CheckItem, error) {
	params := url.Values{}
	params.Set("name", name)
	params.Set("pos", formatPos(pos))

	var item model.CheckItem
	err := c.do(ctx, http.MethodPost, "/checklists/"+url.PathEscape(checklistID)+"/checkItems", params, &item)
	return item, err
}

// UpdateCheckItem renames and repositions an item in place
func (c *Client) UpdateCheckItem(ctx context.Context, cardID, itemID, name string, pos float64) error {
	params := url.Values{}
	params.Set("name", name)
	params.Set("pos", formatPos(pos))
	return c.do(ctx, http.MethodPut, "/cards/"+url.PathEscape(cardID)+"/checkItem/"+url.PathEscape(itemID), params, nil)
}

// DeleteCheckItem removes an item from a checklist
func (c *Client) DeleteCheckItem(ctx context.Context, checklistID, itemID string) error {
	return c.do(ctx, http.MethodDelete, "/checklists/"+url.PathEscape(checklistID)+"/checkItems/"+url.PathEscape(itemID), nil, nil)
}
