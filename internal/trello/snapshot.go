package trello

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/ppiankov/reliefboard/internal/model"
)

// Snapshot reads open lists, all labels and all cards (archived included,
// with attachments) in a single request. Checklists are included on request
// and attached to their cards.
func (c *Client) Snapshot(ctx context.Context, boardID string, withChecklists bool) (*model.Board, error) {
	params := url.Values{}
	params.Set("fields", "name")
	params.Set("lists", "open")
	params.Set("list_fields", "name,pos,closed")
	params.Set("labels", "all")
	params.Set("label_fields", "name,color")
	params.Set("labels_limit", "1000")
	params.Set("cards", "all")
	params.Set("card_fields", "name,desc,idList,pos,closed,idLabels")
	params.Set("card_attachments", "true")
	params.Set("card_attachment_fields", "url")
	if withChecklists {
		params.Set("checklists", "all")
		params.Set("checklist_fields", "name,idCard,pos")
	}

	var board model.Board
	if err := c.do(ctx, http.MethodGet, "/boards/"+url.PathEscape(boardID), params, &board); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrBoardUnavailable, err)
	}

	if withChecklists {
		attachChecklists(&board)
	}

	c.logger.Info("read board snapshot",
		zap.String("board", boardID),
		zap.Int("lists", len(board.Lists)),
		zap.Int("labels", len(board.Labels)),
		zap.Int("cards", len(board.Cards)),
		zap.Int("checklists", len(board.Checklists)),
	)
	return &board, nil
}

func attachChecklists(board *model.Board) {
	byCard := make(map[string][]model.Checklist)
	for _, cl := range board.Checklists {
		byCard[cl.CardID] = append(byCard[cl.CardID], cl)
	}
	for i := range board.Cards {
		board.Cards[i].Checklists = byCard[board.Cards[i].ID]
	}
}
