package reconcile

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ppiankov/reliefboard/internal/model"
)

// Result counts what one connector run did to the board
type Result struct {
	Connector     model.Kind
	Entities      int
	Created       int
	Updated       int
	Unchanged     int
	Archived      int
	Skipped       int
	Failed        int // recoverable operations that failed
	ListsCreated  int
	LabelsCreated int
}

// Changed reports whether the run wrote anything to the board
func (r Result) Changed() bool {
	return r.Created+r.Updated+r.Archived+r.ListsCreated+r.LabelsCreated > 0
}

// MarshalLogObject lets the result be logged with zap.Object
func (r Result) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("connector", string(r.Connector))
	enc.AddInt("entities", r.Entities)
	enc.AddInt("created", r.Created)
	enc.AddInt("updated", r.Updated)
	enc.AddInt("unchanged", r.Unchanged)
	enc.AddInt("archived", r.Archived)
	enc.AddInt("skipped", r.Skipped)
	enc.AddInt("failed", r.Failed)
	enc.AddInt("lists_created", r.ListsCreated)
	enc.AddInt("labels_created", r.LabelsCreated)
	return nil
}

var _ zapcore.ObjectMarshaler = Result{}

// Field returns the result as a zap field
func (r Result) Field() zap.Field {
	return zap.Object("result", r)
}
