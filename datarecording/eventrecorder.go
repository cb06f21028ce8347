package datarecording

import (
	"context"
	"strings"
	"time"

	"github.com/sarchlab/netsim/sim"
)

// NodeEventTable is the table that EventRecorder writes into.
const NodeEventTable = "node_events"

// A NodeEvent is one row of the node event table.
type NodeEvent struct {
	Time      string
	Node      string
	Event     string
	MsgID     string
	Kind      string
	Src       string
	Dst       string
	Broadcast bool
	Detail    string
}

// An EventRecorder is a hook that records every event raised by the nodes it
// is attached to.
type EventRecorder struct {
	recorder DataRecorder
	now      func() time.Time
}

// NewEventRecorder creates the node event table in the recorder and returns
// a hook that fills it.
func NewEventRecorder(recorder DataRecorder) *EventRecorder {
	recorder.CreateTable(NodeEventTable, NodeEvent{})

	return &EventRecorder{
		recorder: recorder,
		now:      time.Now,
	}
}

// Func records the event.
func (r *EventRecorder) Func(ctx sim.HookCtx) {
	e := NodeEvent{
		Time: r.now().Format(time.RFC3339Nano),
		Node: ctx.Domain.Name(),
	}

	if ctx.Pos != nil {
		e.Event = ctx.Pos.Name
	}

	if msg, ok := ctx.Item.(*sim.Msg); ok {
		e.MsgID = msg.ID()
		e.Kind = string(msg.Kind())
		e.Src = msg.Src()
		e.Dst = msg.Dst()
		e.Broadcast = msg.IsBroadcast()
	}

	if text, ok := ctx.Detail.(string); ok {
		e.Detail = text
	}

	r.recorder.InsertData(NodeEventTable, e)
}

// Flush writes the buffered events into the database.
func (r *EventRecorder) Flush() {
	r.recorder.Flush()
}

// A NodeEventFilter selects node events. Empty fields match every event.
type NodeEventFilter struct {
	Node  string
	Event string
	Kind  string
	Limit int
}

// ReadNodeEvents returns the recorded node events that pass the filter in
// the order they were recorded, together with the number of events that
// pass the filter regardless of the limit.
func ReadNodeEvents(
	ctx context.Context,
	r DataReader,
	f NodeEventFilter,
) ([]NodeEvent, int, error) {
	r.MapTable(NodeEventTable, NodeEvent{})

	var (
		conditions []string
		args       []any
	)

	for _, c := range []struct{ column, value string }{
		{"Node", f.Node},
		{"Event", f.Event},
		{"Kind", f.Kind},
	} {
		if c.value != "" {
			conditions = append(conditions, c.column+" = ?")
			args = append(args, c.value)
		}
	}

	results, total, err := r.Query(ctx, NodeEventTable, QueryParams{
		Where:   strings.Join(conditions, " AND "),
		Args:    args,
		Limit:   f.Limit,
		OrderBy: "rowid",
	})
	if err != nil {
		return nil, 0, err
	}

	events := make([]NodeEvent, 0, len(results))
	for _, e := range results {
		events = append(events, *e.(*NodeEvent))
	}

	return events, total, nil
}
