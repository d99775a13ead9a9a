// Package events appends audit rows to the Events tab: who did what, when,
// to which entity. The log is advisory; failures to write it do not roll
// back the operation that produced it.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vigilnet/internal/store"
)

type Writer struct {
	Store store.Store
	Now   func() time.Time
}

type EventPayload map[string]any

func (w Writer) Append(ctx context.Context, evtType, entityKind, entityID, actorID string, payload EventPayload) error {
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	if payload == nil {
		payload = EventPayload{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	return w.Store.AppendRow(ctx, store.TabEvents, store.Record{
		"ts":           now().UTC().Format(time.RFC3339),
		"type":         evtType,
		"entity_kind":  entityKind,
		"entity_id":    entityID,
		"actor_id":     actorID,
		"payload_json": string(data),
	})
}
