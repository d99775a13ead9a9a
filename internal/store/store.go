// Package store is the row-store port the game engine reads and writes
// through. Tabs are ordered lists of header-keyed records, in the shape of
// the original spreadsheet: every cell is a string, rows are addressed by
// a store-assigned reference, and no transaction spans more than one
// operation. Callers do explicit read-then-decide-then-write sequences
// and accept the race window that implies.
package store

import (
	"context"
	"errors"
)

// ErrUnavailable wraps every I/O failure from the underlying store. An
// operation that fails with it performed at most one write and is safe to
// retry from the top.
var ErrUnavailable = errors.New("store unavailable")

// Record holds one row's cells keyed by column header. Missing headers
// read as "".
type Record map[string]string

// RowRef addresses an existing row for targeted cell updates. It is only
// meaningful against the store that produced it.
type RowRef int64

// Row is a record together with its store reference.
type Row struct {
	Ref    RowRef
	Record Record
}

// CellUpdate targets one field on one existing row.
type CellUpdate struct {
	Ref   RowRef
	Field string
	Value string
}

type Store interface {
	// ReadRows returns every row of the tab in store order.
	ReadRows(ctx context.Context, tab string) ([]Row, error)
	// AppendRow adds one record to the end of the tab.
	AppendRow(ctx context.Context, tab string, rec Record) error
	// UpdateCell overwrites a single field on an existing row.
	UpdateCell(ctx context.Context, tab string, ref RowRef, field, value string) error
	// BatchUpdateCells applies several cell updates to one tab as a
	// unit; on failure no cell is changed.
	BatchUpdateCells(ctx context.Context, tab string, updates []CellUpdate) error
}

// Tab names. These mirror the original spreadsheet tabs.
const (
	TabMissions    = "Missions"
	TabQuestions   = "MissionQuestions"
	TabSubmissions = "MissionSubmissions"
	TabSettings    = "Settings"
	TabPlayers     = "Players"
	TabFactions    = "Factions"
	TabReputation  = "Reputation"
	TabFeeds       = "Feeds"
	TabMessages    = "Messages"
	TabContacts    = "Contacts"
	TabEvents      = "Events"
)

// Headers is the canonical column set per tab, in sheet order.
var Headers = map[string][]string{
	TabMissions: {
		"mission_id", "title", "description", "image_url", "visible", "cycle_id",
		"outcome_a_label", "outcome_a_narrative", "outcome_a_image", "outcome_a_changes",
		"outcome_b_label", "outcome_b_narrative", "outcome_b_image", "outcome_b_changes",
		"outcome_c_label", "outcome_c_narrative", "outcome_c_image", "outcome_c_changes",
	},
	TabQuestions: {
		"mission_id", "question_num", "question_text",
		"option_id", "option_text", "option_image", "option_flavor", "option_weight",
	},
	TabSubmissions: {
		"submission_id", "username", "hero_name", "mission_id",
		"q1_answer", "q2_answer", "q3_answer", "q4_answer",
		"outcome_bucket", "dm_override", "resolved", "cycle_id", "timestamp",
	},
	TabSettings: {"key", "value"},
	TabPlayers: {
		"username", "password_hash", "hero_name", "class",
		"might", "agility", "charm", "intuition", "commerce", "intelligence",
		"followers", "bank", "positional_authority", "clout", "faction",
	},
	TabFactions:   {"faction_name", "description", "power_multiplier", "leader"},
	TabReputation: {"hero_name", "faction_name", "reputation"},
	TabFeeds: {
		"feed", "posted_by", "posted_by_type", "title", "image_url", "body",
		"timestamp", "visible", "cycle_id",
	},
	TabMessages: {"from_name", "to_name", "body", "timestamp", "cycle_id"},
	TabContacts: {"hero_name", "contact_name"},
	TabEvents:   {"ts", "type", "entity_kind", "entity_id", "actor_id", "payload_json"},
}
