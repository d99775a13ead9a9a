// Package engine implements the game rules over the row store: the cycle
// clock, mission lifecycle, reputation bookkeeping, players, feeds and
// messages. Every operation reads fresh state from the store, decides,
// then performs at most one write; there is no in-process shared state
// and no locking. Concurrent submissions for the same player and mission
// can in principle race the duplicate check, an accepted limitation at
// this game's cadence.
package engine

import (
	"time"

	"vigilnet/internal/config"
	"vigilnet/internal/events"
	"vigilnet/internal/store"
)

type Engine struct {
	Store  store.Store
	Events events.Writer
	Config *config.Config
	Now    func() time.Time
}

func New(st store.Store, cfg *config.Config) Engine {
	return Engine{
		Store:  st,
		Events: events.Writer{Store: st},
		Config: cfg,
		Now:    time.Now,
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}
