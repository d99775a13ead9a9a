package engine

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"vigilnet/internal/domain"
	"vigilnet/internal/events"
	"vigilnet/internal/store"
)

// Settings tab keys for the cycle singleton.
const (
	settingCurrentCycle = "current_cycle"
	settingCycleStart   = "cycle_start"
)

// FormatCycleID renders the in-universe coordinate for a cycle state at a
// given instant: "{cycle}.{days:02}.{hours:02}.{tenMinuteBlock}". A state
// with no start instant reads as the beginning of its cycle. A clock that
// appears to run backward clamps to zero elapsed.
func FormatCycleID(state domain.CycleState, now time.Time) string {
	start, err := time.Parse(time.RFC3339, state.Start)
	if state.Start == "" || err != nil {
		return fmt.Sprintf("%d.00.00.0", state.Current)
	}
	elapsed := int(now.Sub(start) / time.Minute)
	if elapsed < 0 {
		elapsed = 0
	}
	days := elapsed / 1440
	hours := (elapsed % 1440) / 60
	tenMin := (elapsed % 60) / 10
	return fmt.Sprintf("%d.%02d.%02d.%d", state.Current, days, hours, tenMin)
}

// CycleState loads the cycle singleton from the Settings tab. The second
// return reports whether a current_cycle row exists at all.
func (e Engine) CycleState(ctx context.Context) (domain.CycleState, bool, error) {
	rows, err := e.Store.ReadRows(ctx, store.TabSettings)
	if err != nil {
		return domain.CycleState{}, false, err
	}
	state := domain.CycleState{Current: 1}
	found := false
	for _, row := range rows {
		switch row.Record["key"] {
		case settingCurrentCycle:
			if n, err := strconv.Atoi(row.Record["value"]); err == nil && n > 0 {
				state.Current = n
			}
			found = true
		case settingCycleStart:
			state.Start = row.Record["value"]
		}
	}
	return state, found, nil
}

// CurrentCycleID returns the coordinate to stamp on records created now.
func (e Engine) CurrentCycleID(ctx context.Context) (string, error) {
	state, _, err := e.CycleState(ctx)
	if err != nil {
		return "", err
	}
	return FormatCycleID(state, e.now()), nil
}

// AdvanceCycle increments the cycle number and restarts the in-universe
// clock at now. Coordinates already stamped on existing records are never
// recomputed; only the current coordinate moves.
func (e Engine) AdvanceCycle(ctx context.Context, actorID string) (domain.CycleState, error) {
	rows, err := e.Store.ReadRows(ctx, store.TabSettings)
	if err != nil {
		return domain.CycleState{}, err
	}
	var cycleRef, startRef store.RowRef
	haveCycle, haveStart := false, false
	current := 0
	for _, row := range rows {
		switch row.Record["key"] {
		case settingCurrentCycle:
			cycleRef = row.Ref
			haveCycle = true
			if n, err := strconv.Atoi(row.Record["value"]); err == nil {
				current = n
			}
		case settingCycleStart:
			startRef = row.Ref
			haveStart = true
		}
	}
	if !haveCycle {
		return domain.CycleState{}, ErrNoCycleState
	}
	next := domain.CycleState{
		Current: current + 1,
		Start:   e.now().UTC().Format(time.RFC3339),
	}
	if haveStart {
		err = e.Store.BatchUpdateCells(ctx, store.TabSettings, []store.CellUpdate{
			{Ref: cycleRef, Field: "value", Value: strconv.Itoa(next.Current)},
			{Ref: startRef, Field: "value", Value: next.Start},
		})
	} else {
		err = e.Store.UpdateCell(ctx, store.TabSettings, cycleRef, "value", strconv.Itoa(next.Current))
		if err == nil {
			err = e.Store.AppendRow(ctx, store.TabSettings, store.Record{
				"key":   settingCycleStart,
				"value": next.Start,
			})
		}
	}
	if err != nil {
		return domain.CycleState{}, err
	}
	_ = e.Events.Append(ctx, "cycle.advanced", "cycle", strconv.Itoa(next.Current), actorID, events.EventPayload{
		"new_cycle": next.Current,
		"new_start": next.Start,
	})
	return next, nil
}
