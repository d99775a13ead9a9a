package engine

import (
	"context"
	"strings"

	"vigilnet/internal/domain"
	"vigilnet/internal/store"
)

func factionFromRecord(rec store.Record) domain.Faction {
	return domain.Faction{
		Name:            rec["faction_name"],
		Description:     rec["description"],
		PowerMultiplier: rec["power_multiplier"],
		Leader:          rec["leader"],
	}
}

func (e Engine) ListFactions(ctx context.Context) ([]domain.Faction, error) {
	rows, err := e.Store.ReadRows(ctx, store.TabFactions)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Faction, 0, len(rows))
	for _, row := range rows {
		if row.Record["faction_name"] == "" {
			continue
		}
		out = append(out, factionFromRecord(row.Record))
	}
	return out, nil
}

func (e Engine) GetFaction(ctx context.Context, name string) (domain.Faction, error) {
	if name == "" {
		return domain.Faction{}, invalidf("faction name is required")
	}
	factions, err := e.ListFactions(ctx)
	if err != nil {
		return domain.Faction{}, err
	}
	for _, f := range factions {
		if strings.EqualFold(f.Name, name) {
			return f, nil
		}
	}
	return domain.Faction{}, ErrNotFound
}
