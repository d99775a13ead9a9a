package engine

import (
	"context"

	"vigilnet/internal/domain"
	"vigilnet/internal/events"
	"vigilnet/internal/store"
)

func pairKey(heroName, factionName string) string {
	return heroName + "|" + factionName
}

func (e Engine) heroNames(ctx context.Context) ([]string, error) {
	rows, err := e.Store.ReadRows(ctx, store.TabPlayers)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, row := range rows {
		if name := row.Record["hero_name"]; name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func (e Engine) factionNames(ctx context.Context) ([]string, error) {
	rows, err := e.Store.ReadRows(ctx, store.TabFactions)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, row := range rows {
		if name := row.Record["faction_name"]; name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func (e Engine) existingPairs(ctx context.Context) (map[string]store.Row, error) {
	rows, err := e.Store.ReadRows(ctx, store.TabReputation)
	if err != nil {
		return nil, err
	}
	pairs := make(map[string]store.Row, len(rows))
	for _, row := range rows {
		hero, faction := row.Record["hero_name"], row.Record["faction_name"]
		if hero != "" && faction != "" {
			pairs[pairKey(hero, faction)] = row
		}
	}
	return pairs, nil
}

// fillMissingPairs appends one neutral entry per (hero, faction) pair not
// already present. Existing entries, whatever their level, are left alone;
// calling this again with nothing new to add writes nothing.
func (e Engine) fillMissingPairs(ctx context.Context, heroes, factions []string) (int, error) {
	existing, err := e.existingPairs(ctx)
	if err != nil {
		return 0, err
	}
	added := 0
	for _, hero := range heroes {
		for _, faction := range factions {
			if _, ok := existing[pairKey(hero, faction)]; ok {
				continue
			}
			err := e.Store.AppendRow(ctx, store.TabReputation, store.Record{
				"hero_name":    hero,
				"faction_name": faction,
				"reputation":   string(domain.RepNeutral),
			})
			if err != nil {
				return added, err
			}
			added++
		}
	}
	return added, nil
}

// EnsureReputationForPlayer materializes a neutral entry for the hero
// against every known faction.
func (e Engine) EnsureReputationForPlayer(ctx context.Context, heroName string) (int, error) {
	if heroName == "" {
		return 0, invalidf("hero name is required")
	}
	factions, err := e.factionNames(ctx)
	if err != nil {
		return 0, err
	}
	return e.fillMissingPairs(ctx, []string{heroName}, factions)
}

// EnsureReputationForFaction materializes a neutral entry for every known
// hero against the faction.
func (e Engine) EnsureReputationForFaction(ctx context.Context, factionName string) (int, error) {
	if factionName == "" {
		return 0, invalidf("faction name is required")
	}
	heroes, err := e.heroNames(ctx)
	if err != nil {
		return 0, err
	}
	return e.fillMissingPairs(ctx, heroes, []string{factionName})
}

// SyncReputation materializes every missing (hero, faction) pair at
// neutral across the whole grid. Returns the number of entries added.
func (e Engine) SyncReputation(ctx context.Context) (int, error) {
	heroes, err := e.heroNames(ctx)
	if err != nil {
		return 0, err
	}
	factions, err := e.factionNames(ctx)
	if err != nil {
		return 0, err
	}
	return e.fillMissingPairs(ctx, heroes, factions)
}

// SetReputation is the DM's explicit adjustment of one pair. A pair the
// maintainer has not materialized yet is created at the given level.
func (e Engine) SetReputation(ctx context.Context, heroName, factionName string, level domain.RepLevel, actorID string) error {
	if heroName == "" || factionName == "" {
		return invalidf("hero name and faction name are required")
	}
	if _, ok := domain.ParseRepLevel(string(level)); !ok {
		return invalidf("unknown reputation level %q", level)
	}
	existing, err := e.existingPairs(ctx)
	if err != nil {
		return err
	}
	if row, ok := existing[pairKey(heroName, factionName)]; ok {
		err = e.Store.UpdateCell(ctx, store.TabReputation, row.Ref, "reputation", string(level))
	} else {
		err = e.Store.AppendRow(ctx, store.TabReputation, store.Record{
			"hero_name":    heroName,
			"faction_name": factionName,
			"reputation":   string(level),
		})
	}
	if err != nil {
		return err
	}
	_ = e.Events.Append(ctx, "reputation.set", "reputation", pairKey(heroName, factionName), actorID, events.EventPayload{
		"level": string(level),
	})
	return nil
}

// ReputationGrid returns every entry, in store order.
func (e Engine) ReputationGrid(ctx context.Context) ([]domain.ReputationEntry, error) {
	rows, err := e.Store.ReadRows(ctx, store.TabReputation)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ReputationEntry, 0, len(rows))
	for _, row := range rows {
		level, ok := domain.ParseRepLevel(row.Record["reputation"])
		if !ok {
			// Absence and garbage both read as neutral.
			level = domain.RepNeutral
		}
		out = append(out, domain.ReputationEntry{
			HeroName:    row.Record["hero_name"],
			FactionName: row.Record["faction_name"],
			Level:       level,
		})
	}
	return out, nil
}
