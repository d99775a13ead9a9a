// Package seed bootstraps an empty store the way the original setup
// scripts did: it writes the cycle singleton, a sample mission with its
// question rows, and the starter factions. Safe to run repeatedly; only
// empty tabs are written.
package seed

import (
	"context"
	"fmt"
	"time"

	"vigilnet/internal/store"
)

// Run seeds missing baseline data. Returns a short human summary of what
// was written.
func Run(ctx context.Context, st store.Store, now func() time.Time) ([]string, error) {
	if now == nil {
		now = time.Now
	}
	var done []string

	settings, err := st.ReadRows(ctx, store.TabSettings)
	if err != nil {
		return nil, err
	}
	if !hasSetting(settings, "current_cycle") {
		if err := st.AppendRow(ctx, store.TabSettings, store.Record{"key": "current_cycle", "value": "1"}); err != nil {
			return nil, err
		}
		if err := st.AppendRow(ctx, store.TabSettings, store.Record{
			"key": "cycle_start", "value": now().UTC().Format(time.RFC3339),
		}); err != nil {
			return nil, err
		}
		done = append(done, "settings: current_cycle=1, cycle_start=now")
	}

	missions, err := st.ReadRows(ctx, store.TabMissions)
	if err != nil {
		return nil, err
	}
	if len(missions) == 0 {
		if err := seedSampleMission(ctx, st); err != nil {
			return nil, err
		}
		done = append(done, "missions: sample mission m001 with 3 questions")
	}

	factions, err := st.ReadRows(ctx, store.TabFactions)
	if err != nil {
		return nil, err
	}
	if len(factions) == 0 {
		if err := seedFactions(ctx, st); err != nil {
			return nil, err
		}
		done = append(done, fmt.Sprintf("factions: %d starter factions", len(starterFactions)))
	}

	return done, nil
}

func hasSetting(rows []store.Row, key string) bool {
	for _, row := range rows {
		if row.Record["key"] == key {
			return true
		}
	}
	return false
}

func seedSampleMission(ctx context.Context, st store.Store) error {
	err := st.AppendRow(ctx, store.TabMissions, store.Record{
		"mission_id":  "m001",
		"title":       "The Repo Job",
		"description": "Mongrel needs a vehicle retrieved before the owner can move it. The job is off the books. You've got 4 hours.",
		"visible":     "yes",
		"cycle_id":    "1.00.00.0",
		"outcome_a_label":     "Played It Straight",
		"outcome_a_narrative": "You delivered the car and got paid. Mongrel barely looked up, but that's practically a handshake from him.",
		"outcome_a_changes":   "bank:+500",
		"outcome_b_label":     "Walked Away",
		"outcome_b_narrative": "You turned it down. Someone else picked up the call. Mongrel doesn't forget who said no.",
		"outcome_b_changes":   "reputation:mongrels-towing:negative",
	})
	if err != nil {
		return err
	}
	type optionSeed struct {
		num, text, id, opt, flavor, weight string
	}
	options := []optionSeed{
		{"1", "Mongrel calls. He needs a car brought in tonight. What do you do?", "1a", "Take the job", "Money is money.", "a"},
		{"1", "Mongrel calls. He needs a car brought in tonight. What do you do?", "1b", "Ask what you're walking into", "You want to know the risks.", "b"},
		{"2", "The address is in a rough part of town. You arrive after dark.", "2a", "Move fast and quiet", "No witnesses, no problems.", "a"},
		{"2", "The address is in a rough part of town. You arrive after dark.", "2b", "Take your time and scope it first", "Better safe than stuck.", "b"},
		{"3", "The car is there. But someone is asleep in the back seat.", "3a", "Take the car anyway", "Job's a job.", "a"},
		{"3", "The car is there. But someone is asleep in the back seat.", "3b", "Wake them up and tell them to go", "This just got complicated.", "b"},
	}
	for _, o := range options {
		err := st.AppendRow(ctx, store.TabQuestions, store.Record{
			"mission_id":    "m001",
			"question_num":  o.num,
			"question_text": o.text,
			"option_id":     o.id,
			"option_text":   o.opt,
			"option_flavor": o.flavor,
			"option_weight": o.weight,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

var starterFactions = []store.Record{
	{
		"faction_name":     "Streetview",
		"description":      "An off-the-books group of noir-inspired investigators. Their public face is the Streetview blog.",
		"power_multiplier": "1",
		"leader":           "Bloodhound",
	},
	{
		"faction_name":     "Mongrel's Towing",
		"description":      "A towing company that doubles as low-level bounty hunters and repo men.",
		"power_multiplier": "1",
		"leader":           "Mongrel",
	},
	{
		"faction_name":     "myHERO",
		"description":      "The officially sanctioned superhero organization.",
		"power_multiplier": "1",
	},
	{
		"faction_name":     "Wednesday Wealth Investor's Club",
		"description":      "A low-level investors club that meets on Wednesdays. Partly funded by Cornerstone Holdings.",
		"power_multiplier": "1",
	},
	{
		"faction_name":     "Cornerstone Holdings",
		"description":      "A powerful holding company operating behind the scenes; secret part-owner of Mongrel's Towing.",
		"power_multiplier": "2",
		"leader":           "Head Honcho",
	},
}

func seedFactions(ctx context.Context, st store.Store) error {
	for _, rec := range starterFactions {
		if err := st.AppendRow(ctx, store.TabFactions, rec); err != nil {
			return err
		}
	}
	return nil
}
