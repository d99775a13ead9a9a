package seed_test

import (
	"context"
	"testing"
	"time"

	"vigilnet/internal/db"
	"vigilnet/internal/migrate"
	"vigilnet/internal/seed"
	"vigilnet/internal/store"
)

func TestRunIsIdempotent(t *testing.T) {
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	st := &store.SQLite{DB: conn}
	ctx := context.Background()
	now := func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

	done, err := seed.Run(ctx, st, now)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if len(done) != 3 {
		t.Fatalf("first run seeded %v, want settings, missions and factions", done)
	}

	missions, _ := st.ReadRows(ctx, store.TabMissions)
	factions, _ := st.ReadRows(ctx, store.TabFactions)
	settings, _ := st.ReadRows(ctx, store.TabSettings)
	if len(missions) != 1 || len(factions) != 5 || len(settings) != 2 {
		t.Fatalf("counts after first run: missions=%d factions=%d settings=%d",
			len(missions), len(factions), len(settings))
	}

	done, err = seed.Run(ctx, st, now)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(done) != 0 {
		t.Fatalf("second run re-seeded: %v", done)
	}
	missions, _ = st.ReadRows(ctx, store.TabMissions)
	if len(missions) != 1 {
		t.Fatalf("missions duplicated: %d", len(missions))
	}
}
