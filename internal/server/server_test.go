package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"vigilnet/internal/config"
	"vigilnet/internal/db"
	"vigilnet/internal/engine"
	"vigilnet/internal/migrate"
	"vigilnet/internal/store"
)

type testServer struct {
	URL    string
	Store  store.Store
	client *http.Client
	close  func()
}

func (s *testServer) Client() *http.Client { return s.client }
func (s *testServer) Close()               { s.close() }

func newTestServer(t *testing.T) (*testServer, func()) {
	t.Helper()
	workspace := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	cfg := config.Default()
	cfg.DMs = []string{"gm"}
	st := &store.SQLite{DB: conn}
	e := engine.New(st, cfg)
	e.Now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

	ctx := context.Background()
	seedRows := []struct {
		tab string
		rec store.Record
	}{
		{store.TabSettings, store.Record{"key": "current_cycle", "value": "1"}},
		{store.TabSettings, store.Record{"key": "cycle_start", "value": "2024-03-01T00:00:00Z"}},
		{store.TabFactions, store.Record{"faction_name": "Streetview", "leader": "Bloodhound"}},
		{store.TabMissions, store.Record{
			"mission_id": "m1", "title": "The Repo Job", "description": "Bring the car in.",
			"visible": "yes", "cycle_id": "1.00.00.0",
			"outcome_a_label": "Played It Straight", "outcome_a_narrative": "Paid in full.",
			"outcome_b_label": "Walked Away", "outcome_b_narrative": "Someone else took it.",
		}},
	}
	for _, s := range seedRows {
		if err := st.AppendRow(ctx, s.tab, s.rec); err != nil {
			t.Fatalf("seed %s: %v", s.tab, err)
		}
	}
	options := []struct{ num, id, weight string }{
		{"1", "1a", "a"}, {"1", "1b", "b"},
		{"2", "2a", "a"}, {"2", "2b", "b"},
	}
	for _, o := range options {
		err := st.AppendRow(ctx, store.TabQuestions, store.Record{
			"mission_id": "m1", "question_num": o.num, "question_text": "Q" + o.num,
			"option_id": o.id, "option_text": "Option " + o.id, "option_weight": o.weight,
		})
		if err != nil {
			t.Fatalf("seed option: %v", err)
		}
	}

	handler, err := New(Config{Engine: e, BasePath: "/v0", Auth: AuthConfig{JWTSecret: "test-secret"}})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &http.Server{Handler: handler}
	go srv.Serve(ln)
	testSrv := &testServer{
		URL:    "http://" + ln.Addr().String(),
		Store:  st,
		client: &http.Client{},
		close: func() {
			srv.Shutdown(context.Background())
			ln.Close()
			conn.Close()
		},
	}
	return testSrv, func() { testSrv.Close() }
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, data
}

func registerPlayer(t *testing.T, srv *testServer, username, heroName string) SessionResponse {
	t.Helper()
	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/auth/register", map[string]any{
		"username":      username,
		"password_hash": engine.HashPassword("secret"),
		"hero_name":     heroName,
		"class":         "Hero",
	}, nil)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("register status %d: %s", res.StatusCode, string(data))
	}
	var session SessionResponse
	if err := json.Unmarshal(data, &session); err != nil {
		t.Fatalf("unmarshal session: %v", err)
	}
	if session.Token == "" {
		t.Fatalf("register returned no token")
	}
	return session
}

func bearer(session SessionResponse) map[string]string {
	return map[string]string{"Authorization": "Bearer " + session.Token}
}

func TestAuthRequired(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()

	res, _ := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/health", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("health status %d", res.StatusCode)
	}
	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/missions", nil, nil)
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status %d: %s", res.StatusCode, string(data))
	}
	res, _ = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/missions", nil, map[string]string{
		"Authorization": "Bearer not-a-token",
	})
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad token status %d", res.StatusCode)
	}
}

func TestRegisterLoginAndHero(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	session := registerPlayer(t, srv, "alice", "Nightjar")
	if session.Role != "player" {
		t.Fatalf("role = %q, want player", session.Role)
	}

	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/auth/login", map[string]any{
		"username":      "ALICE",
		"password_hash": engine.HashPassword("secret"),
	}, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("login status %d: %s", res.StatusCode, string(data))
	}

	res, data = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/auth/login", map[string]any{
		"username":      "alice",
		"password_hash": engine.HashPassword("wrong"),
	}, nil)
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login status %d: %s", res.StatusCode, string(data))
	}

	res, data = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/hero", nil, bearer(session))
	if res.StatusCode != http.StatusOK {
		t.Fatalf("hero status %d: %s", res.StatusCode, string(data))
	}
	var hero HeroResponse
	if err := json.Unmarshal(data, &hero); err != nil {
		t.Fatalf("unmarshal hero: %v", err)
	}
	if hero.HeroName != "Nightjar" || hero.Bank != 3000 {
		t.Fatalf("hero = %+v", hero)
	}

	res, data = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/auth/register", map[string]any{
		"username":      "alice",
		"password_hash": "x",
		"hero_name":     "Dup",
	}, nil)
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate register status %d: %s", res.StatusCode, string(data))
	}
}

func TestMissionSubmitAndResolveFlow(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	player := registerPlayer(t, srv, "alice", "Nightjar")
	dm := registerPlayer(t, srv, "gm", "Overwatch")
	if dm.Role != "dm" {
		t.Fatalf("dm role = %q", dm.Role)
	}

	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/missions/m1/questions", nil, bearer(player))
	if res.StatusCode != http.StatusOK {
		t.Fatalf("questions status %d: %s", res.StatusCode, string(data))
	}
	var questions []QuestionResponse
	if err := json.Unmarshal(data, &questions); err != nil {
		t.Fatalf("unmarshal questions: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(questions))
	}
	// Raw payload must never mention option weights.
	if bytes.Contains(data, []byte("weight")) {
		t.Fatalf("questions payload leaks weights: %s", string(data))
	}

	res, data = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/missions/m1/submissions", map[string]any{
		"answers": []string{"1b", "2b"},
	}, bearer(player))
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("submit status %d: %s", res.StatusCode, string(data))
	}
	var sub SubmissionResponse
	if err := json.Unmarshal(data, &sub); err != nil {
		t.Fatalf("unmarshal submission: %v", err)
	}
	if sub.OutcomeBucket != "b" {
		t.Fatalf("bucket = %q, want b", sub.OutcomeBucket)
	}

	res, data = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/missions/m1/submissions", map[string]any{
		"answers": []string{"1a", "2a"},
	}, bearer(player))
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate submit status %d: %s", res.StatusCode, string(data))
	}

	// DM surface is closed to players.
	res, _ = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/dm/submissions", nil, bearer(player))
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("player on dm route status %d", res.StatusCode)
	}

	res, data = doJSON(t, srv.Client(), http.MethodPatch, srv.URL+"/v0/dm/submissions/"+sub.ID, map[string]any{
		"override": "a",
		"resolved": true,
	}, bearer(dm))
	if res.StatusCode != http.StatusOK {
		t.Fatalf("resolve status %d: %s", res.StatusCode, string(data))
	}
	var resolved SubmissionResponse
	if err := json.Unmarshal(data, &resolved); err != nil {
		t.Fatalf("unmarshal resolved: %v", err)
	}
	if resolved.Override != "a" || !resolved.Resolved {
		t.Fatalf("resolved = %+v", resolved)
	}

	res, data = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/missions", nil, bearer(player))
	if res.StatusCode != http.StatusOK {
		t.Fatalf("missions status %d: %s", res.StatusCode, string(data))
	}
	var missions []MissionResponse
	if err := json.Unmarshal(data, &missions); err != nil {
		t.Fatalf("unmarshal missions: %v", err)
	}
	if len(missions) != 1 || missions[0].State != "resolved" {
		t.Fatalf("missions = %+v", missions)
	}
	if missions[0].Outcome == nil || missions[0].Outcome.Label != "Played It Straight" {
		t.Fatalf("outcome = %+v, want the override's payload", missions[0].Outcome)
	}
}

func TestDMCycleAndReputation(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	dm := registerPlayer(t, srv, "gm", "Overwatch")

	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/dm/cycle", nil, bearer(dm))
	if res.StatusCode != http.StatusOK {
		t.Fatalf("cycle status %d: %s", res.StatusCode, string(data))
	}
	var cycle CycleResponse
	if err := json.Unmarshal(data, &cycle); err != nil {
		t.Fatalf("unmarshal cycle: %v", err)
	}
	if cycle.Current != 1 || cycle.CycleID != "1.00.12.0" {
		t.Fatalf("cycle = %+v", cycle)
	}

	res, data = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/dm/cycle/advance", nil, bearer(dm))
	if res.StatusCode != http.StatusOK {
		t.Fatalf("advance status %d: %s", res.StatusCode, string(data))
	}
	_ = json.Unmarshal(data, &cycle)
	if cycle.Current != 2 || cycle.CycleID != "2.00.00.0" {
		t.Fatalf("advanced cycle = %+v", cycle)
	}

	// Registration materialized the hero against the seeded faction.
	res, data = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/dm/reputation", nil, bearer(dm))
	if res.StatusCode != http.StatusOK {
		t.Fatalf("grid status %d: %s", res.StatusCode, string(data))
	}
	var grid []ReputationResponse
	if err := json.Unmarshal(data, &grid); err != nil {
		t.Fatalf("unmarshal grid: %v", err)
	}
	if len(grid) != 1 || grid[0].Level != "neutral" {
		t.Fatalf("grid = %+v", grid)
	}

	res, data = doJSON(t, srv.Client(), http.MethodPut, srv.URL+"/v0/dm/reputation", map[string]any{
		"hero_name":    "Overwatch",
		"faction_name": "Streetview",
		"level":        "ally",
	}, bearer(dm))
	if res.StatusCode != http.StatusOK {
		t.Fatalf("set status %d: %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/dm/reputation", nil, bearer(dm))
	_ = json.Unmarshal(data, &grid)
	if len(grid) != 1 || grid[0].Level != "ally" {
		t.Fatalf("grid after set = %+v", grid)
	}
}

func TestFeedsAndMessagesOverHTTP(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	alice := registerPlayer(t, srv, "alice", "Nightjar")
	bob := registerPlayer(t, srv, "bob", "Bloodhound")

	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/posts", map[string]any{
		"feed":  "streetview",
		"title": "Docks",
		"body":  "Something is off at the docks.",
	}, bearer(alice))
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("post status %d: %s", res.StatusCode, string(data))
	}
	var post PostResponse
	_ = json.Unmarshal(data, &post)
	if post.PostedBy != "Nightjar" || post.CycleID == "" {
		t.Fatalf("post = %+v", post)
	}

	res, data = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/posts", map[string]any{
		"feed": "bliink",
		"body": "no image",
	}, bearer(alice))
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("bliink without image status %d: %s", res.StatusCode, string(data))
	}

	res, data = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/feeds/streetview", nil, bearer(bob))
	if res.StatusCode != http.StatusOK {
		t.Fatalf("feed status %d: %s", res.StatusCode, string(data))
	}
	var posts []PostResponse
	_ = json.Unmarshal(data, &posts)
	if len(posts) != 1 {
		t.Fatalf("feed = %+v", posts)
	}

	res, data = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/messages", map[string]any{
		"to":   "Bloodhound",
		"body": "Got a lead.",
	}, bearer(alice))
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("message status %d: %s", res.StatusCode, string(data))
	}

	res, data = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/inbox", nil, bearer(bob))
	if res.StatusCode != http.StatusOK {
		t.Fatalf("inbox status %d: %s", res.StatusCode, string(data))
	}
	var threads []ThreadResponse
	_ = json.Unmarshal(data, &threads)
	if len(threads) != 1 || threads[0].Contact != "Nightjar" || threads[0].Count != 1 {
		t.Fatalf("threads = %+v", threads)
	}

	res, data = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/threads/Nightjar", nil, bearer(bob))
	if res.StatusCode != http.StatusOK {
		t.Fatalf("thread status %d: %s", res.StatusCode, string(data))
	}
	var msgs []MessageResponse
	_ = json.Unmarshal(data, &msgs)
	if len(msgs) != 1 || msgs[0].Body != "Got a lead." {
		t.Fatalf("thread = %+v", msgs)
	}
}
