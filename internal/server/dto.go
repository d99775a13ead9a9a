package server

import (
	"vigilnet/internal/domain"
)

// Request payloads

type RegisterRequest struct {
	Username     string         `json:"username"`
	PasswordHash string         `json:"password_hash"`
	HeroName     string         `json:"hero_name"`
	Class        string         `json:"class"`
	Skills       map[string]int `json:"skills,omitempty"`
}

type LoginRequest struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
}

type SubmitMissionRequest struct {
	Answers []string `json:"answers"`
}

type ResolveSubmissionRequest struct {
	Override *string `json:"override,omitempty" enum:"a,b,c"`
	Resolved *bool   `json:"resolved,omitempty"`
}

type CreatePostRequest struct {
	Feed         string `json:"feed"`
	Title        string `json:"title,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	Body         string `json:"body"`
	PostedByType string `json:"posted_by_type,omitempty" enum:"character,faction,npc"`
}

type SendMessageRequest struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

type AddContactRequest struct {
	ContactName string `json:"contact_name"`
}

type SetReputationRequest struct {
	HeroName    string `json:"hero_name"`
	FactionName string `json:"faction_name"`
	Level       string `json:"level" enum:"hostile,negative,neutral,positive,ally"`
}

// Response payloads

type SessionResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	HeroName string `json:"hero_name"`
	Role     string `json:"role" enum:"player,dm"`
}

type HeroResponse struct {
	Username     string `json:"username"`
	HeroName     string `json:"hero_name"`
	Class        string `json:"class"`
	Faction      string `json:"faction"`
	Might        int    `json:"might"`
	Agility      int    `json:"agility"`
	Charm        int    `json:"charm"`
	Intuition    int    `json:"intuition"`
	Commerce     int    `json:"commerce"`
	Intelligence int    `json:"intelligence"`
	Followers    int    `json:"followers"`
	Bank         int    `json:"bank"`
	Authority    string `json:"positional_authority"`
	Clout        int    `json:"clout"`
}

type OutcomeResponse struct {
	Label     string `json:"label"`
	Narrative string `json:"narrative"`
	ImageURL  string `json:"image_url,omitempty"`
	Changes   string `json:"changes,omitempty"`
}

type MissionResponse struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	ImageURL         string           `json:"image_url,omitempty"`
	CycleID          string           `json:"cycle_id,omitempty"`
	State            string           `json:"state" enum:"available,submitted,resolved"`
	SubmittedCycleID string           `json:"submitted_cycle_id,omitempty"`
	Outcome          *OutcomeResponse `json:"outcome,omitempty"`
}

type OptionResponse struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Flavor string `json:"flavor,omitempty"`
}

type QuestionResponse struct {
	Number  int              `json:"number"`
	Text    string           `json:"text"`
	Options []OptionResponse `json:"options"`
}

type SubmissionResponse struct {
	ID            string   `json:"id"`
	Username      string   `json:"username"`
	HeroName      string   `json:"hero_name"`
	MissionID     string   `json:"mission_id"`
	Answers       []string `json:"answers"`
	OutcomeBucket string   `json:"outcome_bucket" enum:"a,b,c"`
	Override      string   `json:"override,omitempty" enum:"a,b,c"`
	Resolved      bool     `json:"resolved"`
	CycleID       string   `json:"cycle_id"`
	Timestamp     string   `json:"timestamp" format:"date-time"`
}

type CycleResponse struct {
	Current int    `json:"current"`
	Start   string `json:"start,omitempty" format:"date-time"`
	CycleID string `json:"cycle_id"`
}

type PostResponse struct {
	Feed         string `json:"feed"`
	PostedBy     string `json:"posted_by"`
	PostedByType string `json:"posted_by_type"`
	Title        string `json:"title,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	Body         string `json:"body"`
	Timestamp    string `json:"timestamp"`
	CycleID      string `json:"cycle_id"`
}

type MessageResponse struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Body      string `json:"body"`
	Timestamp string `json:"timestamp"`
	CycleID   string `json:"cycle_id"`
}

type ThreadResponse struct {
	Contact string          `json:"contact"`
	Latest  MessageResponse `json:"latest"`
	Count   int             `json:"count"`
}

type FactionResponse struct {
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	PowerMultiplier string `json:"power_multiplier,omitempty"`
	Leader          string `json:"leader,omitempty"`
}

type ReputationResponse struct {
	HeroName    string `json:"hero_name"`
	FactionName string `json:"faction_name"`
	Level       string `json:"level" enum:"hostile,negative,neutral,positive,ally"`
}

type SyncReputationResponse struct {
	Added int `json:"added"`
}

// Conversion helpers

func heroResponse(h domain.Hero) HeroResponse {
	return HeroResponse{
		Username:     h.Username,
		HeroName:     h.HeroName,
		Class:        h.Class,
		Faction:      h.Faction,
		Might:        h.Might,
		Agility:      h.Agility,
		Charm:        h.Charm,
		Intuition:    h.Intuition,
		Commerce:     h.Commerce,
		Intelligence: h.Intelligence,
		Followers:    h.Followers,
		Bank:         h.Bank,
		Authority:    h.Authority,
		Clout:        h.Clout,
	}
}

func outcomeResponse(o domain.Outcome) OutcomeResponse {
	return OutcomeResponse{
		Label:     o.Label,
		Narrative: o.Narrative,
		ImageURL:  o.ImageURL,
		Changes:   o.Changes,
	}
}

func missionResponse(v domain.MissionView) MissionResponse {
	res := MissionResponse{
		ID:               v.ID,
		Title:            v.Title,
		Description:      v.Description,
		ImageURL:         v.ImageURL,
		CycleID:          v.CycleID,
		State:            string(v.State),
		SubmittedCycleID: v.SubmittedCycleID,
	}
	if v.Outcome != nil {
		o := outcomeResponse(*v.Outcome)
		res.Outcome = &o
	}
	return res
}

func mapMissions(views []domain.MissionView) []MissionResponse {
	out := make([]MissionResponse, 0, len(views))
	for _, v := range views {
		out = append(out, missionResponse(v))
	}
	return out
}

func questionResponse(q domain.Question) QuestionResponse {
	opts := make([]OptionResponse, 0, len(q.Options))
	for _, o := range q.Options {
		opts = append(opts, OptionResponse{ID: o.ID, Text: o.Text, Flavor: o.Flavor})
	}
	return QuestionResponse{Number: q.Number, Text: q.Text, Options: opts}
}

func mapQuestions(qs []domain.Question) []QuestionResponse {
	out := make([]QuestionResponse, 0, len(qs))
	for _, q := range qs {
		out = append(out, questionResponse(q))
	}
	return out
}

func submissionResponse(s domain.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:            s.ID,
		Username:      s.Username,
		HeroName:      s.HeroName,
		MissionID:     s.MissionID,
		Answers:       nonNilSlice(s.Answers),
		OutcomeBucket: string(s.OutcomeBucket),
		Override:      string(s.Override),
		Resolved:      s.Resolved,
		CycleID:       s.CycleID,
		Timestamp:     s.Timestamp,
	}
}

func mapSubmissions(subs []domain.Submission) []SubmissionResponse {
	out := make([]SubmissionResponse, 0, len(subs))
	for _, s := range subs {
		out = append(out, submissionResponse(s))
	}
	return out
}

func postResponse(p domain.Post) PostResponse {
	return PostResponse{
		Feed:         p.Feed,
		PostedBy:     p.PostedBy,
		PostedByType: p.PostedByType,
		Title:        p.Title,
		ImageURL:     p.ImageURL,
		Body:         p.Body,
		Timestamp:    p.Timestamp,
		CycleID:      p.CycleID,
	}
}

func mapPosts(posts []domain.Post) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, postResponse(p))
	}
	return out
}

func messageResponse(m domain.Message) MessageResponse {
	return MessageResponse{
		From:      m.From,
		To:        m.To,
		Body:      m.Body,
		Timestamp: m.Timestamp,
		CycleID:   m.CycleID,
	}
}

func mapThreads(threads []domain.Thread) []ThreadResponse {
	out := make([]ThreadResponse, 0, len(threads))
	for _, t := range threads {
		out = append(out, ThreadResponse{
			Contact: t.Contact,
			Latest:  messageResponse(t.Latest),
			Count:   t.Count,
		})
	}
	return out
}

func mapMessages(msgs []domain.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageResponse(m))
	}
	return out
}

func factionResponse(f domain.Faction) FactionResponse {
	return FactionResponse{
		Name:            f.Name,
		Description:     f.Description,
		PowerMultiplier: f.PowerMultiplier,
		Leader:          f.Leader,
	}
}

func mapFactions(factions []domain.Faction) []FactionResponse {
	out := make([]FactionResponse, 0, len(factions))
	for _, f := range factions {
		out = append(out, factionResponse(f))
	}
	return out
}

func mapReputation(entries []domain.ReputationEntry) []ReputationResponse {
	out := make([]ReputationResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, ReputationResponse{
			HeroName:    e.HeroName,
			FactionName: e.FactionName,
			Level:       string(e.Level),
		})
	}
	return out
}

func nonNilSlice[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
