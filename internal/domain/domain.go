package domain

// Bucket is one of the three outcome classes a mission submission can
// resolve to. The zero value means "no bucket" (e.g. an unset override).
type Bucket string

const (
	BucketNone Bucket = ""
	BucketA    Bucket = "a"
	BucketB    Bucket = "b"
	BucketC    Bucket = "c"
)

// ParseBucket accepts "a", "b", "c" or the empty string.
func ParseBucket(s string) (Bucket, bool) {
	switch Bucket(s) {
	case BucketNone, BucketA, BucketB, BucketC:
		return Bucket(s), true
	}
	return BucketNone, false
}

// RepLevel is the five-step reputation scale between a hero and a faction.
type RepLevel string

const (
	RepHostile  RepLevel = "hostile"
	RepNegative RepLevel = "negative"
	RepNeutral  RepLevel = "neutral"
	RepPositive RepLevel = "positive"
	RepAlly     RepLevel = "ally"
)

func ParseRepLevel(s string) (RepLevel, bool) {
	switch RepLevel(s) {
	case RepHostile, RepNegative, RepNeutral, RepPositive, RepAlly:
		return RepLevel(s), true
	}
	return "", false
}

// MissionState is the per-player lifecycle state of a mission.
type MissionState string

const (
	MissionAvailable MissionState = "available"
	MissionSubmitted MissionState = "submitted"
	MissionResolved  MissionState = "resolved"
)

// Outcome is one authored ending of a mission.
type Outcome struct {
	Label     string `json:"label"`
	Narrative string `json:"narrative"`
	ImageURL  string `json:"image_url,omitempty"`
	// Changes is a free-form directive string (e.g. "bank:+500") applied
	// by the DM out of band; never interpreted here.
	Changes string `json:"changes,omitempty"`
}

type Mission struct {
	ID          string             `json:"mission_id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	ImageURL    string             `json:"image_url,omitempty"`
	Visible     bool               `json:"visible"`
	CycleID     string             `json:"cycle_id"`
	Outcomes    map[Bucket]Outcome `json:"-"`
}

// MissionView is a mission joined with one player's submission state.
type MissionView struct {
	ID          string       `json:"mission_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	ImageURL    string       `json:"image_url,omitempty"`
	CycleID     string       `json:"cycle_id,omitempty"`
	State       MissionState `json:"state"`
	// SubmittedCycleID is set for submitted and resolved missions.
	SubmittedCycleID string `json:"submitted_cycle_id,omitempty"`
	// Outcome is set only for resolved missions, for the effective bucket.
	Outcome *Outcome `json:"outcome,omitempty"`
}

// OptionRow is one raw row of the MissionQuestions tab: a single answer
// option plus the question it belongs to. The question text repeats on
// every option row of the same question.
type OptionRow struct {
	MissionID    string
	QuestionNum  string
	QuestionText string
	OptionID     string
	OptionText   string
	OptionImage  string
	OptionFlavor string
	Weight       Bucket
}

// Option is the player-facing view of an answer option. It deliberately
// has no weight field: the weight decides the outcome and must never be
// observable before resolution.
type Option struct {
	ID     string `json:"option_id"`
	Text   string `json:"text"`
	Flavor string `json:"flavor,omitempty"`
	Image  string `json:"image,omitempty"`
}

type Question struct {
	Number  int      `json:"number"`
	Text    string   `json:"text"`
	Options []Option `json:"options"`
}

// Submission is one player's answer sheet for one mission. Answers are
// immutable after creation; only Override and Resolved may change.
type Submission struct {
	ID            string   `json:"submission_id"`
	Username      string   `json:"username"`
	HeroName      string   `json:"hero_name"`
	MissionID     string   `json:"mission_id"`
	Answers       []string `json:"answers"`
	OutcomeBucket Bucket   `json:"outcome_bucket"`
	Override      Bucket   `json:"dm_override,omitempty"`
	Resolved      bool     `json:"resolved"`
	CycleID       string   `json:"cycle_id"`
	Timestamp     string   `json:"timestamp"`
}

// EffectiveBucket is the override when set, otherwise the computed bucket.
func (s Submission) EffectiveBucket() Bucket {
	if s.Override != BucketNone {
		return s.Override
	}
	return s.OutcomeBucket
}

// CycleState is the game's singleton in-universe clock epoch.
type CycleState struct {
	Current int    `json:"current_cycle"`
	Start   string `json:"cycle_start"` // RFC3339; empty if never set
}

type ReputationEntry struct {
	HeroName    string   `json:"hero_name"`
	FactionName string   `json:"faction_name"`
	Level       RepLevel `json:"reputation"`
}

type Faction struct {
	Name            string `json:"faction_name"`
	Description     string `json:"description"`
	PowerMultiplier string `json:"power_multiplier,omitempty"`
	Leader          string `json:"leader,omitempty"`
}

// Hero is a player's character sheet, without the password hash.
type Hero struct {
	Username     string `json:"username"`
	HeroName     string `json:"hero_name"`
	Class        string `json:"class"`
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
	Faction      string `json:"faction"`
}

type Post struct {
	Feed         string `json:"feed"`
	PostedBy     string `json:"posted_by"`
	PostedByType string `json:"posted_by_type"`
	Title        string `json:"title,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	Body         string `json:"body"`
	Timestamp    string `json:"timestamp"`
	CycleID      string `json:"cycle_id"`
}

type Message struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Body      string `json:"body"`
	Timestamp string `json:"timestamp"`
	CycleID   string `json:"cycle_id"`
}

// Thread summarizes a hero's conversation with one counterpart.
type Thread struct {
	Contact string  `json:"contact"`
	Latest  Message `json:"latest"`
	Count   int     `json:"count"`
}
