package engine

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"vigilnet/internal/domain"
	"vigilnet/internal/events"
	"vigilnet/internal/store"
)

// maxAnswers matches the q1..q4 answer columns of the submissions tab.
const maxAnswers = 4

func missionFromRecord(rec store.Record) domain.Mission {
	m := domain.Mission{
		ID:          rec["mission_id"],
		Title:       rec["title"],
		Description: rec["description"],
		ImageURL:    rec["image_url"],
		Visible:     rec["visible"] == "yes",
		CycleID:     rec["cycle_id"],
		Outcomes:    map[domain.Bucket]domain.Outcome{},
	}
	for _, b := range []domain.Bucket{domain.BucketA, domain.BucketB, domain.BucketC} {
		prefix := "outcome_" + string(b) + "_"
		o := domain.Outcome{
			Label:     rec[prefix+"label"],
			Narrative: rec[prefix+"narrative"],
			ImageURL:  rec[prefix+"image"],
			Changes:   rec[prefix+"changes"],
		}
		if o.Label != "" || o.Narrative != "" {
			m.Outcomes[b] = o
		}
	}
	return m
}

func optionRowFromRecord(rec store.Record) domain.OptionRow {
	weight, _ := domain.ParseBucket(rec["option_weight"])
	return domain.OptionRow{
		MissionID:    rec["mission_id"],
		QuestionNum:  rec["question_num"],
		QuestionText: rec["question_text"],
		OptionID:     rec["option_id"],
		OptionText:   rec["option_text"],
		OptionImage:  rec["option_image"],
		OptionFlavor: rec["option_flavor"],
		Weight:       weight,
	}
}

func submissionFromRecord(rec store.Record) domain.Submission {
	bucket, _ := domain.ParseBucket(rec["outcome_bucket"])
	override, _ := domain.ParseBucket(rec["dm_override"])
	s := domain.Submission{
		ID:            rec["submission_id"],
		Username:      rec["username"],
		HeroName:      rec["hero_name"],
		MissionID:     rec["mission_id"],
		OutcomeBucket: bucket,
		Override:      override,
		Resolved:      rec["resolved"] == "yes",
		CycleID:       rec["cycle_id"],
		Timestamp:     rec["timestamp"],
	}
	for _, col := range []string{"q1_answer", "q2_answer", "q3_answer", "q4_answer"} {
		if v := rec[col]; v != "" {
			s.Answers = append(s.Answers, v)
		}
	}
	return s
}

func (e Engine) readMissions(ctx context.Context) ([]domain.Mission, error) {
	rows, err := e.Store.ReadRows(ctx, store.TabMissions)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Mission, 0, len(rows))
	for _, row := range rows {
		out = append(out, missionFromRecord(row.Record))
	}
	return out, nil
}

// visibleMission finds one mission by id. Invisible missions are
// indistinguishable from absent ones on the player-facing path.
func (e Engine) visibleMission(ctx context.Context, missionID string) (domain.Mission, error) {
	missions, err := e.readMissions(ctx)
	if err != nil {
		return domain.Mission{}, err
	}
	for _, m := range missions {
		if m.ID == missionID && m.Visible {
			return m, nil
		}
	}
	return domain.Mission{}, ErrNotFound
}

func (e Engine) readOptionRows(ctx context.Context, missionID string) ([]domain.OptionRow, error) {
	rows, err := e.Store.ReadRows(ctx, store.TabQuestions)
	if err != nil {
		return nil, err
	}
	var out []domain.OptionRow
	for _, row := range rows {
		if row.Record["mission_id"] == missionID {
			out = append(out, optionRowFromRecord(row.Record))
		}
	}
	return out, nil
}

func (e Engine) readSubmissions(ctx context.Context) ([]store.Row, error) {
	return e.Store.ReadRows(ctx, store.TabSubmissions)
}

// MissionQuestions returns a mission's questions for answering. Option
// weights never appear here: the player must not be able to see which
// option favors which outcome.
func (e Engine) MissionQuestions(ctx context.Context, missionID string) ([]domain.Question, error) {
	if missionID == "" {
		return nil, invalidf("mission id is required")
	}
	if _, err := e.visibleMission(ctx, missionID); err != nil {
		return nil, err
	}
	optionRows, err := e.readOptionRows(ctx, missionID)
	if err != nil {
		return nil, err
	}
	return GroupQuestions(optionRows), nil
}

// ListMissions joins every visible mission with the player's submission,
// if any. Submitted missions expose only the stamped cycle coordinate;
// resolved ones carry the outcome payload for the effective bucket.
func (e Engine) ListMissions(ctx context.Context, username string) ([]domain.MissionView, error) {
	if username == "" {
		return nil, invalidf("username is required")
	}
	missions, err := e.readMissions(ctx)
	if err != nil {
		return nil, err
	}
	subRows, err := e.readSubmissions(ctx)
	if err != nil {
		return nil, err
	}
	mine := map[string]domain.Submission{}
	for _, row := range subRows {
		s := submissionFromRecord(row.Record)
		if strings.EqualFold(s.Username, username) {
			mine[s.MissionID] = s
		}
	}
	views := make([]domain.MissionView, 0, len(missions))
	for _, m := range missions {
		if !m.Visible {
			continue
		}
		view := domain.MissionView{
			ID:          m.ID,
			Title:       m.Title,
			Description: m.Description,
			ImageURL:    m.ImageURL,
			CycleID:     m.CycleID,
			State:       domain.MissionAvailable,
		}
		if sub, ok := mine[m.ID]; ok {
			view.State = domain.MissionSubmitted
			view.SubmittedCycleID = sub.CycleID
			if sub.Resolved {
				view.State = domain.MissionResolved
				// An outcome the editor never authored degrades to an
				// empty payload rather than failing the whole list.
				outcome := m.Outcomes[sub.EffectiveBucket()]
				view.Outcome = &outcome
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// decideBucket picks the winning outcome from per-bucket answer counts.
// The default is a; b wins only by strictly beating a while at least
// tying c; c wins only by strictly beating both. b takes the b/c tie.
func decideBucket(a, b, c int) domain.Bucket {
	switch {
	case b > a && b >= c:
		return domain.BucketB
	case c > a && c > b:
		return domain.BucketC
	default:
		return domain.BucketA
	}
}

// SubmitOptions are the parameters of one mission submission.
type SubmitOptions struct {
	Username  string
	HeroName  string
	MissionID string
	// Answers is the chosen option id per question, in question order.
	Answers []string
}

// SubmitMission records a player's answer sheet exactly once and computes
// its outcome bucket. The duplicate check reads existing submissions
// immediately before the append; the pair is not atomic against the
// store, which is accepted for this game's cadence.
func (e Engine) SubmitMission(ctx context.Context, opts SubmitOptions) (domain.Submission, error) {
	if opts.Username == "" || opts.HeroName == "" || opts.MissionID == "" {
		return domain.Submission{}, invalidf("username, hero name and mission id are required")
	}
	if len(opts.Answers) == 0 {
		return domain.Submission{}, invalidf("at least one answer is required")
	}
	if len(opts.Answers) > maxAnswers {
		return domain.Submission{}, invalidf("at most %d answers are allowed", maxAnswers)
	}
	if _, err := e.visibleMission(ctx, opts.MissionID); err != nil {
		return domain.Submission{}, err
	}
	optionRows, err := e.readOptionRows(ctx, opts.MissionID)
	if err != nil {
		return domain.Submission{}, err
	}
	if len(optionRows) == 0 {
		return domain.Submission{}, invalidf("mission %s has no questions", opts.MissionID)
	}

	subRows, err := e.readSubmissions(ctx)
	if err != nil {
		return domain.Submission{}, err
	}
	for _, row := range subRows {
		if row.Record["mission_id"] == opts.MissionID &&
			strings.EqualFold(row.Record["username"], opts.Username) {
			return domain.Submission{}, ErrDuplicateSubmission
		}
	}

	weights := map[string]domain.Bucket{}
	for _, opt := range optionRows {
		weights[opt.OptionID] = opt.Weight
	}
	counts := map[domain.Bucket]int{}
	for _, answer := range opts.Answers {
		// An answer with no matching weight contributes to no bucket.
		counts[weights[answer]]++
	}
	bucket := decideBucket(counts[domain.BucketA], counts[domain.BucketB], counts[domain.BucketC])

	cycleID, err := e.CurrentCycleID(ctx)
	if err != nil {
		return domain.Submission{}, err
	}
	sub := domain.Submission{
		ID:            uuid.New().String(),
		Username:      opts.Username,
		HeroName:      opts.HeroName,
		MissionID:     opts.MissionID,
		Answers:       opts.Answers,
		OutcomeBucket: bucket,
		Resolved:      false,
		CycleID:       cycleID,
		Timestamp:     e.now().UTC().Format(time.RFC3339),
	}
	rec := store.Record{
		"submission_id":  sub.ID,
		"username":       sub.Username,
		"hero_name":      sub.HeroName,
		"mission_id":     sub.MissionID,
		"outcome_bucket": string(sub.OutcomeBucket),
		"dm_override":    "",
		"resolved":       "no",
		"cycle_id":       sub.CycleID,
		"timestamp":      sub.Timestamp,
	}
	answerCols := []string{"q1_answer", "q2_answer", "q3_answer", "q4_answer"}
	for i, col := range answerCols {
		if i < len(sub.Answers) {
			rec[col] = sub.Answers[i]
		} else {
			rec[col] = ""
		}
	}
	if err := e.Store.AppendRow(ctx, store.TabSubmissions, rec); err != nil {
		return domain.Submission{}, err
	}
	_ = e.Events.Append(ctx, "mission.submitted", "submission", sub.ID, sub.Username, events.EventPayload{
		"mission_id": sub.MissionID,
		"bucket":     string(sub.OutcomeBucket),
		"cycle_id":   sub.CycleID,
	})
	return sub, nil
}

// ResolveOptions carries the fields a DM may change on a submission. Nil
// fields stay untouched; answers are immutable here by construction.
type ResolveOptions struct {
	SubmissionID string
	Override     *domain.Bucket
	Resolved     *bool
	ActorID      string
}

// ResolveSubmission sets or clears the DM override and flips the resolved
// flag. Idempotent: applying the same values twice is a no-op the second
// time.
func (e Engine) ResolveSubmission(ctx context.Context, opts ResolveOptions) (domain.Submission, error) {
	if opts.SubmissionID == "" {
		return domain.Submission{}, invalidf("submission id is required")
	}
	subRows, err := e.readSubmissions(ctx)
	if err != nil {
		return domain.Submission{}, err
	}
	var found *store.Row
	for i := range subRows {
		if subRows[i].Record["submission_id"] == opts.SubmissionID {
			found = &subRows[i]
			break
		}
	}
	if found == nil {
		return domain.Submission{}, ErrNotFound
	}
	var updates []store.CellUpdate
	if opts.Override != nil {
		updates = append(updates, store.CellUpdate{
			Ref: found.Ref, Field: "dm_override", Value: string(*opts.Override),
		})
		found.Record["dm_override"] = string(*opts.Override)
	}
	if opts.Resolved != nil {
		v := "no"
		if *opts.Resolved {
			v = "yes"
		}
		updates = append(updates, store.CellUpdate{Ref: found.Ref, Field: "resolved", Value: v})
		found.Record["resolved"] = v
	}
	if len(updates) > 0 {
		if err := e.Store.BatchUpdateCells(ctx, store.TabSubmissions, updates); err != nil {
			return domain.Submission{}, err
		}
		_ = e.Events.Append(ctx, "mission.resolved", "submission", opts.SubmissionID, opts.ActorID, events.EventPayload{
			"dm_override": found.Record["dm_override"],
			"resolved":    found.Record["resolved"],
		})
	}
	return submissionFromRecord(found.Record), nil
}

// ListSubmissions returns every submission, for the DM review surface.
func (e Engine) ListSubmissions(ctx context.Context) ([]domain.Submission, error) {
	subRows, err := e.readSubmissions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Submission, 0, len(subRows))
	for _, row := range subRows {
		out = append(out, submissionFromRecord(row.Record))
	}
	return out, nil
}
