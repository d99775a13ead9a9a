package engine

import (
	"sort"
	"strconv"
	"strings"

	"vigilnet/internal/domain"
)

// GroupQuestions structures flat per-option rows into one entry per
// distinct question number, sorted numerically ascending ("10" after
// "2"). The question text repeats on every option row; the first
// occurrence wins and later repeats are ignored, not validated. Options
// keep the order they were encountered in.
func GroupQuestions(rows []domain.OptionRow) []domain.Question {
	byNumber := map[int]*domain.Question{}
	var numbers []int
	for _, row := range rows {
		n, err := strconv.Atoi(strings.TrimSpace(row.QuestionNum))
		if err != nil {
			continue
		}
		q, ok := byNumber[n]
		if !ok {
			q = &domain.Question{Number: n, Text: row.QuestionText}
			byNumber[n] = q
			numbers = append(numbers, n)
		}
		q.Options = append(q.Options, domain.Option{
			ID:     row.OptionID,
			Text:   row.OptionText,
			Flavor: row.OptionFlavor,
			Image:  row.OptionImage,
		})
	}
	sort.Ints(numbers)
	out := make([]domain.Question, 0, len(numbers))
	for _, n := range numbers {
		out = append(out, *byNumber[n])
	}
	return out
}
