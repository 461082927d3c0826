package service

import (
	"strings"

	"github.com/questify/questify-backend/internal/model"
)

// ScoreOutcome is the result of grading one full submission.
type ScoreOutcome struct {
	Answers     []model.AnswerRecord
	Score       int
	TotalPoints int
	Percentage  float64
}

// ScoreAttempt grades a submission against the quiz's questions. Answers are
// index-aligned with the question order; missing trailing answers are graded
// as blank. Points are awarded full-or-zero per question.
func ScoreAttempt(questions []model.Question, answers []model.SubmittedAnswer) ScoreOutcome {
	out := ScoreOutcome{
		Answers: make([]model.AnswerRecord, 0, len(questions)),
	}

	for i, q := range questions {
		var submitted model.SubmittedAnswer
		if i < len(answers) {
			submitted = answers[i]
		}

		record := model.AnswerRecord{
			QuestionID:      q.ID,
			SelectedOptions: submitted.SelectedOptions,
			Answer:          submitted.Answer,
		}

		if gradeAnswer(q, submitted) {
			record.IsCorrect = true
			record.PointsEarned = q.Points
			out.Score += q.Points
		}

		out.TotalPoints += q.Points
		out.Answers = append(out.Answers, record)
	}

	if out.TotalPoints > 0 {
		out.Percentage = float64(out.Score) * 100 / float64(out.TotalPoints)
	}
	return out
}

// gradeAnswer decides correctness for a single question.
func gradeAnswer(q model.Question, submitted model.SubmittedAnswer) bool {
	switch q.QuestionType {
	case model.QuestionTypeMultipleChoice:
		return gradeMultipleChoice(q.Options, submitted.SelectedOptions)
	case model.QuestionTypeShortAnswer:
		return gradeShortAnswer(q.CorrectAnswer, submitted.Answer)
	default:
		return false
	}
}

// gradeMultipleChoice requires the selected option texts to match the correct
// option texts exactly as sets. A superset or subset of the correct options
// earns nothing.
func gradeMultipleChoice(options []model.Option, selected []string) bool {
	correct := make(map[string]struct{})
	for _, opt := range options {
		if opt.IsCorrect {
			correct[opt.Text] = struct{}{}
		}
	}
	if len(correct) == 0 {
		return false
	}

	picked := make(map[string]struct{}, len(selected))
	for _, text := range selected {
		picked[text] = struct{}{}
	}
	if len(picked) != len(correct) {
		return false
	}
	for text := range picked {
		if _, ok := correct[text]; !ok {
			return false
		}
	}
	return true
}

// gradeShortAnswer compares answers case-insensitively after trimming
// surrounding whitespace.
func gradeShortAnswer(correct, given string) bool {
	given = strings.TrimSpace(given)
	if given == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(correct), given)
}
