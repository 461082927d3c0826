package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/questify/questify-backend/internal/model"
)

func mcQuestion(points int, options ...model.Option) model.Question {
	return model.Question{
		ID:           uuid.New(),
		QuestionType: model.QuestionTypeMultipleChoice,
		Options:      options,
		Points:       points,
	}
}

func saQuestion(points int, answer string) model.Question {
	return model.Question{
		ID:            uuid.New(),
		QuestionType:  model.QuestionTypeShortAnswer,
		CorrectAnswer: answer,
		Points:        points,
	}
}

func TestScoreMultipleChoiceSetMatch(t *testing.T) {
	question := mcQuestion(5,
		model.Option{Text: "Mercury", IsCorrect: true},
		model.Option{Text: "Venus", IsCorrect: true},
		model.Option{Text: "Pluto"},
		model.Option{Text: "Ceres"},
	)

	cases := []struct {
		name     string
		selected []string
		correct  bool
	}{
		{"exact match", []string{"Mercury", "Venus"}, true},
		{"order does not matter", []string{"Venus", "Mercury"}, true},
		{"duplicate selections collapse", []string{"Mercury", "Mercury", "Venus"}, true},
		{"subset earns nothing", []string{"Mercury"}, false},
		{"superset earns nothing", []string{"Mercury", "Venus", "Pluto"}, false},
		{"disjoint earns nothing", []string{"Pluto", "Ceres"}, false},
		{"empty earns nothing", nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := ScoreAttempt([]model.Question{question}, []model.SubmittedAnswer{{SelectedOptions: tc.selected}})
			if out.Answers[0].IsCorrect != tc.correct {
				t.Fatalf("expected correct=%v for %v", tc.correct, tc.selected)
			}
			wantPoints := 0
			if tc.correct {
				wantPoints = 5
			}
			if out.Answers[0].PointsEarned != wantPoints {
				t.Fatalf("expected %d points, got %d", wantPoints, out.Answers[0].PointsEarned)
			}
		})
	}
}

func TestScoreShortAnswerCaseInsensitive(t *testing.T) {
	question := saQuestion(3, "Paris")

	cases := []struct {
		answer  string
		correct bool
	}{
		{"Paris", true},
		{"paris", true},
		{"PARIS", true},
		{"  paris  ", true},
		{"Pariss", false},
		{"", false},
	}

	for _, tc := range cases {
		out := ScoreAttempt([]model.Question{question}, []model.SubmittedAnswer{{Answer: tc.answer}})
		if out.Answers[0].IsCorrect != tc.correct {
			t.Fatalf("answer %q: expected correct=%v", tc.answer, tc.correct)
		}
	}
}

func TestScorePercentageFullOrZero(t *testing.T) {
	questions := []model.Question{
		mcQuestion(4, model.Option{Text: "a", IsCorrect: true}, model.Option{Text: "b"}),
		saQuestion(6, "ten"),
		saQuestion(10, "missed"),
	}
	answers := []model.SubmittedAnswer{
		{SelectedOptions: []string{"a"}},
		{Answer: "TEN"},
		{Answer: "wrong"},
	}

	out := ScoreAttempt(questions, answers)
	if out.Score != 10 {
		t.Fatalf("expected score 10, got %d", out.Score)
	}
	if out.TotalPoints != 20 {
		t.Fatalf("expected total 20, got %d", out.TotalPoints)
	}
	if out.Percentage != 50 {
		t.Fatalf("expected 50 percent, got %v", out.Percentage)
	}
}

func TestScoreMissingTrailingAnswers(t *testing.T) {
	questions := []model.Question{
		saQuestion(2, "yes"),
		saQuestion(2, "no"),
	}

	out := ScoreAttempt(questions, []model.SubmittedAnswer{{Answer: "yes"}})
	if len(out.Answers) != 2 {
		t.Fatalf("expected 2 answer records, got %d", len(out.Answers))
	}
	if !out.Answers[0].IsCorrect || out.Answers[1].IsCorrect {
		t.Fatalf("expected only first answer correct: %+v", out.Answers)
	}
	if out.Score != 2 {
		t.Fatalf("expected score 2, got %d", out.Score)
	}
}

func TestScoreZeroTotalPoints(t *testing.T) {
	out := ScoreAttempt(nil, nil)
	if out.Percentage != 0 {
		t.Fatalf("expected 0 percent for empty quiz, got %v", out.Percentage)
	}
	if out.Score != 0 || out.TotalPoints != 0 {
		t.Fatalf("expected zero score and total, got %d/%d", out.Score, out.TotalPoints)
	}
}

func TestScoreNoAnswerKeyNeverCorrect(t *testing.T) {
	// A multiple-choice question with no options flagged correct cannot be
	// earned even by an empty selection.
	question := mcQuestion(5, model.Option{Text: "a"}, model.Option{Text: "b"})
	out := ScoreAttempt([]model.Question{question}, []model.SubmittedAnswer{{}})
	if out.Answers[0].IsCorrect {
		t.Fatal("expected no credit when no option is marked correct")
	}
}
