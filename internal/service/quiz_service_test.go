package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/questify/questify-backend/internal/model"
)

func validMC() model.CreateQuestionRequest {
	return model.CreateQuestionRequest{
		QuestionText: "Which planet is closest to the sun?",
		QuestionType: string(model.QuestionTypeMultipleChoice),
		Options: []model.CreateOptionInput{
			{Text: "Mercury", IsCorrect: true},
			{Text: "Venus"},
		},
	}
}

func TestBuildQuestionsDefaults(t *testing.T) {
	questions, err := buildQuestions([]model.CreateQuestionRequest{validMC()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if questions[0].Points != 1 {
		t.Fatalf("expected default 1 point, got %d", questions[0].Points)
	}
	if questions[0].OrderNum != 1 {
		t.Fatalf("expected order 1, got %d", questions[0].OrderNum)
	}
}

func TestBuildQuestionsReportsPosition(t *testing.T) {
	cases := []struct {
		name     string
		question model.CreateQuestionRequest
	}{
		{
			"no correct option",
			model.CreateQuestionRequest{
				QuestionText: "broken",
				QuestionType: string(model.QuestionTypeMultipleChoice),
				Options:      []model.CreateOptionInput{{Text: "a"}, {Text: "b"}},
			},
		},
		{
			"empty option text",
			model.CreateQuestionRequest{
				QuestionText: "broken",
				QuestionType: string(model.QuestionTypeMultipleChoice),
				Options:      []model.CreateOptionInput{{Text: "a", IsCorrect: true}, {Text: ""}},
			},
		},
		{
			"whitespace-only option text",
			model.CreateQuestionRequest{
				QuestionText: "broken",
				QuestionType: string(model.QuestionTypeMultipleChoice),
				Options:      []model.CreateOptionInput{{Text: "a", IsCorrect: true}, {Text: "   "}},
			},
		},
		{
			"too few options",
			model.CreateQuestionRequest{
				QuestionText: "broken",
				QuestionType: string(model.QuestionTypeMultipleChoice),
				Options:      []model.CreateOptionInput{{Text: "a", IsCorrect: true}},
			},
		},
		{
			"missing short answer",
			model.CreateQuestionRequest{
				QuestionText: "broken",
				QuestionType: string(model.QuestionTypeShortAnswer),
			},
		},
		{
			"whitespace-only short answer",
			model.CreateQuestionRequest{
				QuestionText:  "broken",
				QuestionType:  string(model.QuestionTypeShortAnswer),
				CorrectAnswer: "  \t ",
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// The broken question sits third so the reported position is
			// checked, not assumed.
			_, err := buildQuestions([]model.CreateQuestionRequest{validMC(), validMC(), tc.question})

			var vErr *QuestionValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected QuestionValidationError, got %v", err)
			}
			if vErr.Position != 3 {
				t.Fatalf("expected position 3, got %d", vErr.Position)
			}
		})
	}
}

func TestRandomAccessCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		code, err := randomAccessCode()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(code) != accessCodeLength {
			t.Fatalf("expected %d characters, got %q", accessCodeLength, code)
		}
		for _, ch := range code {
			if !strings.ContainsRune(accessCodeCharset, ch) {
				t.Fatalf("character %q outside the code alphabet in %q", ch, code)
			}
		}
		seen[code] = true
	}
	// 36^8 codes; twenty draws colliding means the sampler is broken.
	if len(seen) < 20 {
		t.Fatalf("expected 20 distinct codes, got %d", len(seen))
	}
}

func TestBuildQuestionsKeepsOrder(t *testing.T) {
	questions, err := buildQuestions([]model.CreateQuestionRequest{
		validMC(),
		{
			QuestionText:  "What is the capital of France?",
			QuestionType:  string(model.QuestionTypeShortAnswer),
			CorrectAnswer: "Paris",
			Points:        5,
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if questions[1].OrderNum != 2 || questions[1].Points != 5 {
		t.Fatalf("expected order 2 with 5 points, got %+v", questions[1])
	}
	if questions[1].CorrectAnswer != "Paris" {
		t.Fatalf("expected answer kept, got %q", questions[1].CorrectAnswer)
	}
}
