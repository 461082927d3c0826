package model

import (
	"github.com/google/uuid"
)

// QuestionType discriminates the two supported answer formats.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTypeShortAnswer    QuestionType = "SHORT_ANSWER"
)

// Option is one labeled choice of a multiple-choice question.
type Option struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// Question belongs to exactly one quiz. A multiple-choice question carries
// Options with at least one flagged correct; a short-answer question carries
// CorrectAnswer. Points defaults to 1.
type Question struct {
	ID            uuid.UUID    `json:"id"`
	QuizID        uuid.UUID    `json:"quiz_id"`
	QuestionText  string       `json:"question_text"`
	QuestionType  QuestionType `json:"question_type"`
	Options       []Option     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correct_answer,omitempty"`
	Points        int          `json:"points"`
	Explanation   string       `json:"explanation,omitempty"`
	OrderNum      int          `json:"order_num"`
}

// TakerOption is an option with the correctness flag stripped.
type TakerOption struct {
	Text string `json:"text"`
}

// QuestionForTaker is a question as shown to someone attempting the quiz:
// no correctness flags, no correct answer, no explanation.
type QuestionForTaker struct {
	ID           uuid.UUID     `json:"id"`
	QuestionText string        `json:"question_text"`
	QuestionType QuestionType  `json:"question_type"`
	Options      []TakerOption `json:"options,omitempty"`
	Points       int           `json:"points"`
	OrderNum     int           `json:"order_num"`
}

// ForTaker strips the answer key from a question.
func (q Question) ForTaker() QuestionForTaker {
	out := QuestionForTaker{
		ID:           q.ID,
		QuestionText: q.QuestionText,
		QuestionType: q.QuestionType,
		Points:       q.Points,
		OrderNum:     q.OrderNum,
	}
	for _, opt := range q.Options {
		out.Options = append(out.Options, TakerOption{Text: opt.Text})
	}
	return out
}

// CreateQuestionRequest is one question inside a quiz creation payload.
type CreateQuestionRequest struct {
	QuestionText  string               `json:"question_text" binding:"required,min=1,max=2000"`
	QuestionType  string               `json:"question_type" binding:"required,oneof=MULTIPLE_CHOICE SHORT_ANSWER"`
	Options       []CreateOptionInput  `json:"options" binding:"omitempty,max=10,dive"`
	CorrectAnswer string               `json:"correct_answer" binding:"omitempty,max=500"`
	Points        int                  `json:"points" binding:"omitempty,min=1,max=100"`
	Explanation   string               `json:"explanation" binding:"omitempty,max=500"`
}

// CreateOptionInput is one option inside a question creation payload.
// Text emptiness is checked semantically by the authoring validator so the
// offending question position can be reported.
type CreateOptionInput struct {
	Text      string `json:"text" binding:"max=500"`
	IsCorrect bool   `json:"is_correct"`
}
