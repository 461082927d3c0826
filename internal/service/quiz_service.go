package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/questify/questify-backend/internal/model"
	"github.com/questify/questify-backend/internal/repository"
	"github.com/rs/zerolog"
)

// Quiz domain errors.
var (
	ErrQuizNotFound      = errors.New("quiz not found")
	ErrNotQuizCreator    = errors.New("not the quiz creator")
	ErrPrivateQuizDenied = errors.New("private quiz requires an access code")
	ErrInvalidAccessCode = errors.New("invalid access code")
	ErrQuizIsPublic      = errors.New("quiz is public and has no access code")
	ErrCodeSpaceBusy     = errors.New("could not allocate a unique access code")
)

// QuestionValidationError reports an authoring problem at a specific question,
// positioned 1-based as the author sees it.
type QuestionValidationError struct {
	Position int
	Reason   string
}

func (e *QuestionValidationError) Error() string {
	return fmt.Sprintf("question %d: %s", e.Position, e.Reason)
}

const (
	accessCodeLength  = 8
	accessCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	accessCodeRetries = 5
)

// QuizService handles quiz authoring, discovery, and access control.
type QuizService struct {
	quizRepo *repository.QuizRepository
	userRepo *repository.UserRepository
	log      zerolog.Logger
}

// NewQuizService creates a new QuizService.
func NewQuizService(quizRepo *repository.QuizRepository, userRepo *repository.UserRepository, log zerolog.Logger) *QuizService {
	return &QuizService{quizRepo: quizRepo, userRepo: userRepo, log: log}
}

// Create validates and stores a new quiz. Private quizzes get a generated
// access code, included in the response since the creator is the caller.
func (s *QuizService) Create(ctx context.Context, creatorID uuid.UUID, req *model.CreateQuizRequest) (*model.Quiz, error) {
	questions, err := buildQuestions(req.Questions)
	if err != nil {
		return nil, err
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	quiz := &model.Quiz{
		Title:            req.Title,
		Description:      req.Description,
		Topic:            req.Topic,
		Difficulty:       model.Difficulty(req.Difficulty),
		CreatedBy:        creatorID,
		IsPublic:         isPublic,
		TimeLimitMinutes: req.TimeLimitMinutes,
		Tags:             req.Tags,
		IsActive:         true,
		Questions:        questions,
	}

	if !isPublic {
		code, err := s.generateAccessCode(ctx)
		if err != nil {
			return nil, err
		}
		quiz.AccessCode = code
	}

	if err := s.quizRepo.Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}

	if err := s.userRepo.IncrementQuizzesCreated(ctx, creatorID); err != nil {
		s.log.Warn().Err(err).Str("user_id", creatorID.String()).Msg("Failed to bump quizzes_created")
	}

	s.log.Info().
		Str("quiz_id", quiz.ID.String()).
		Str("creator_id", creatorID.String()).
		Bool("is_public", isPublic).
		Int("questions", len(questions)).
		Msg("Quiz created")
	return quiz, nil
}

// buildQuestions validates authoring input and converts it to stored
// questions. A multiple-choice question needs at least two options, none
// empty, with at least one marked correct; a short-answer question needs a
// non-empty correct answer. Points defaults to 1.
func buildQuestions(inputs []model.CreateQuestionRequest) ([]model.Question, error) {
	questions := make([]model.Question, 0, len(inputs))
	for i, in := range inputs {
		pos := i + 1
		q := model.Question{
			QuestionText: in.QuestionText,
			QuestionType: model.QuestionType(in.QuestionType),
			Points:       in.Points,
			Explanation:  in.Explanation,
			OrderNum:     pos,
		}
		if q.Points == 0 {
			q.Points = 1
		}

		switch q.QuestionType {
		case model.QuestionTypeMultipleChoice:
			if len(in.Options) < 2 {
				return nil, &QuestionValidationError{pos, "multiple-choice questions need at least two options"}
			}
			hasCorrect := false
			for _, opt := range in.Options {
				if strings.TrimSpace(opt.Text) == "" {
					return nil, &QuestionValidationError{pos, "option text must not be empty"}
				}
				if opt.IsCorrect {
					hasCorrect = true
				}
				q.Options = append(q.Options, model.Option{Text: opt.Text, IsCorrect: opt.IsCorrect})
			}
			if !hasCorrect {
				return nil, &QuestionValidationError{pos, "at least one option must be marked correct"}
			}
		case model.QuestionTypeShortAnswer:
			if strings.TrimSpace(in.CorrectAnswer) == "" {
				return nil, &QuestionValidationError{pos, "short-answer questions need a correct answer"}
			}
			q.CorrectAnswer = in.CorrectAnswer
		}

		questions = append(questions, q)
	}
	return questions, nil
}

// generateAccessCode allocates an unused 8-character code. Collisions are
// rare at this keyspace, so a handful of retries is plenty; running out is
// reported instead of looping forever.
func (s *QuizService) generateAccessCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < accessCodeRetries; attempt++ {
		code, err := randomAccessCode()
		if err != nil {
			return "", err
		}

		exists, err := s.quizRepo.AccessCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check access code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrCodeSpaceBusy
}

// randomAccessCode draws a uniformly distributed code over the A-Z0-9
// alphabet. Random bytes past the largest multiple of the alphabet size are
// rejected and redrawn, since reducing them modulo 36 would skew the low
// characters.
func randomAccessCode() (string, error) {
	const limit = 256 - 256%len(accessCodeCharset)
	code := make([]byte, accessCodeLength)
	buf := make([]byte, 1)
	for i := 0; i < accessCodeLength; {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		if int(buf[0]) >= limit {
			continue
		}
		code[i] = accessCodeCharset[int(buf[0])%len(accessCodeCharset)]
		i++
	}
	return string(code), nil
}

// List retrieves active public quizzes with optional filters.
func (s *QuizService) List(ctx context.Context, filter model.QuizListFilter, limit, offset int) ([]model.Quiz, int, error) {
	return s.quizRepo.ListPublic(ctx, filter, limit, offset)
}

// ListMine retrieves the caller's own active quizzes, access codes included.
func (s *QuizService) ListMine(ctx context.Context, creatorID uuid.UUID, limit, offset int) ([]model.Quiz, int, error) {
	return s.quizRepo.ListByCreator(ctx, creatorID, limit, offset)
}

// Get retrieves a quiz for viewing. Private quizzes are visible to their
// creator, admins, and joined participants only. The answer key and access
// code are stripped for anyone but the creator and admins.
func (s *QuizService) Get(ctx context.Context, quizID, userID uuid.UUID, isAdmin bool) (*model.Quiz, error) {
	quiz, err := s.getActive(ctx, quizID)
	if err != nil {
		return nil, err
	}

	owner := quiz.CreatedBy == userID || isAdmin
	if !owner && !quiz.IsPublic {
		joined, err := s.quizRepo.IsParticipant(ctx, quizID, userID)
		if err != nil {
			return nil, fmt.Errorf("check participant: %w", err)
		}
		if !joined {
			return nil, ErrPrivateQuizDenied
		}
	}

	if !owner {
		quiz.AccessCode = ""
		quiz.Questions = nil
	}
	return quiz, nil
}

// GetOwned retrieves a quiz and verifies the caller is its creator or an
// admin. Used by the creator-only analytics and results views.
func (s *QuizService) GetOwned(ctx context.Context, quizID, userID uuid.UUID, isAdmin bool) (*model.Quiz, error) {
	quiz, err := s.getActive(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.CreatedBy != userID && !isAdmin {
		return nil, ErrNotQuizCreator
	}
	return quiz, nil
}

// Update applies metadata edits. Only the creator may edit.
func (s *QuizService) Update(ctx context.Context, quizID, userID uuid.UUID, req *model.UpdateQuizRequest) (*model.Quiz, error) {
	if _, err := s.GetOwned(ctx, quizID, userID, false); err != nil {
		return nil, err
	}
	if err := s.quizRepo.UpdateMeta(ctx, quizID, req); err != nil {
		return nil, fmt.Errorf("update quiz: %w", err)
	}
	return s.quizRepo.GetByID(ctx, quizID)
}

// Delete soft-deletes a quiz. The creator or an admin may delete.
func (s *QuizService) Delete(ctx context.Context, quizID, userID uuid.UUID, isAdmin bool) error {
	if _, err := s.GetOwned(ctx, quizID, userID, isAdmin); err != nil {
		return err
	}
	deleted, err := s.quizRepo.SoftDelete(ctx, quizID)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if !deleted {
		return ErrQuizNotFound
	}

	s.log.Info().Str("quiz_id", quizID.String()).Msg("Quiz deactivated")
	return nil
}

// Rate records or replaces a user's 1-5 rating and returns the new average.
// The quiz must be accessible to the caller.
func (s *QuizService) Rate(ctx context.Context, quizID, userID uuid.UUID, req *model.RateQuizRequest) (float64, error) {
	if _, err := s.Get(ctx, quizID, userID, false); err != nil {
		return 0, err
	}
	average, err := s.quizRepo.UpsertRating(ctx, quizID, userID, req.Rating, req.Comment)
	if err != nil {
		return 0, fmt.Errorf("rate quiz: %w", err)
	}
	return average, nil
}

// JoinByCode registers the caller as a participant of a private quiz. Joining
// an already-joined quiz is idempotent.
func (s *QuizService) JoinByCode(ctx context.Context, userID uuid.UUID, code string) (*model.Quiz, error) {
	quiz, err := s.quizRepo.GetByAccessCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidAccessCode
		}
		return nil, fmt.Errorf("lookup access code: %w", err)
	}

	if err := s.quizRepo.AddParticipant(ctx, quiz.ID, userID); err != nil {
		return nil, fmt.Errorf("add participant: %w", err)
	}

	quiz.AccessCode = ""
	quiz.Questions = nil
	return quiz, nil
}

// RegenerateAccessCode replaces a private quiz's access code. Creator only;
// public quizzes have no code to regenerate.
func (s *QuizService) RegenerateAccessCode(ctx context.Context, quizID, userID uuid.UUID) (string, error) {
	quiz, err := s.GetOwned(ctx, quizID, userID, false)
	if err != nil {
		return "", err
	}
	if quiz.IsPublic {
		return "", ErrQuizIsPublic
	}

	code, err := s.generateAccessCode(ctx)
	if err != nil {
		return "", err
	}
	if err := s.quizRepo.SetAccessCode(ctx, quizID, code); err != nil {
		return "", fmt.Errorf("set access code: %w", err)
	}
	return code, nil
}

func (s *QuizService) getActive(ctx context.Context, quizID uuid.UUID) (*model.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	if !quiz.IsActive {
		return nil, ErrQuizNotFound
	}
	return quiz, nil
}
