package chat

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/studyhubapp/studyhub/core"
)

var (
	ErrNotFound    = errors.New("saved response not found")
	ErrRateLimited = errors.New("rate limit exceeded, please try again in a moment")
	ErrAuthFailed  = errors.New("authentication error with the assistant service")

	errEmptyQuestion = errors.New("question is required")
	errEmptyContent  = errors.New("content is required")

	nowFunc = time.Now // mockable
)

type (
	// TextGenerator produces an assistant answer for a student's question.
	// Implementations return *core.ExternalServiceError on transport or
	// upstream failures.
	TextGenerator interface {
		Generate(ctx context.Context, question string) (string, error)
	}

	// Answer is the assistant's reply. Fallback marks answers produced by
	// the built-in topic table rather than the live service.
	Answer struct {
		Content  string `json:"content"`
		Fallback bool   `json:"fallback"`
	}

	// SavedResponse is an assistant answer the owner chose to keep.
	SavedResponse struct {
		ID        string    `json:"id"`
		Content   string    `json:"content"`
		OwnerID   string    `json:"-"`
		CreatedAt time.Time `json:"created_at"`
	}

	// Repository persists saved responses, listed most recent first.
	Repository interface {
		SaveResponse(ctx context.Context, resp SavedResponse) error
		GetResponse(ctx context.Context, ownerID, id string) (SavedResponse, error)
		QueryResponses(ctx context.Context, ownerID string) ([]SavedResponse, error)
		DeleteResponse(ctx context.Context, ownerID, id string) error
		DeleteAllResponses(ctx context.Context, ownerID string) error
	}

	Service struct {
		gen  TextGenerator
		repo Repository
		log  core.Logger
	}
)

func NewService(gen TextGenerator, repo Repository, log core.Logger) *Service {
	return &Service{gen: gen, repo: repo, log: log}
}

// Ask forwards the question to the assistant service. Rate limiting and
// authentication failures surface as errors the caller must report; any other
// upstream failure degrades to a fallback answer instead of failing the ask.
func (svc *Service) Ask(ctx context.Context, question string) (Answer, error) {
	question = core.CleanString(question)
	if question == "" {
		return Answer{}, core.NewValidationError(errEmptyQuestion, core.FieldError{Field: "question", Error: errEmptyQuestion.Error()})
	}

	content, err := svc.gen.Generate(ctx, question)
	if err == nil {
		return Answer{Content: strings.TrimSpace(content)}, nil
	}

	if extErr, ok := errors.Cause(err).(*core.ExternalServiceError); ok {
		switch extErr.StatusCode {
		case http.StatusTooManyRequests:
			return Answer{}, ErrRateLimited
		case http.StatusUnauthorized, http.StatusForbidden:
			return Answer{}, ErrAuthFailed
		}
	}

	svc.log.Warn("assistant unavailable, using fallback: ", err)
	return Answer{Content: FallbackAnswer(question), Fallback: true}, nil
}

// Save keeps an assistant answer in the owner's saved responses.
func (svc *Service) Save(ctx context.Context, ownerID, content string) (SavedResponse, error) {
	content = core.CleanString(content)
	if content == "" {
		return SavedResponse{}, core.NewValidationError(errEmptyContent, core.FieldError{Field: "content", Error: errEmptyContent.Error()})
	}
	resp := SavedResponse{
		ID:        uuid.New().String(),
		Content:   content,
		OwnerID:   ownerID,
		CreatedAt: nowFunc().UTC(),
	}
	if err := svc.repo.SaveResponse(ctx, resp); err != nil {
		return SavedResponse{}, errors.Wrap(err, "saving response")
	}
	return resp, nil
}

func (svc *Service) GetByID(ctx context.Context, ownerID, id string) (SavedResponse, error) {
	resp, err := svc.repo.GetResponse(ctx, ownerID, id)
	return resp, errors.Wrap(err, "getting saved response")
}

// Query returns the owner's saved responses, most recent first.
func (svc *Service) Query(ctx context.Context, ownerID string) ([]SavedResponse, error) {
	resps, err := svc.repo.QueryResponses(ctx, ownerID)
	return resps, errors.Wrap(err, "querying saved responses")
}

func (svc *Service) Delete(ctx context.Context, ownerID, id string) error {
	return errors.Wrap(svc.repo.DeleteResponse(ctx, ownerID, id), "deleting saved response")
}

// Export renders all of the owner's saved responses as a plain-text document,
// oldest first.
func (svc *Service) Export(ctx context.Context, ownerID string) (string, error) {
	resps, err := svc.repo.QueryResponses(ctx, ownerID)
	if err != nil {
		return "", errors.Wrap(err, "querying saved responses")
	}

	var sb strings.Builder
	sb.WriteString("# Your AI Responses\n")
	fmt.Fprintf(&sb, "# Downloaded on %s\n\n", nowFunc().Format("2006-01-02 15:04:05"))
	for i := len(resps) - 1; i >= 0; i-- {
		resp := resps[i]
		fmt.Fprintf(&sb, "## Response %d - %s\n\n", len(resps)-i, resp.CreatedAt.Format("2006-01-02 15:04:05"))
		sb.WriteString(resp.Content)
		sb.WriteString("\n\n---\n\n")
	}
	return sb.String(), nil
}
