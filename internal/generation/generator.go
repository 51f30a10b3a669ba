// Package generation produces answers and corrected answers through the
// chat-completion provider.
//
// Generation is the one pipeline step whose failure is fatal to a turn:
// errors are wrapped with ErrGenerationFailed and returned to the caller
// instead of being absorbed.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ahrav/go-ragcheck/internal/configuration"
	"github.com/ahrav/go-ragcheck/internal/domain"
)

// ErrGenerationFailed marks a provider failure during answer generation.
// Callers distinguish it from the absorbable retrieval and evaluation
// failures with errors.Is.
var ErrGenerationFailed = errors.New("answer generation failed")

// Completer produces one chat completion. Satisfied by llm.Client.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Generator generates first-pass and corrected answers for one bot profile.
// Safe for concurrent use.
type Generator struct {
	completer Completer
	profile   configuration.BotProfile
	logger    *slog.Logger
}

// NewGenerator creates a Generator for the given profile.
func NewGenerator(completer Completer, profile configuration.BotProfile, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		completer: completer,
		profile:   profile,
		logger:    logger.With("component", "generation", "profile", string(profile)),
	}
}

// GenerateAnswer produces a first-pass answer for the question, grounded in
// the retrieved context when one is available.
func (g *Generator) GenerateAnswer(ctx context.Context, question, contextText string) (domain.Answer, error) {
	system, user := ChatPrompt(g.profile, question, contextText)

	text, err := g.completer.Complete(ctx, system, user)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	answer, err := domain.NewAnswer(text)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	g.logger.Info("generated answer", "answer_length", len(answer.Text))
	return *answer, nil
}

// RegenerateAnswer produces a corrected answer after the first answer scored
// at or above the regeneration threshold. The previous answer rides along in
// the prompt so the model avoids repeating it.
func (g *Generator) RegenerateAnswer(ctx context.Context, question, previousAnswer, contextText string) (domain.Answer, error) {
	system, user := RegeneratePrompt(question, previousAnswer, contextText)

	text, err := g.completer.Complete(ctx, system, user)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	answer, err := domain.NewAnswer(text)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	g.logger.Info("regenerated answer", "answer_length", len(answer.Text))
	return *answer, nil
}
