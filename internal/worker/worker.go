// Package worker assembles the pipeline dependencies and registers the turn
// workflow and its activities on a Temporal worker.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/ahrav/go-ragcheck/internal/activity"
	"github.com/ahrav/go-ragcheck/internal/configuration"
	"github.com/ahrav/go-ragcheck/internal/generation"
	"github.com/ahrav/go-ragcheck/internal/llm"
	"github.com/ahrav/go-ragcheck/internal/retrieval"
	"github.com/ahrav/go-ragcheck/internal/scoring"
	"github.com/ahrav/go-ragcheck/internal/transcript"
	"github.com/ahrav/go-ragcheck/internal/vectorstore"
	"github.com/ahrav/go-ragcheck/internal/workflow"
	"github.com/ahrav/go-ragcheck/pkg/events"
)

// BuildActivities wires the production dependency graph: provider client,
// vector store, retriever, generator, judge, and transcript writer.
//
// The judge is the fast judge when a completion server is configured,
// otherwise the rubric judge when one is configured, otherwise nil
// (evaluation skipped).
func BuildActivities(ctx context.Context, cfg *configuration.Config, logger *slog.Logger) (*activity.Activities, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	llmClient := llm.NewClient(cfg.Generation, cfg.Embedding, nil)
	store := vectorstore.NewClient(cfg.VectorStore, nil)

	retriever := retrieval.NewRetriever(ctx, llmClient, store, cfg.Retrieval, cfg.Embedding.Model, logger)
	generator := generation.NewGenerator(llmClient, cfg.Profile, logger)

	judge, err := buildJudge(cfg, logger)
	if err != nil {
		return nil, err
	}

	var transcriptWriter *transcript.Writer
	if cfg.TranscriptPath != "" {
		transcriptWriter = transcript.NewWriter(cfg.TranscriptPath)
	}

	return activity.NewActivities(retriever, generator, judge, transcriptWriter, events.NewNoOpEventSink()), nil
}

// buildJudge selects the configured judge implementation.
func buildJudge(cfg *configuration.Config, logger *slog.Logger) (scoring.Judge, error) {
	if cfg.FastJudge.BaseURL != "" {
		judge, err := scoring.NewFastJudge(cfg.FastJudge, nil, logger)
		if err != nil {
			return nil, fmt.Errorf("fast judge: %w", err)
		}
		return judge, nil
	}
	if cfg.RubricJudge.BaseURL != "" {
		return scoring.NewRubricJudge(cfg.RubricJudge, nil, logger), nil
	}
	logger.Warn("no judge configured, evaluation disabled")
	return nil, nil
}

// New creates a Temporal worker on the pipeline task queue with the turn
// workflow and all activities registered.
func New(temporalClient client.Client, activities *activity.Activities) worker.Worker {
	w := worker.New(temporalClient, workflow.TaskQueue, worker.Options{})

	w.RegisterWorkflow(workflow.TurnWorkflow)
	w.RegisterActivity(activities.RetrieveContext)
	w.RegisterActivity(activities.GenerateAnswer)
	w.RegisterActivity(activities.RegenerateAnswer)
	w.RegisterActivity(activities.EvaluateAnswer)
	w.RegisterActivity(activities.RecordTurn)

	return w
}
