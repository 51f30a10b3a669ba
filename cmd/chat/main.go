// Command chat runs the answer pipeline as an interactive console session:
// read a question, print the answer, the evaluation, and the corrected
// answer when one was produced.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ahrav/go-ragcheck/internal/configuration"
	"github.com/ahrav/go-ragcheck/internal/domain"
	"github.com/ahrav/go-ragcheck/internal/generation"
	"github.com/ahrav/go-ragcheck/internal/llm"
	"github.com/ahrav/go-ragcheck/internal/pipeline"
	"github.com/ahrav/go-ragcheck/internal/retrieval"
	"github.com/ahrav/go-ragcheck/internal/scoring"
	"github.com/ahrav/go-ragcheck/internal/transcript"
	"github.com/ahrav/go-ragcheck/internal/vectorstore"
)

const divider = "------------------------------------------------------------"

func main() {
	judgeURL := flag.String("judge-url", "", "base URL of the completion judge server (overrides FAST_JUDGE_URL)")
	showTimes := flag.Bool("t", false, "show evaluation and turnaround times")
	noLogs := flag.Bool("no-logs", false, "disable the transcript CSV")
	flag.Parse()

	// Console sessions keep structured logs out of the conversation.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	cfg := configuration.FromEnv()
	if *judgeURL != "" {
		cfg.FastJudge.BaseURL = *judgeURL
	}
	if *noLogs {
		cfg.TranscriptPath = ""
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	logger := slog.Default()

	llmClient := llm.NewClient(cfg.Generation, cfg.Embedding, nil)
	store := vectorstore.NewClient(cfg.VectorStore, nil)
	retriever := retrieval.NewRetriever(ctx, llmClient, store, cfg.Retrieval, cfg.Embedding.Model, logger)
	generator := generation.NewGenerator(llmClient, cfg.Profile, logger)

	var judge scoring.Judge
	switch {
	case cfg.FastJudge.BaseURL != "":
		fastJudge, err := scoring.NewFastJudge(cfg.FastJudge, nil, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to initialize judge: %v\n", err)
			os.Exit(1)
		}
		judge = fastJudge
	case cfg.RubricJudge.BaseURL != "":
		judge = scoring.NewRubricJudge(cfg.RubricJudge, nil, logger)
	}

	var transcriptWriter *transcript.Writer
	if cfg.TranscriptPath != "" {
		transcriptWriter = transcript.NewWriter(cfg.TranscriptPath)
	}

	orchestrator := pipeline.NewOrchestrator(
		retriever, generator, judge,
		cfg.RegenerationThreshold, string(cfg.Profile), logger)

	fmt.Println(divider)
	fmt.Println("RAG Chat with Self-Correction")
	fmt.Println(divider)
	fmt.Printf("Profile: %s\n", cfg.Profile)
	if judge == nil {
		fmt.Println("Evaluation: disabled (no judge configured)")
	}
	if transcriptWriter != nil {
		fmt.Printf("Transcript: %s\n", cfg.TranscriptPath)
	}
	fmt.Println("Type 'quit' or 'exit' to end the session")
	fmt.Println(divider)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("\nYou: ")
		if !scanner.Scan() {
			fmt.Println("\nGoodbye!")
			return
		}

		question := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(question) {
		case "quit", "exit", "q":
			fmt.Println("\nGoodbye!")
			return
		case "":
			fmt.Println("Please enter a question.")
			continue
		}

		start := time.Now()
		turn, err := orchestrator.ProcessQuestion(ctx, question)
		if err != nil {
			fmt.Printf("\n[ERROR] %v\n", err)
			fmt.Println("Please try again or type 'quit' to exit.")
			continue
		}

		fmt.Println(divider)
		fmt.Println("Bot:", turn.Answer.Text)
		fmt.Println(divider)

		printEvaluation(turn, *showTimes)

		if turn.RegeneratedAnswer != nil {
			fmt.Println("\nERRONEOUS ANSWER")
			fmt.Println(divider)
			fmt.Println("Regenerated Answer:", turn.RegeneratedAnswer.Text)
			fmt.Println(divider)
		}

		if *showTimes {
			fmt.Printf("\nOverall turnaround time: %.3fs\n", time.Since(start).Seconds())
			fmt.Println(divider)
		}

		if transcriptWriter != nil {
			if err := transcriptWriter.Append(transcriptEntry(turn)); err != nil {
				slog.Warn("failed to append transcript row", "error", err)
			}
		}
	}
}

// printEvaluation renders the per-criterion scores when an evaluation exists.
func printEvaluation(turn *domain.Turn, showTimes bool) {
	if !turn.Evaluation.HasCriteria() {
		return
	}

	fmt.Println("\nEvaluation")
	fmt.Println(divider)
	for _, criterion := range turn.Evaluation.Criteria {
		name := criterion.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Printf("%s - Score: %d\n", name, criterion.Score)
	}
	if showTimes {
		fmt.Printf("Evaluation time: %.3fs\n", float64(turn.Timings.EvaluationMs)/1000)
	}
}

// transcriptEntry maps a completed turn onto one transcript row. The first
// criterion represents the turn in the flat CSV shape.
func transcriptEntry(turn *domain.Turn) transcript.Entry {
	entry := transcript.Entry{
		Timestamp: turn.Timings.CompletedAt,
		BotName:   turn.BotProfile,
		Question:  turn.Question,
		Answer:    turn.FinalAnswer().Text,
		Context:   turn.Context,
	}
	if turn.Evaluation.HasCriteria() {
		first := turn.Evaluation.Criteria[0]
		entry.Criteria = first.Name
		score := first.Score
		entry.Score = &score
	}
	return entry
}
