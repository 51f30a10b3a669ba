// Package transcript appends completed turns to a CSV log for offline
// review. The file is append-only; the header row is written once when the
// file is created.
package transcript

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// header is the fixed transcript column order.
var header = []string{"timestamp", "bot_name", "question", "answer", "context", "criteria", "score"}

// Entry is one transcript row. Score is nil when the turn completed without
// an evaluation; it serializes as an empty cell.
type Entry struct {
	Timestamp time.Time
	BotName   string
	Question  string
	Answer    string
	Context   string
	Criteria  string
	Score     *int
}

// Writer appends entries to a transcript CSV. Appends are serialized with a
// mutex so concurrent turns never interleave rows.
type Writer struct {
	path string
	mu   sync.Mutex
}

// NewWriter creates a transcript writer for the given path. The file is not
// touched until the first append.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Append writes one row, creating the file with a header row first if it
// does not exist yet.
func (w *Writer) Append(e Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	_, statErr := os.Stat(w.path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open transcript: %w", err)
	}
	defer func() { _ = f.Close() }()

	cw := csv.NewWriter(f)
	if writeHeader {
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("failed to write transcript header: %w", err)
		}
	}

	score := ""
	if e.Score != nil {
		score = strconv.Itoa(*e.Score)
	}

	row := []string{
		e.Timestamp.UTC().Format("2006-01-02T15:04:05Z"),
		e.BotName,
		e.Question,
		e.Answer,
		e.Context,
		e.Criteria,
		score,
	}
	if err := cw.Write(row); err != nil {
		return fmt.Errorf("failed to write transcript row: %w", err)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush transcript: %w", err)
	}
	return nil
}
