package scoring

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrCriterionNotFound indicates the catalog has no matching criterion.
var ErrCriterionNotFound = errors.New("criterion not found in catalog")

// ErrEmptyCriterionPrompt indicates the criterion exists but its prompt
// column is blank.
var ErrEmptyCriterionPrompt = errors.New("criterion has an empty prompt")

// LoadCriterionPrompt reads the named criterion's grading prompt from the
// catalog CSV. The catalog has a "criteria" name column and a "prompt"
// definition column; name matching is case-insensitive. A UTF-8 byte order
// mark on the header is tolerated.
func LoadCriterionPrompt(path, name string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open criteria catalog: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to read criteria catalog: %w", err)
	}
	if len(records) < 2 {
		return "", ErrCriterionNotFound
	}

	header := records[0]
	nameCol, promptCol := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(col), "\ufeff")) {
		case "criteria":
			nameCol = i
		case "prompt":
			promptCol = i
		}
	}
	if nameCol < 0 || promptCol < 0 {
		return "", fmt.Errorf("criteria catalog missing required columns: %v", header)
	}

	for _, row := range records[1:] {
		if nameCol >= len(row) {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(row[nameCol]), name) {
			continue
		}
		if promptCol >= len(row) {
			return "", ErrEmptyCriterionPrompt
		}
		prompt := strings.TrimSpace(row[promptCol])
		if prompt == "" {
			return "", ErrEmptyCriterionPrompt
		}
		return prompt, nil
	}

	return "", ErrCriterionNotFound
}
