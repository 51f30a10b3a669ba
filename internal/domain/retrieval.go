package domain

import "strings"

// RetrievedPassage is a single vector-store match after normalization.
// Passages keep the ordering of the store response (descending relevance as
// returned); the pipeline never re-sorts them. A passage lives only for the
// duration of one turn and is never persisted by the core.
type RetrievedPassage struct {
	// Text is the passage content extracted from the match metadata.
	// May be a stringified fallback form when no text key matched; a
	// retrieved match is degraded rather than dropped so index/embedding
	// mismatches stay debuggable downstream.
	Text string `json:"text"`

	// Score is the relevance score reported by the vector store.
	Score float64 `json:"score"`

	// Metadata carries the source metadata of the match (page, source file, ...).
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Clone returns a deep copy of the passage so callers cannot alias metadata.
func (p RetrievedPassage) Clone() RetrievedPassage {
	return RetrievedPassage{
		Text:     p.Text,
		Score:    p.Score,
		Metadata: cloneStringMap(p.Metadata),
	}
}

// BuildContext joins non-empty passage texts with a blank-line separator, in
// retrieval order. An empty result is a valid low-confidence state, not an
// error: generation proceeds without context.
func BuildContext(passages []RetrievedPassage) string {
	parts := make([]string, 0, len(passages))
	for _, p := range passages {
		if strings.TrimSpace(p.Text) != "" {
			parts = append(parts, p.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}
