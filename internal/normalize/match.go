// Package normalize converts heterogeneous retrieval-match and judge-response
// payloads into the canonical domain shapes. Upstream services return
// loosely-typed JSON under several known field names; this package resolves
// those variants once at the API boundary so the rest of the pipeline never
// re-checks shapes.
//
// The key priority orders here are load-bearing: client behavior depends on
// first-match semantics, so they must not be reordered or generalized.
package normalize

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ahrav/go-ragcheck/internal/domain"
)

// passageTextKeys is the fixed priority order of metadata keys that may hold
// the passage text. First non-empty value wins.
var passageTextKeys = []string{"text", "content", "chunk", "page_content", "document", "value"}

// Passage converts one vector-store match into a canonical RetrievedPassage.
//
// The metadata value is whatever the store returned for the match: usually a
// JSON object, occasionally a plain string, sometimes another scalar. Text is
// extracted by probing passageTextKeys in order; when none yields non-empty
// text the passage degrades to a stringified form of the metadata instead of
// being dropped, so an embedding/index mismatch stays visible downstream.
func Passage(score float64, metadata any) domain.RetrievedPassage {
	passage := domain.RetrievedPassage{Score: score}

	switch md := metadata.(type) {
	case nil:
		return passage
	case string:
		passage.Text = md
		return passage
	case map[string]any:
		passage.Metadata = metadataStrings(md)
		for _, key := range passageTextKeys {
			if text, ok := md[key].(string); ok && strings.TrimSpace(text) != "" {
				passage.Text = text
				return passage
			}
		}
		if len(md) == 0 {
			return passage
		}
		passage.Text = stringify(md)
		return passage
	default:
		passage.Text = stringify(md)
		return passage
	}
}

// metadataStrings flattens a metadata object into the string map carried on
// the passage for display and transcript logging.
func metadataStrings(md map[string]any) map[string]string {
	if len(md) == 0 {
		return nil
	}
	out := make(map[string]string, len(md))
	for k, v := range md {
		switch val := v.(type) {
		case string:
			out[k] = val
		default:
			out[k] = stringify(val)
		}
	}
	return out
}

// stringify renders an arbitrary metadata value for the degraded-text
// fallback. JSON rendering is preferred for stable, debuggable output.
func stringify(v any) string {
	if b, err := json.Marshal(v); err == nil {
		return string(b)
	}
	return fmt.Sprint(v)
}

// logger returns the package logger for normalization diagnostics.
func logger() *slog.Logger { return slog.Default().With("component", "normalize") }
