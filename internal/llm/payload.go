package llm

import (
	"errors"
	"strings"
)

// ErrNoPayload is returned when the model output contains no JSON block.
var ErrNoPayload = errors.New("no JSON payload found in model output")

// ExtractPayload slices the JSON block out of free-form model output.
//
// The span runs from the first '{' to the last '}' inclusive, regardless of
// whether the content between them is well-formed; validity is the decoder's
// concern. The greedy span tolerates conversational prose before and after
// the block, but a stray brace inside that prose widens the span and will
// surface later as a decode failure.
func ExtractPayload(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end < start {
		return "", ErrNoPayload
	}
	return raw[start : end+1], nil
}
