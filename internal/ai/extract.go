package ai

import (
	"encoding/json"
	"errors"
	"strings"

	apperrors "careercompass/internal/errors"
)

var (
	errNoJSON       = errors.New("no JSON found")
	errUnterminated = errors.New("JSON value is not terminated")
)

// Extract returns the single JSON value embedded in a completion.
//
// The value starts at whichever of the first '[' or first '{' comes earlier
// and ends at the last ']' or '}' respectively. Surrounding prose and code
// fences are tolerated. The scan is not depth aware: a stray closing bracket
// of the same kind after the real value extends the slice and the parse then
// fails, and a value whose kind is only decided by an earlier stray bracket
// is misread.
func Extract(raw string) (json.RawMessage, error) {
	arrayAt := strings.IndexByte(raw, '[')
	objectAt := strings.IndexByte(raw, '{')

	var (
		start  int
		closer byte
	)
	switch {
	case arrayAt < 0 && objectAt < 0:
		return nil, apperrors.NewFormatError(apperrors.FormatNoJSON, raw, errNoJSON)
	case arrayAt >= 0 && (objectAt < 0 || arrayAt < objectAt):
		start, closer = arrayAt, ']'
	default:
		start, closer = objectAt, '}'
	}

	end := strings.LastIndexByte(raw, closer)
	if end < start {
		return nil, apperrors.NewFormatError(apperrors.FormatNoJSON, raw, errUnterminated)
	}

	candidate := raw[start : end+1]
	var probe interface{}
	if err := json.Unmarshal([]byte(candidate), &probe); err != nil {
		return nil, apperrors.NewFormatError(apperrors.FormatParse, raw, err)
	}
	return json.RawMessage(candidate), nil
}
