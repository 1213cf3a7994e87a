package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/hyperifyio/searchfacts/internal/search"
)

// ErrMissingQuery is the request-level error for a request without a query.
var ErrMissingQuery = errors.New("Missing query")

// fallbackTopK is used when top_k is present but not an integer.
const fallbackTopK = 5

// Request is a parsed search request.
type Request struct {
	Query string
	TopK  int
}

// ParseRequest decodes one request line. Blank or malformed input is treated
// as an empty object, which yields ErrMissingQuery.
//
// query falls back to q and top_k to limit; a falsy value (null, false, 0,
// "", empty array or object) counts as absent.
func ParseRequest(line []byte) (Request, error) {
	fields := map[string]json.RawMessage{}
	if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			fields = map[string]json.RawMessage{}
		}
	}

	raw, ok := firstTruthy(fields, "query", "q")
	if !ok {
		return Request{}, ErrMissingQuery
	}
	req := Request{Query: stringify(raw), TopK: search.MaxResults}
	if raw, ok := firstTruthy(fields, "top_k", "limit"); ok {
		req.TopK = coerceInt(raw)
	}
	return req, nil
}

// Handle runs a parsed request and returns the value to print. A fatal
// search failure yields an ErrorResponse together with the error so the
// caller can choose an exit status.
func (a *App) Handle(ctx context.Context, req Request) (any, error) {
	resp, err := a.Search(ctx, req.Query, req.TopK)
	if err != nil {
		return ErrorResponse{Error: err.Error()}, err
	}
	return resp, nil
}

func firstTruthy(fields map[string]json.RawMessage, keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := fields[k]; ok && truthy(v) {
			return v, true
		}
	}
	return nil, false
}

func truthy(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	return true
}

// stringify returns strings verbatim and any other JSON value as its
// compact encoding.
func stringify(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return strings.TrimSpace(string(raw))
	}
	return buf.String()
}

// coerceInt accepts numbers (truncated toward zero), integer strings with
// surrounding whitespace, and booleans. Anything else gives fallbackTopK.
func coerceInt(raw json.RawMessage) int {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fallbackTopK
	}
	switch t := v.(type) {
	case bool:
		if t {
			return 1
		}
		return 0
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return fallbackTopK
		}
		return int(math.Max(math.Min(t, math.MaxInt32), math.MinInt32))
	case string:
		s := strings.TrimSpace(t)
		n, err := strconv.Atoi(s)
		if errors.Is(err, strconv.ErrRange) {
			// Out-of-range integers still clamp the same way downstream.
			if strings.HasPrefix(s, "-") {
				return math.MinInt32
			}
			return math.MaxInt32
		}
		if err != nil {
			return fallbackTopK
		}
		return n
	}
	return fallbackTopK
}
