// Package coerce turns raw oracle output into canonical JSON text.
package coerce

import (
	"bytes"
	"encoding/json"
	"strings"
)

const fence = "```"

// Result is the outcome of Coerce. Valid is false when the payload did not
// parse as JSON; Text then holds the stripped payload unchanged.
type Result struct {
	Text  string
	Valid bool
}

// Coerce strips code fences and an optional language tag, then re-serializes
// the payload as two-space indented JSON. It never fails: malformed payloads
// are returned as-is with Valid set to false.
func Coerce(raw string) Result {
	payload := StripFences(raw)
	if !json.Valid([]byte(payload)) {
		return Result{Text: payload, Valid: false}
	}
	var buf bytes.Buffer
	// json.Indent keeps members in their original order.
	if err := json.Indent(&buf, []byte(payload), "", "  "); err != nil {
		return Result{Text: payload, Valid: false}
	}
	return Result{Text: buf.String(), Valid: true}
}

// StripFences trims the text and, when it opens with a fence, unwraps the
// first non-empty fenced segment and drops a leading "json" language tag.
func StripFences(raw string) string {
	payload := strings.TrimSpace(raw)
	if strings.HasPrefix(payload, fence) {
		for _, segment := range strings.Split(payload, fence) {
			if strings.TrimSpace(segment) != "" {
				payload = segment
				break
			}
		}
		payload = strings.TrimSpace(payload)
		if len(payload) >= 4 && strings.EqualFold(payload[:4], "json") {
			payload = strings.TrimSpace(payload[4:])
		}
	}
	return payload
}
