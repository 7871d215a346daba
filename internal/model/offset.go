package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ParseOffset decodes an offset wire value, which may be a JSON integer, the
// literal string "latest" (0), or the form "Nd_ago" (N). Per the spec, the
// offset then converts to a frame index via idx = -(offset+1).
func ParseOffset(raw json.RawMessage) (int, error) {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("model: offset must be an integer or string, got %s", raw)
	}
	return ParseOffsetString(s)
}

// ParseOffsetString decodes the string forms of offset directly.
func ParseOffsetString(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "latest") {
		return 0, nil
	}
	if strings.HasSuffix(s, "d_ago") {
		n, err := strconv.Atoi(strings.TrimSuffix(s, "d_ago"))
		if err != nil {
			return 0, fmt.Errorf("model: invalid offset %q: %w", s, err)
		}
		return n, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("model: invalid offset %q: %w", s, err)
	}
	return n, nil
}

// IndexFromOffset converts an offset (candles back from latest, 0 = latest)
// into the frame's negative "from the end" index convention.
func IndexFromOffset(offset int) int {
	return -(offset + 1)
}
