package db

import (
	"strings"

	"github.com/scorecast/scorecast/internal/models"
)

// Penalty sequences are stored as a comma-joined list of outcomes, e.g.
// "goal,miss,goal". Empty string means no kicks taken.

// EncodeKicks serializes a penalty sequence for storage.
func EncodeKicks(kicks []models.KickResult) string {
	if len(kicks) == 0 {
		return ""
	}
	parts := make([]string, len(kicks))
	for i, k := range kicks {
		parts[i] = string(k)
	}
	return strings.Join(parts, ",")
}

// DecodeKicks parses a stored penalty sequence. Unknown tokens are dropped
// rather than failing the read.
func DecodeKicks(raw string) []models.KickResult {
	if raw == "" {
		return nil
	}
	var kicks []models.KickResult
	for _, part := range strings.Split(raw, ",") {
		switch models.KickResult(part) {
		case models.KickGoal, models.KickMiss:
			kicks = append(kicks, models.KickResult(part))
		}
	}
	return kicks
}
