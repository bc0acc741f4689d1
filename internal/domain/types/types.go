// Package types contains the read-model types shared between the
// service and the HTTP API.
package types

// Entry is one leaderboard row: an expert's stored ranking score with
// its resolved level and tier.
type Entry struct {
	Rank     int     `json:"rank"`
	ExpertID string  `json:"expert_id"`
	Score    float64 `json:"score"`
	Level    int     `json:"level"`
	Tier     string  `json:"tier"`
}
