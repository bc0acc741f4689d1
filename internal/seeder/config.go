package seeder

import "time"

// Config holds configuration for the seeding run.
type Config struct {
	BaseURL    string        // Base URL of the service
	NumExperts int           // Number of experts to create
	TopN       int           // Number of top entries to fetch
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	LogFile    string        // Log file for run output
	Verbose    bool          // Enable verbose logging
}

// Expert is one generated marketplace expert with a target activity
// profile that drives the events we emit.
type Expert struct {
	ExpertID  string
	Name      string
	Specialty string

	Sessions   int     // number of session_completed events
	RepeatRate float64 // probability a session is a repeat booking
	Reviews    int     // number of review_posted events
	RatingBase float64 // mean rating around which reviews scatter
	Likes      int     // number of like events
}

// Event mirrors the wire schema for POST /events.
type Event struct {
	EventID   string  `json:"event_id"`
	ExpertID  string  `json:"expert_id"`
	Kind      string  `json:"kind"`
	Rating    float64 `json:"rating,omitempty"`
	Repeat    bool    `json:"repeat,omitempty"`
	Specialty string  `json:"specialty,omitempty"`
	TS        string  `json:"ts"`
}

// Entry mirrors a leaderboard row.
type Entry struct {
	Rank     int     `json:"rank"`
	ExpertID string  `json:"expert_id"`
	Score    float64 `json:"score"`
	Level    int     `json:"level"`
	Tier     string  `json:"tier"`
}

// AckResponse mirrors the response from event submission.
type AckResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// Stats holds run statistics.
type Stats struct {
	ExpertsGenerated   int
	EventsGenerated    int
	EventsSubmitted    int
	EventsSuccessful   int
	EventsDuplicate    int
	EventsFailed       int
	RanksRetrieved     int
	LeaderboardEntries int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
