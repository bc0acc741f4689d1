// Package model contains domain models passed between layers.
package model

import "time"

// Stat event kinds accepted by the ingestion pipeline.
const (
	KindSessionCompleted = "session_completed"
	KindReviewPosted     = "review_posted"
	KindLike             = "like"
)

// StatEvent represents a single performance event submitted by upstream
// services (booking, review, community). Fields mirror the wire schema
// for POST /events.
type StatEvent struct {
	EventID   string    // unique id for idempotency
	ExpertID  string    // subject expert identifier
	Kind      string    // one of the Kind* constants
	Rating    float64   // 0-5, only meaningful for review_posted
	Repeat    bool      // session_completed: the client has booked this expert before
	Specialty string    // expert specialty, e.g. "legal", "finance"
	TS        time.Time // event timestamp
}

// ExpertStats is the raw counter snapshot the scoring engine consumes.
// RepeatClients never exceeds TotalSessions.
type ExpertStats struct {
	TotalSessions int     `json:"totalSessions"`
	AvgRating     float64 `json:"avgRating"` // 0-5
	ReviewCount   int     `json:"reviewCount"`
	RepeatClients int     `json:"repeatClients"`
	LikeCount     int     `json:"likeCount"`
	Specialty     string  `json:"specialty,omitempty"`
}

// Profile carries display data joined from an external profile source.
// A missing profile must never fail a ranking computation; callers
// substitute a deterministic placeholder instead.
type Profile struct {
	ExpertID  string
	Name      string
	Specialty string
}
