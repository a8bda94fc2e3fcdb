package seedfeed

import "time"

// Config holds configuration for the feed seeding run.
type Config struct {
	BaseURL         string        // Base URL of the service
	Cup             string        // Cup to submit feeds for
	Season          int           // Season year to submit feeds for
	NumEvents       int           // Number of events to generate
	RunnersPerClass int           // Number of runners per age class
	Workers         int           // Number of concurrent workers
	Timeout         time.Duration // HTTP request timeout
	OutputDir       string        // Directory for generated feed files
	LogFile         string        // Log file for seeding output
	Verbose         bool          // Enable verbose logging
}

// AckResponse is the service's answer to a feed submission.
type AckResponse struct {
	Status    string `json:"status"`
	Feed      string `json:"feed"`
	Duplicate bool   `json:"duplicate"`
}

// StandingScore mirrors one per-event cell of a standing row.
type StandingScore struct {
	EventID int64 `json:"eventId"`
	Score   *int  `json:"score"`
	Place   *int  `json:"place"`
	Dropped bool  `json:"dropped"`
}

// StandingEntry mirrors one ranked row returned by the ranking endpoint.
type StandingEntry struct {
	Name       string          `json:"name"`
	Club       string          `json:"club"`
	TotalScore int             `json:"totalScore"`
	Place      string          `json:"place"`
	Scores     []StandingScore `json:"scores"`
}

// Stats holds seeding run statistics.
type Stats struct {
	FeedsGenerated    int
	FeedsSubmitted    int
	FeedsSuccessful   int
	FeedsDuplicate    int
	FeedsFailed       int
	StandingsVerified int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
