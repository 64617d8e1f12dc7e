// Package provider defines the interface to external extraction job runners
// and the Apify implementation. A runner executes one asynchronous extraction
// job per source URL: start it, poll its status, and fetch its result set
// once it has succeeded.
package provider

import (
	"context"

	"tubetap/internal/media"
)

// Status is the lifecycle state of an extraction job as reported by the runner.
type Status string

const (
	StatusReady     Status = "READY"
	StatusRunning   Status = "RUNNING"
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
	StatusAborted   Status = "ABORTED"
	StatusTimedOut  Status = "TIMED-OUT"
)

// Terminal reports whether no further status transitions can occur.
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusAborted, StatusTimedOut:
		return true
	}
	return false
}

// Job identifies one started extraction run. The actor is carried along for
// diagnostics; status lookups are keyed by run id alone.
type Job struct {
	ID    string
	Actor string
}

// JobStatus is one observed poll response.
type JobStatus struct {
	Status      Status
	ResultSetID string // set once the runner has produced a result set
}

// Runner is the external extraction job collaborator.
type Runner interface {
	// StartJob submits the source URL to the given actor and returns a job handle.
	StartJob(ctx context.Context, videoURL, format, actor string) (Job, error)

	// JobStatus reports the current state of a started job.
	JobStatus(ctx context.Context, job Job) (JobStatus, error)

	// ResultSet fetches the raw result records of a succeeded job.
	ResultSet(ctx context.Context, resultSetID string) ([]media.RawDescriptor, error)
}

// DefaultActors is the ordered fallback list of extraction actors. The first
// entry is the primary; the rest are tried in turn when an attempt fails.
var DefaultActors = []string{
	"scrapearchitect~youtube-audio-mp3-downloader",
	"thenetaji~youtube-video-and-music-downloader",
	"web.harvester~youtube-downloader",
}

// AttemptPolicy consolidates the fallback-actor retry behavior into one
// explicit value: an ordered actor list and a bounded attempt count.
type AttemptPolicy struct {
	Actors      []string
	MaxAttempts int
}

// DefaultPolicy tries each default actor once.
func DefaultPolicy() AttemptPolicy {
	return AttemptPolicy{Actors: DefaultActors, MaxAttempts: len(DefaultActors)}
}

// Attempts returns the bounded number of start attempts.
func (p AttemptPolicy) Attempts() int {
	if p.MaxAttempts > 0 {
		return p.MaxAttempts
	}
	if len(p.Actors) > 0 {
		return len(p.Actors)
	}
	return 1
}

// ActorFor returns the actor to use for the given zero-based attempt,
// cycling through the configured list.
func (p AttemptPolicy) ActorFor(attempt int) string {
	if len(p.Actors) == 0 {
		return ""
	}
	return p.Actors[attempt%len(p.Actors)]
}
