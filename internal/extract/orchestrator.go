// Package extract drives an external extraction job from start to selected
// candidate: start the run, poll it to a terminal state, fetch its result
// set, then normalize, classify, and rank the streams it produced.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tubetap/internal/candidate"
	"tubetap/internal/media"
	"tubetap/internal/provider"
)

// Options configures one extraction request. PollInterval and MaxWait have
// no baked-in defaults: call sites disagree on sensible values, so the
// configuration layer owns them and they must be set here.
type Options struct {
	// Format is the desired output extension, e.g. "mp3".
	Format string

	PollInterval time.Duration
	MaxWait      time.Duration

	// RequireAudio enforces the audio-only guarantee: fail with
	// candidate.ErrNoAudioAvailable rather than fall back to a video stream.
	RequireAudio bool
}

func (o Options) validate() error {
	if o.PollInterval <= 0 {
		return errors.New("poll interval must be set")
	}
	if o.MaxWait <= 0 {
		return errors.New("wait budget must be set")
	}
	return nil
}

// Result is a completed extraction: the full candidate list, the selection,
// and display metadata.
type Result struct {
	Title           string
	Candidates      []media.Candidate
	Selection       *candidate.Selection
	HasNativeForMp3 bool

	// Actor is the actor whose run produced this result.
	Actor string
}

// Orchestrator runs extraction jobs against a Runner, retrying across the
// fallback actors of its AttemptPolicy. Each Run call owns its job state
// exclusively; an Orchestrator is safe for concurrent use.
type Orchestrator struct {
	Runner provider.Runner
	Policy provider.AttemptPolicy

	// TitleFallback, when set, resolves a display title from the source URL
	// if the provider result carries none.
	TitleFallback func(ctx context.Context, videoURL string) (string, error)

	Logger *slog.Logger
}

// New creates an orchestrator with the given runner and attempt policy.
func New(runner provider.Runner, policy provider.AttemptPolicy) *Orchestrator {
	return &Orchestrator{Runner: runner, Policy: policy}
}

func (o *Orchestrator) log() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Run executes one extraction request end to end. Provider-side failures
// (start, poll, fetch) move on to the next fallback actor; selection verdicts
// (no candidates, no audio) are final, since another actor run would see the
// same source.
func (o *Orchestrator) Run(ctx context.Context, videoURL string, opts Options) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	attempts := o.Policy.Attempts()
	var attemptErrs []AttemptError
	for i := 0; i < attempts; i++ {
		actor := o.Policy.ActorFor(i)
		res, err := o.runOnce(ctx, videoURL, actor, opts)
		if err == nil {
			return res, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		if errors.Is(err, candidate.ErrNoCandidates) || errors.Is(err, candidate.ErrNoAudioAvailable) {
			return nil, err
		}
		o.log().Warn("extraction attempt failed",
			"actor", actor, "attempt", i+1, "error", err)
		attemptErrs = append(attemptErrs, AttemptError{Actor: actor, Err: err})
	}

	return nil, &AllAttemptsFailedError{Attempts: attemptErrs}
}

// jobState tracks one run through its lifecycle. Transitions come only from
// observed poll responses, consumed strictly in issue order; once terminal,
// the state never changes again.
type jobState struct {
	job         provider.Job
	status      provider.Status
	resultSetID string
}

func (s *jobState) observe(js provider.JobStatus) {
	if s.status.Terminal() {
		return
	}
	s.status = js.Status
	if js.ResultSetID != "" {
		s.resultSetID = js.ResultSetID
	}
}

func (o *Orchestrator) runOnce(ctx context.Context, videoURL, actor string, opts Options) (*Result, error) {
	job, err := o.Runner.StartJob(ctx, videoURL, opts.Format, actor)
	if err != nil {
		return nil, &StartError{Actor: actor, Err: err}
	}
	o.log().Debug("extraction run started", "actor", actor, "run", job.ID)

	state := jobState{job: job, status: provider.StatusReady}
	if err := o.awaitCompletion(ctx, &state, opts); err != nil {
		return nil, err
	}

	raws, err := o.Runner.ResultSet(ctx, state.resultSetID)
	if err != nil {
		return nil, fmt.Errorf("fetching result set: %w", err)
	}

	res, err := ResultFromSet(raws, opts.Format, opts.RequireAudio)
	if err != nil {
		return nil, err
	}
	res.Actor = actor

	if res.Title == "" && o.TitleFallback != nil {
		if t, err := o.TitleFallback(ctx, videoURL); err == nil {
			res.Title = t
		}
	}
	return res, nil
}

// ResultFromSet builds an extraction result from a fetched result set:
// normalize the first item's streams, rank them, resolve the title.
// Providers emit one result per job; later items are ignored.
func ResultFromSet(raws []media.RawDescriptor, format string, requireAudio bool) (*Result, error) {
	if len(raws) == 0 {
		return nil, ErrNoResults
	}

	first := raws[0]
	cands := candidate.NormalizeAll(mediasFromItem(first))

	var sel *candidate.Selection
	var err error
	if requireAudio {
		sel, err = candidate.SelectAudio(cands, format)
	} else {
		sel, err = candidate.Select(cands, format)
	}
	if err != nil {
		return nil, err
	}

	return &Result{
		Title:           resolveTitle(first),
		Candidates:      cands,
		Selection:       sel,
		HasNativeForMp3: hasNativeForMp3(cands),
	}, nil
}

// awaitCompletion polls the run at the configured interval until it reaches
// a terminal state or the wait budget runs out. The sleep between polls is
// context-aware; no poll is issued after cancellation.
func (o *Orchestrator) awaitCompletion(ctx context.Context, state *jobState, opts Options) error {
	maxPolls := int(opts.MaxWait / opts.PollInterval)
	if opts.MaxWait%opts.PollInterval != 0 {
		maxPolls++
	}
	if maxPolls < 1 {
		maxPolls = 1
	}

	timer := time.NewTimer(opts.PollInterval)
	defer timer.Stop()

	for poll := 0; poll < maxPolls; poll++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		js, err := o.Runner.JobStatus(ctx, state.job)
		if err != nil {
			return fmt.Errorf("polling run status: %w", err)
		}
		state.observe(js)

		switch {
		case state.status == provider.StatusSucceeded:
			if state.resultSetID == "" {
				return fmt.Errorf("run %s succeeded without a result set id", state.job.ID)
			}
			return nil
		case state.status.Terminal():
			return &RunFailedError{Status: state.status}
		}

		timer.Reset(opts.PollInterval)
	}

	return ErrRunTimeout
}

// nativeMp3Friendly lists containers the transcoder accepts as direct input
// for an mp3 target without a lossy detour.
var nativeMp3Friendly = map[string]bool{
	"mp3": true, "m4a": true, "opus": true, "webm": true, "aac": true,
}

func hasNativeForMp3(cands []media.Candidate) bool {
	for _, c := range cands {
		if nativeMp3Friendly[c.Extension] {
			return true
		}
	}
	return false
}
