package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"tubetap/internal/candidate"
	"tubetap/internal/deliver"
	"tubetap/internal/extract"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, errorResponse{Error: msg, Details: details})
}

// failExtraction maps an extraction or delivery error to its HTTP status:
// caller mistakes are 400, upstream extraction failures are 502, local
// failures are 500.
func failExtraction(w http.ResponseWriter, err error) {
	writeError(w, statusForError(err), publicMessage(err), detailsFor(err))
}

func statusForError(err error) int {
	var (
		startErr     *extract.StartError
		runFailed    *extract.RunFailedError
		allFailed    *extract.AllAttemptsFailedError
		upstreamErr  *deliver.UpstreamError
		transcodeErr *deliver.TranscodeError
	)
	switch {
	case errors.Is(err, candidate.ErrNoCandidates),
		errors.Is(err, candidate.ErrNoAudioAvailable),
		errors.Is(err, extract.ErrRunTimeout),
		errors.Is(err, extract.ErrNoResults),
		errors.As(err, &startErr),
		errors.As(err, &runFailed),
		errors.As(err, &allFailed),
		errors.As(err, &upstreamErr):
		return http.StatusBadGateway
	case errors.As(err, &transcodeErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage gives the client a stable, human-readable summary per error
// class without leaking internals.
func publicMessage(err error) string {
	var upstreamErr *deliver.UpstreamError
	switch {
	case errors.Is(err, candidate.ErrNoAudioAvailable):
		return "no audio stream available for this video"
	case errors.Is(err, candidate.ErrNoCandidates):
		return "extraction produced no usable streams"
	case errors.Is(err, extract.ErrRunTimeout):
		return "extraction timed out"
	case errors.Is(err, extract.ErrNoResults):
		return "extraction produced no results"
	case errors.As(err, &upstreamErr):
		return "media host rejected the fetch"
	default:
		return "extraction failed"
	}
}

func detailsFor(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
