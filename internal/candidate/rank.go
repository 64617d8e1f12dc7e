package candidate

import (
	"errors"
	"sort"
	"strings"

	"tubetap/internal/media"
)

// ErrNoCandidates is returned when the working set is empty after
// normalization discarded everything.
var ErrNoCandidates = errors.New("no usable media candidates")

// ErrNoAudioAvailable is returned by SelectAudio when no pure-audio stream
// exists anywhere in the working set.
var ErrNoAudioAvailable = errors.New("no pure-audio stream available")

// Selection is the outcome of ranking a candidate set against a desired
// output format.
type Selection struct {
	Winner media.Candidate

	// WinnerPureAudio reports whether the winner classified as pure audio.
	// Because any pure-audio candidate is promoted over a non-audio winner,
	// this is false only when the entire set lacks pure audio.
	WinnerPureAudio bool

	// RequiresTranscode is set when the caller wants mp3 and the winner is
	// not already mp3. An absent extension counts as non-mp3.
	RequiresTranscode bool
}

// Select scores and orders candidates against the desired extension and
// returns the single best one.
//
// Scoring, higher wins: +10 pure audio, +5 extension match, -2 video
// (a penalty, not an exclusion: providers mislabel, so a video-tagged stream
// may still win when nothing better exists), -0.001 per original list
// position as a stable tie-break. After sorting, a non-audio provisional
// winner is displaced by the best-ranked pure-audio candidate if one exists:
// pure audio is a hard preference once any is present, not just a bonus.
func Select(cands []media.Candidate, desiredExt string) (*Selection, error) {
	if len(cands) == 0 {
		return nil, ErrNoCandidates
	}

	want := strings.ToLower(strings.TrimSpace(desiredExt))

	type entry struct {
		c     media.Candidate
		cls   media.Classification
		score float64
	}
	ranked := make([]entry, 0, len(cands))
	for _, c := range cands {
		cls := Classify(c)
		score := 0.0
		if cls.PureAudio {
			score += 10
		}
		if want != "" && strings.ToLower(c.Extension) == want {
			score += 5
		}
		if cls.Video {
			score -= 2
		}
		score -= 0.001 * float64(c.Ordinal)
		ranked = append(ranked, entry{c: c, cls: cls, score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	winner := ranked[0]
	if !winner.cls.PureAudio {
		for _, e := range ranked {
			if e.cls.PureAudio {
				winner = e
				break
			}
		}
	}

	return &Selection{
		Winner:            winner.c,
		WinnerPureAudio:   winner.cls.PureAudio,
		RequiresTranscode: want == "mp3" && strings.ToLower(winner.c.Extension) != "mp3",
	}, nil
}

// SelectAudio is Select with the audio-only guarantee: it fails with
// ErrNoAudioAvailable when the set contains no pure-audio stream at all,
// instead of falling back to the best-scored video stream.
func SelectAudio(cands []media.Candidate, desiredExt string) (*Selection, error) {
	sel, err := Select(cands, desiredExt)
	if err != nil {
		return nil, err
	}
	if !sel.WinnerPureAudio {
		return nil, ErrNoAudioAvailable
	}
	return sel, nil
}
