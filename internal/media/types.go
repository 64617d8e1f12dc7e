// Package media defines shared types for the tubetap application.
package media

import "encoding/json"

// RawDescriptor is one untyped media record as returned by an extraction
// provider. Field names and shapes vary between providers; no invariants hold.
type RawDescriptor = map[string]any

// Kind is a provider's explicit declaration of what a stream contains.
type Kind int

const (
	KindUnknown Kind = iota
	KindAudio
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindAudio:
		return "audio"
	case KindVideo:
		return "video"
	default:
		return "unknown"
	}
}

// MarshalJSON emits the provider-style string form ("audio", "video").
// Unknown marshals as the empty string.
func (k Kind) MarshalJSON() ([]byte, error) {
	switch k {
	case KindAudio, KindVideo:
		return json.Marshal(k.String())
	default:
		return json.Marshal("")
	}
}

// UnmarshalJSON accepts the provider-style string form.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "audio":
		*k = KindAudio
	case "video":
		*k = KindVideo
	default:
		*k = KindUnknown
	}
	return nil
}

// Candidate is the canonical, normalized form of a RawDescriptor.
// Every Candidate in a working set has a non-empty SourceURL; descriptors
// without a usable URL are discarded during normalization and never reach
// selection.
type Candidate struct {
	SourceURL   string  `json:"url"`
	Extension   string  `json:"extension,omitempty"` // lower-cased container/file extension
	MimeType    string  `json:"mimeType,omitempty"`
	Kind        Kind    `json:"type"`
	Label       string  `json:"label,omitempty"` // free-text quality label, e.g. "720p", "128kbps"
	BitrateKbps float64 `json:"bitrateKbps,omitempty"`

	// Ordinal is the position in the provider's original result list.
	// Used only as the lowest-priority tie-break during ranking.
	Ordinal int `json:"-"`
}

// Classification is the derived audio/video tagging of a Candidate.
// The two flags are not mutually exclusive in provider data; classification
// resolves the ambiguity deterministically.
type Classification struct {
	PureAudio bool
	Video     bool
}

// Extraction is the outcome of one completed extraction request.
type Extraction struct {
	Title           string      `json:"title,omitempty"`
	Medias          []Candidate `json:"medias"`
	ChosenMedia     *Candidate  `json:"chosenMedia"`
	TranscodeNeeded bool        `json:"transcodeNeeded"`
	HasNativeForMp3 bool        `json:"hasNativeForMp3"`
}
