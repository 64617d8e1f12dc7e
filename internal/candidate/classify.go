package candidate

import (
	"regexp"

	"tubetap/internal/media"
)

// audioExtensions are containers recognized as audio-capable. webm and ogg
// are shared containers and are only treated as audio when no video signal
// contradicts them.
var audioExtensions = map[string]bool{
	"mp3": true, "m4a": true, "webm": true, "opus": true,
	"ogg": true, "aac": true, "wav": true, "flac": true,
}

var (
	// resolutionLabel matches quality labels such as "720p" or "1080p".
	// A resolution-style label is the strongest available video signal when
	// codec information is absent.
	resolutionLabel = regexp.MustCompile(`\b\d{3,4}p\b`)

	audioMime = regexp.MustCompile(`(?i)(^|[\s;])\s*audio/`)
	videoMime = regexp.MustCompile(`(?i)(^|[\s;])\s*video/`)
)

// Classify tags a candidate as pure audio, video, or neither. It is a pure
// function: codec and declared-type signals take precedence over the file
// extension, which is ambiguous for shared containers.
func Classify(c media.Candidate) media.Classification {
	video := c.Kind == media.KindVideo || videoMime.MatchString(c.MimeType)

	switch {
	case c.Kind == media.KindAudio:
		return media.Classification{PureAudio: true}
	case audioMime.MatchString(c.MimeType) && !videoMime.MatchString(c.MimeType):
		return media.Classification{PureAudio: true, Video: video}
	case audioExtensions[c.Extension] && c.Kind != media.KindVideo && !videoMime.MatchString(c.MimeType):
		return media.Classification{PureAudio: true}
	case resolutionLabel.MatchString(c.Label):
		return media.Classification{Video: true}
	default:
		return media.Classification{Video: video}
	}
}
