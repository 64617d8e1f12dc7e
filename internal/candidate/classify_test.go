package candidate

import (
	"testing"

	"tubetap/internal/media"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		c         media.Candidate
		pureAudio bool
		video     bool
	}{
		{
			"declared audio",
			media.Candidate{SourceURL: "https://x/a", Kind: media.KindAudio},
			true, false,
		},
		{
			"declared audio overrides video mime",
			media.Candidate{SourceURL: "https://x/a", Kind: media.KindAudio, MimeType: "video/mp4"},
			true, false,
		},
		{
			"audio mime",
			media.Candidate{SourceURL: "https://x/a", MimeType: "audio/mpeg"},
			true, false,
		},
		{
			"audio mime with codecs",
			media.Candidate{SourceURL: "https://x/a", MimeType: "audio/mp4; codecs=mp4a.40.2"},
			true, false,
		},
		{
			"audio extension",
			media.Candidate{SourceURL: "https://x/a", Extension: "flac"},
			true, false,
		},
		{
			"shared container counts as audio without video signal",
			media.Candidate{SourceURL: "https://x/a", Extension: "webm"},
			true, false,
		},
		{
			"shared container with declared video",
			media.Candidate{SourceURL: "https://x/a", Extension: "webm", Kind: media.KindVideo},
			false, true,
		},
		{
			"shared container with video mime",
			media.Candidate{SourceURL: "https://x/a", Extension: "webm", MimeType: "video/webm"},
			false, true,
		},
		{
			"resolution label beats ambiguous extension",
			media.Candidate{SourceURL: "https://x/a", Extension: "mkv", Label: "720p"},
			false, true,
		},
		{
			"resolution label in longer text",
			media.Candidate{SourceURL: "https://x/a", Label: "hd 1080p stream"},
			false, true,
		},
		{
			"declared video",
			media.Candidate{SourceURL: "https://x/a", Kind: media.KindVideo},
			false, true,
		},
		{
			"video mime",
			media.Candidate{SourceURL: "https://x/a", MimeType: "video/mp4"},
			false, true,
		},
		{
			"no signals at all",
			media.Candidate{SourceURL: "https://x/a"},
			false, false,
		},
		{
			"bitrate label is not a resolution",
			media.Candidate{SourceURL: "https://x/a", Label: "128kbps"},
			false, false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.c)
			if got.PureAudio != tt.pureAudio || got.Video != tt.video {
				t.Errorf("Classify() = {PureAudio:%v Video:%v}, want {PureAudio:%v Video:%v}",
					got.PureAudio, got.Video, tt.pureAudio, tt.video)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	c := media.Candidate{SourceURL: "https://x/a.webm", Extension: "webm", Label: "160kbps"}
	first := Classify(c)
	for i := 0; i < 100; i++ {
		if got := Classify(c); got != first {
			t.Fatalf("Classify() changed between calls: %+v vs %+v", got, first)
		}
	}
}
