package candidate

import (
	"testing"

	"tubetap/internal/media"
)

func TestNormalizeDiscardsWithoutURL(t *testing.T) {
	tests := []struct {
		name string
		raw  media.RawDescriptor
	}{
		{"empty descriptor", media.RawDescriptor{}},
		{"only metadata", media.RawDescriptor{"extension": "mp3", "type": "audio"}},
		{"empty url string", media.RawDescriptor{"url": ""}},
		{"whitespace url", media.RawDescriptor{"url": "   "}},
		{"url wrong type", media.RawDescriptor{"url": 42}},
		{"empty nested file", media.RawDescriptor{"file": map[string]any{"name": "a.mp3"}}},
		{"empty files array", media.RawDescriptor{"files": []any{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if c, ok := Normalize(tt.raw, 0); ok {
				t.Errorf("Normalize() = %+v, want discard", c)
			}
		})
	}
}

func TestNormalizeURLAliases(t *testing.T) {
	tests := []struct {
		name string
		raw  media.RawDescriptor
		want string
	}{
		{"url", media.RawDescriptor{"url": "https://x/a.mp3"}, "https://x/a.mp3"},
		{"downloadUrl", media.RawDescriptor{"downloadUrl": "https://x/b.mp3"}, "https://x/b.mp3"},
		{"fileUrl", media.RawDescriptor{"fileUrl": "https://x/c.mp3"}, "https://x/c.mp3"},
		{"audioUrl", media.RawDescriptor{"audioUrl": "https://x/d.mp3"}, "https://x/d.mp3"},
		{
			"nested file.url",
			media.RawDescriptor{"file": map[string]any{"url": "https://x/e.mp3"}},
			"https://x/e.mp3",
		},
		{
			"nested files[0].url",
			media.RawDescriptor{"files": []any{map[string]any{"url": "https://x/f.mp3"}}},
			"https://x/f.mp3",
		},
		{
			"url wins over downloadUrl",
			media.RawDescriptor{"url": "https://x/first.mp3", "downloadUrl": "https://x/second.mp3"},
			"https://x/first.mp3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := Normalize(tt.raw, 0)
			if !ok {
				t.Fatal("Normalize() discarded, want candidate")
			}
			if c.SourceURL != tt.want {
				t.Errorf("SourceURL = %q, want %q", c.SourceURL, tt.want)
			}
		})
	}
}

func TestNormalizeExtensionPrecedence(t *testing.T) {
	tests := []struct {
		name string
		raw  media.RawDescriptor
		want string
	}{
		{
			"explicit ext beats mime and URL",
			media.RawDescriptor{
				"url":      "https://x/stream.bin",
				"ext":      "m4a",
				"mimeType": "audio/mp4; codecs=mp4a.40.2",
			},
			"m4a",
		},
		{
			"extension beats ext",
			media.RawDescriptor{"url": "https://x/a", "extension": "OPUS", "ext": "webm"},
			"opus",
		},
		{
			"mime subtype when no explicit field",
			media.RawDescriptor{"url": "https://x/stream.bin", "mimeType": "audio/webm; codecs=opus"},
			"webm",
		},
		{
			"URL path as last resort",
			media.RawDescriptor{"url": "https://x/track.MP3?sig=abc"},
			"mp3",
		},
		{
			"nothing resolvable",
			media.RawDescriptor{"url": "https://x/stream"},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := Normalize(tt.raw, 0)
			if !ok {
				t.Fatal("Normalize() discarded, want candidate")
			}
			if c.Extension != tt.want {
				t.Errorf("Extension = %q, want %q", c.Extension, tt.want)
			}
		})
	}
}

func TestNormalizeKindAndBitrate(t *testing.T) {
	c, ok := Normalize(media.RawDescriptor{
		"url":      "https://x/a.webm",
		"is_audio": true,
		"bitrate":  "128.5 kbps",
	}, 3)
	if !ok {
		t.Fatal("Normalize() discarded, want candidate")
	}
	if c.Kind != media.KindAudio {
		t.Errorf("Kind = %v, want audio", c.Kind)
	}
	if c.BitrateKbps != 128.5 {
		t.Errorf("BitrateKbps = %v, want 128.5", c.BitrateKbps)
	}
	if c.Ordinal != 3 {
		t.Errorf("Ordinal = %d, want 3", c.Ordinal)
	}

	c, _ = Normalize(media.RawDescriptor{"url": "https://x/a", "type": "VIDEO"}, 0)
	if c.Kind != media.KindVideo {
		t.Errorf("Kind = %v, want video", c.Kind)
	}

	c, _ = Normalize(media.RawDescriptor{"url": "https://x/a", "bitrateKbps": 192.0}, 0)
	if c.BitrateKbps != 192 {
		t.Errorf("BitrateKbps = %v, want 192", c.BitrateKbps)
	}
}

func TestNormalizeAllDiscardsSilently(t *testing.T) {
	raws := []media.RawDescriptor{
		{"url": "https://x/a.mp3"},
		{"extension": "mp3"}, // no URL, dropped
		{"url": "https://x/b.webm"},
	}

	cands := NormalizeAll(raws)
	if len(cands) != 2 {
		t.Fatalf("NormalizeAll() returned %d candidates, want 2", len(cands))
	}
	if cands[0].Ordinal != 0 || cands[1].Ordinal != 2 {
		t.Errorf("ordinals = %d,%d, want original positions 0,2", cands[0].Ordinal, cands[1].Ordinal)
	}
}
