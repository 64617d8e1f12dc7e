package extract

import (
	"testing"

	"tubetap/internal/media"
)

func TestMediasFromItemPrimaryShape(t *testing.T) {
	item := media.RawDescriptor{
		"result": map[string]any{
			"medias": []any{
				map[string]any{"url": "https://x/a.mp3", "type": "audio"},
				map[string]any{"url": "https://x/b.webm"},
			},
		},
	}

	medias := mediasFromItem(item)
	if len(medias) != 2 {
		t.Fatalf("len(medias) = %d, want 2", len(medias))
	}
	if medias[0]["url"] != "https://x/a.mp3" {
		t.Errorf("medias[0][url] = %v", medias[0]["url"])
	}
}

func TestMediasFromItemAudioLinksFallback(t *testing.T) {
	item := media.RawDescriptor{
		"downloadable_audio_links": []any{
			map[string]any{
				"url":     "https://x/a.m4a",
				"ext":     "m4a",
				"format":  "m4a 128kbps",
				"bitrate": "128 kbps",
			},
			map[string]any{
				"url":      "https://x/b.opus",
				"ext":      "opus",
				"language": "en",
			},
		},
	}

	medias := mediasFromItem(item)
	if len(medias) != 2 {
		t.Fatalf("len(medias) = %d, want 2", len(medias))
	}
	if medias[0]["mimeType"] != "audio/mp4" {
		t.Errorf("m4a mime = %v, want audio/mp4", medias[0]["mimeType"])
	}
	if medias[0]["type"] != "audio" {
		t.Errorf("type = %v, want audio", medias[0]["type"])
	}
	if medias[0]["label"] != "m4a 128kbps" {
		t.Errorf("label = %v, want format string", medias[0]["label"])
	}
	if medias[1]["mimeType"] != "audio/webm" {
		t.Errorf("opus mime = %v, want audio/webm", medias[1]["mimeType"])
	}
	if medias[1]["label"] != "en" {
		t.Errorf("label = %v, want language fallback", medias[1]["label"])
	}
}

func TestMediasFromItemEmpty(t *testing.T) {
	if got := mediasFromItem(media.RawDescriptor{}); got != nil {
		t.Errorf("mediasFromItem(empty) = %v, want nil", got)
	}
}

func TestResolveTitle(t *testing.T) {
	tests := []struct {
		name string
		item media.RawDescriptor
		want string
	}{
		{
			"top-level title",
			media.RawDescriptor{"title": "Plain Title"},
			"Plain Title",
		},
		{
			"result title when top-level missing",
			media.RawDescriptor{"result": map[string]any{"title": "Nested"}},
			"Nested",
		},
		{
			"snake case alias",
			media.RawDescriptor{"video_title": "Snake"},
			"Snake",
		},
		{
			"metadata title",
			media.RawDescriptor{"metadata": map[string]any{"title": "Meta"}},
			"Meta",
		},
		{
			"sanitized",
			media.RawDescriptor{"title": `Bad: "Chars" | Here`},
			"Bad- -Chars- - Here",
		},
		{
			"nothing",
			media.RawDescriptor{},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveTitle(tt.item); got != tt.want {
				t.Errorf("resolveTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}
