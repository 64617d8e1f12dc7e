package extract

import (
	"fmt"

	"tubetap/internal/httputil"
	"tubetap/internal/media"
)

// mediasFromItem pulls the media descriptor list out of a provider result
// item. The primary shape is result.medias; some actors instead emit a flat
// downloadable_audio_links list, which is mapped into the common descriptor
// shape (with a synthesized audio mime type) before normalization.
func mediasFromItem(item media.RawDescriptor) []media.RawDescriptor {
	if result, ok := item["result"].(map[string]any); ok {
		if arr, ok := result["medias"].([]any); ok && len(arr) > 0 {
			return toDescriptors(arr)
		}
	}

	arr, ok := item["downloadable_audio_links"].([]any)
	if !ok {
		return nil
	}

	var out []media.RawDescriptor
	for _, v := range arr {
		link, ok := v.(map[string]any)
		if !ok {
			continue
		}
		ext := firstString(link["ext"], link["extension"])
		d := media.RawDescriptor{
			"url":       link["url"],
			"extension": ext,
			"type":      "audio",
			"label":     firstString(link["format"], link["language"], ext),
			"mimeType":  audioMimeForExt(ext),
		}
		if lang := stringOf(link["language"]); lang != "" {
			d["language"] = lang
		}
		if b := stringOf(link["bitrate"]); b != "" {
			d["bitrate"] = b
		}
		out = append(out, d)
	}
	return out
}

func toDescriptors(arr []any) []media.RawDescriptor {
	var out []media.RawDescriptor
	for _, v := range arr {
		if d, ok := v.(map[string]any); ok {
			out = append(out, d)
		}
	}
	return out
}

// audioMimeForExt maps an audio container extension to its mime type.
func audioMimeForExt(ext string) string {
	switch ext {
	case "mp3":
		return "audio/mpeg"
	case "m4a":
		return "audio/mp4"
	case "webm", "opus":
		return "audio/webm"
	case "aac":
		return "audio/aac"
	default:
		return "audio/*"
	}
}

// resolveTitle finds a display title in the result item, checking the known
// field aliases in order, then falls back to an "author - title" composite.
// The result is sanitized for use in filenames.
func resolveTitle(item media.RawDescriptor) string {
	result, _ := item["result"].(map[string]any)

	candidates := []string{
		stringOf(item["title"]),
		stringOf(resultField(result, "title")),
		stringOf(item["videoTitle"]),
		stringOf(item["video_title"]),
		stringOf(item["name"]),
	}
	if meta, ok := item["metadata"].(map[string]any); ok {
		candidates = append(candidates, stringOf(meta["title"]))
	}
	if result != nil {
		author := stringOf(result["author"])
		title := stringOf(result["title"])
		if author != "" && title != "" {
			candidates = append(candidates, fmt.Sprintf("%s - %s", author, title))
		}
	}

	for _, c := range candidates {
		if s := httputil.SanitizeTitle(c); s != "" {
			return s
		}
	}
	return ""
}

func resultField(result map[string]any, key string) any {
	if result == nil {
		return nil
	}
	return result[key]
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}

func firstString(vals ...any) string {
	for _, v := range vals {
		if s := stringOf(v); s != "" {
			return s
		}
	}
	return ""
}
