// Package candidate turns heterogeneous provider media descriptors into
// canonical candidates, classifies them as audio or video, and selects the
// single best match for a desired output format.
package candidate

import (
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"

	"tubetap/internal/media"
)

// urlAliases are the flat fields checked, in order, for a usable download URL.
// Providers disagree on naming; the first non-empty string wins. The nested
// shapes file.url and files[0].url are checked after these.
var urlAliases = []string{"url", "downloadUrl", "downloadURL", "audioUrl", "fileUrl", "file_url"}

var bitratePattern = regexp.MustCompile(`(?i)([\d.]+)\s*kbps`)

// Normalize converts one raw descriptor into a canonical candidate.
// Descriptors without a resolvable download URL are discarded (ok == false);
// they never reach classification or ranking. Normalize is a pure transform.
func Normalize(raw media.RawDescriptor, ordinal int) (c media.Candidate, ok bool) {
	src := resolveURL(raw)
	if src == "" {
		return media.Candidate{}, false
	}

	mimeType := strings.TrimSpace(stringField(raw["mimeType"]))

	return media.Candidate{
		SourceURL:   src,
		Extension:   resolveExtension(raw, mimeType, src),
		MimeType:    mimeType,
		Kind:        resolveKind(raw),
		Label:       strings.TrimSpace(stringField(raw["label"])),
		BitrateKbps: resolveBitrate(raw),
		Ordinal:     ordinal,
	}, true
}

// NormalizeAll maps a raw result list into canonical candidates, silently
// discarding malformed entries. Ordinals record the original list positions.
func NormalizeAll(raws []media.RawDescriptor) []media.Candidate {
	var cands []media.Candidate
	for i, raw := range raws {
		if c, ok := Normalize(raw, i); ok {
			cands = append(cands, c)
		}
	}
	return cands
}

// resolveURL finds the download URL across the known field aliases.
func resolveURL(raw media.RawDescriptor) string {
	for _, key := range urlAliases {
		if s := strings.TrimSpace(stringField(raw[key])); s != "" {
			return s
		}
	}
	if file, ok := raw["file"].(map[string]any); ok {
		if s := strings.TrimSpace(stringField(file["url"])); s != "" {
			return s
		}
	}
	if files, ok := raw["files"].([]any); ok && len(files) > 0 {
		if file, ok := files[0].(map[string]any); ok {
			if s := strings.TrimSpace(stringField(file["url"])); s != "" {
				return s
			}
		}
	}
	return ""
}

// resolveExtension resolves the container extension with fixed precedence:
// explicit "extension" field, explicit "ext" field, the mimeType subtype,
// then the trailing path segment of the URL. First non-empty match wins.
func resolveExtension(raw media.RawDescriptor, mimeType, srcURL string) string {
	if s := strings.TrimSpace(stringField(raw["extension"])); s != "" {
		return strings.ToLower(s)
	}
	if s := strings.TrimSpace(stringField(raw["ext"])); s != "" {
		return strings.ToLower(s)
	}
	if sub := mimeSubtype(mimeType); sub != "" {
		return sub
	}
	if u, err := url.Parse(srcURL); err == nil {
		if ext := strings.TrimPrefix(path.Ext(u.Path), "."); ext != "" {
			return strings.ToLower(ext)
		}
	}
	return ""
}

// mimeSubtype extracts "mp4" from "audio/mp4; codecs=...", lower-cased.
func mimeSubtype(mimeType string) string {
	_, sub, found := strings.Cut(mimeType, "/")
	if !found {
		return ""
	}
	sub, _, _ = strings.Cut(sub, ";")
	return strings.ToLower(strings.TrimSpace(sub))
}

// resolveKind reads the provider's explicit stream-type declaration.
func resolveKind(raw media.RawDescriptor) media.Kind {
	if b, ok := raw["is_audio"].(bool); ok && b {
		return media.KindAudio
	}
	switch strings.ToLower(strings.TrimSpace(stringField(raw["type"]))) {
	case "audio":
		return media.KindAudio
	case "video":
		return media.KindVideo
	}
	return media.KindUnknown
}

// resolveBitrate reads a numeric bitrateKbps field, or parses a textual
// bitrate such as "128 kbps".
func resolveBitrate(raw media.RawDescriptor) float64 {
	if f, ok := numberField(raw["bitrateKbps"]); ok {
		return f
	}
	if s := stringField(raw["bitrate"]); s != "" {
		if m := bitratePattern.FindStringSubmatch(s); m != nil {
			if f, err := strconv.ParseFloat(m[1], 64); err == nil {
				return f
			}
		}
	}
	return 0
}

func stringField(v any) string {
	s, _ := v.(string)
	return s
}

func numberField(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
