// Package deliver streams a selected media candidate back to the caller,
// either relaying the upstream bytes as-is or piping them through ffmpeg
// into the desired format.
package deliver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"tubetap/internal/httputil"
)

// UpstreamError reports a non-2xx response from the media host.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream fetch failed with status %d", e.Status)
}

// TranscodeError reports an ffmpeg failure before any response bytes were
// written. Failures mid-stream abort the connection instead.
type TranscodeError struct {
	Detail string
	Err    error
}

func (e *TranscodeError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("transcode failed: %v: %s", e.Err, e.Detail)
	}
	return fmt.Sprintf("transcode failed: %v", e.Err)
}

func (e *TranscodeError) Unwrap() error { return e.Err }

// fetchUpstream GETs the media URL and verifies a 2xx response.
func fetchUpstream(ctx context.Context, client *http.Client, mediaURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating upstream request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching upstream: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &UpstreamError{Status: resp.StatusCode}
	}
	return resp, nil
}

// Relay fetches the source URL and copies its bytes to the response as-is.
// Content-Type comes from the upstream response, falling back to mimeHint.
// Once the copy has begun, any failure aborts the connection: headers are
// out, so there is no channel left for an error payload.
func Relay(w http.ResponseWriter, r *http.Request, client *http.Client, mediaURL, filename, mimeHint string) error {
	resp, err := fetchUpstream(r.Context(), client, mediaURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mimeHint
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	if length := resp.Header.Get("Content-Length"); length != "" {
		w.Header().Set("Content-Length", length)
	}
	if filename != "" {
		w.Header().Set("Content-Disposition", httputil.ContentDisposition(filename))
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		panic(http.ErrAbortHandler)
	}
	return nil
}

// OutputFilename builds the download filename for a given base name and
// target format, appending the extension when missing.
func OutputFilename(base, format string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = "download"
	}
	if !strings.HasSuffix(strings.ToLower(base), "."+format) {
		base += "." + format
	}
	return base
}

// ContentTypeForFormat maps a target audio format to its response mime type.
func ContentTypeForFormat(format string) string {
	if format == "mp3" {
		return "audio/mpeg"
	}
	return "audio/" + format
}
