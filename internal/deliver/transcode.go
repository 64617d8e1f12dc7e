package deliver

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"

	"tubetap/internal/httputil"
)

// Transcode fetches the source URL, pipes it through ffmpeg into the target
// format, and streams the output to the response.
//
// ffmpeg failures before the first output byte become a TranscodeError the
// handler can still turn into a JSON response. Failures after the stream has
// begun abort the connection: a truncated download is the only honest signal
// once headers are sent.
func Transcode(w http.ResponseWriter, r *http.Request, client *http.Client, mediaURL, format, filename string) error {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return &TranscodeError{Err: fmt.Errorf("ffmpeg not found in PATH: %w", err)}
	}

	resp, err := fetchUpstream(r.Context(), client, mediaURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	cmd := exec.CommandContext(r.Context(), ffmpegPath, transcodeArgs(format)...)
	cmd.Stdin = resp.Body

	var stderr bytes.Buffer
	cmd.Stderr = &limitedWriter{w: &stderr, n: 4096}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &TranscodeError{Err: fmt.Errorf("creating stdout pipe: %w", err)}
	}

	if err := cmd.Start(); err != nil {
		return &TranscodeError{Err: fmt.Errorf("starting ffmpeg: %w", err)}
	}

	// Hold headers until ffmpeg proves it can produce output; a bad input
	// stream fails here and can still be reported as JSON.
	first := make([]byte, 32*1024)
	n, readErr := stdout.Read(first)
	if n == 0 {
		waitErr := cmd.Wait()
		if waitErr == nil && readErr == io.EOF {
			waitErr = fmt.Errorf("ffmpeg produced no output")
		}
		return &TranscodeError{Err: waitErr, Detail: stderr.String()}
	}

	w.Header().Set("Content-Type", ContentTypeForFormat(format))
	w.Header().Set("Content-Disposition", httputil.ContentDisposition(OutputFilename(filename, format)))

	if _, err := w.Write(first[:n]); err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		panic(http.ErrAbortHandler)
	}

	_, copyErr := io.Copy(w, stdout)
	waitErr := cmd.Wait()
	if copyErr != nil || waitErr != nil {
		panic(http.ErrAbortHandler)
	}
	return nil
}

// TranscodeToFile fetches the source URL and writes the transcoded output to
// path. Used by the CLI; the HTTP path streams through Transcode instead.
func TranscodeToFile(ctx context.Context, client *http.Client, mediaURL, format, path string) error {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return &TranscodeError{Err: fmt.Errorf("ffmpeg not found in PATH: %w", err)}
	}

	resp, err := fetchUpstream(ctx, client, mediaURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer out.Close()

	cmd := exec.CommandContext(ctx, ffmpegPath, transcodeArgs(format)...)
	cmd.Stdin = resp.Body
	cmd.Stdout = out

	var stderr bytes.Buffer
	cmd.Stderr = &limitedWriter{w: &stderr, n: 4096}

	if err := cmd.Run(); err != nil {
		os.Remove(path)
		return &TranscodeError{Err: err, Detail: stderr.String()}
	}
	return nil
}

// transcodeArgs builds the ffmpeg invocation for the target format. mp3 is
// re-encoded with libmp3lame at 192k; other targets remux the audio stream.
func transcodeArgs(format string) []string {
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", "pipe:0",
		"-vn",
	}
	if format == "mp3" {
		args = append(args, "-acodec", "libmp3lame", "-b:a", "192k")
	} else {
		args = append(args, "-acodec", "copy")
	}
	return append(args, "-f", format, "pipe:1")
}

// limitedWriter keeps the first n bytes and drops the rest; ffmpeg's stderr
// is only interesting for diagnostics.
type limitedWriter struct {
	w *bytes.Buffer
	n int
}

func (l *limitedWriter) Write(p []byte) (int, error) {
	if remaining := l.n - l.w.Len(); remaining > 0 {
		if len(p) > remaining {
			l.w.Write(p[:remaining])
		} else {
			l.w.Write(p)
		}
	}
	return len(p), nil
}
