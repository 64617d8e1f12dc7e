package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"tubetap/internal/config"
	"tubetap/internal/deliver"
	"tubetap/internal/extract"
	"tubetap/internal/history"
	"tubetap/internal/httputil"
	"tubetap/internal/provider"
	"tubetap/internal/title"
)

var flagDownload bool

var extractCmd = &cobra.Command{
	Use:   "extract <video-url>",
	Short: "Extract the audio stream of a single video",
	Args:  cobra.ExactArgs(1),
	RunE:  extractRun,
}

func init() {
	extractCmd.Flags().BoolVarP(&flagDownload, "download", "d", false, "Download the selected stream to the download directory")
}

func extractRun(cmd *cobra.Command, args []string) error {
	videoURL := args[0]
	if err := httputil.ValidateURL(videoURL); err != nil {
		return fmt.Errorf("invalid video URL: %w", err)
	}

	token := config.Token()
	if token == "" {
		return fmt.Errorf("APIFY_TOKEN is not set")
	}

	runner := provider.NewApify(token)
	runner.BaseURL = cfg.APIBase
	runner.ProxyCountry = cfg.ProxyCountry

	orch := extract.New(runner, cfg.Policy())
	pageClient := httputil.NewClient()
	orch.TitleFallback = func(ctx context.Context, u string) (string, error) {
		return title.Lookup(ctx, pageClient, u)
	}

	debugf("extracting %s as %s", videoURL, cfg.Format)
	res, err := orch.Run(cmd.Context(), videoURL, extract.Options{
		Format:       cfg.Format,
		PollInterval: cfg.PollInterval(),
		MaxWait:      cfg.MaxWait(),
		RequireAudio: true,
	})
	if err != nil {
		return err
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
	} else {
		printResult(res)
	}

	recordExtraction(cmd.Context(), videoURL, res)

	if flagDownload {
		return downloadResult(cmd.Context(), res)
	}
	return nil
}

func printResult(res *extract.Result) {
	w := res.Selection.Winner
	fmt.Printf("Title:     %s\n", res.Title)
	fmt.Printf("Selected:  %s", w.Extension)
	if w.Label != "" {
		fmt.Printf(" (%s)", w.Label)
	}
	fmt.Println()
	fmt.Printf("URL:       %s\n", w.SourceURL)
	fmt.Printf("Streams:   %d\n", len(res.Candidates))
	if res.Selection.RequiresTranscode {
		fmt.Println("Transcode: required for mp3")
	}
}

// recordExtraction writes a history entry; failures only warn.
func recordExtraction(ctx context.Context, videoURL string, res *extract.Result) {
	store, err := openHistory()
	if err != nil {
		debugf("history disabled: %v", err)
		return
	}
	defer store.Close()

	err = store.Record(ctx, history.Entry{
		VideoURL:   videoURL,
		Title:      res.Title,
		Format:     cfg.Format,
		Extension:  res.Selection.Winner.Extension,
		Actor:      res.Actor,
		Transcoded: res.Selection.RequiresTranscode,
	})
	if err != nil {
		debugf("recording history: %v", err)
	}
}

// downloadResult saves the selected stream into the configured download
// directory, transcoding when the desired format requires it.
func downloadResult(ctx context.Context, res *extract.Result) error {
	dir, err := cfg.ExpandDownloadDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating download directory: %w", err)
	}

	base := res.Title
	if base == "" {
		base = "download"
	}

	client := httputil.NewStreamClient()
	sel := res.Selection

	if sel.RequiresTranscode {
		path, err := httputil.SafeDownloadPath(dir, deliver.OutputFilename(base, cfg.Format))
		if err != nil {
			return err
		}
		debugf("transcoding to %s", path)
		if err := deliver.TranscodeToFile(ctx, client, sel.Winner.SourceURL, cfg.Format, path); err != nil {
			return err
		}
		fmt.Printf("Saved: %s\n", path)
		return nil
	}

	ext := sel.Winner.Extension
	if ext == "" {
		ext = cfg.Format
	}
	path, err := httputil.SafeDownloadPath(dir, deliver.OutputFilename(base, ext))
	if err != nil {
		return err
	}
	if err := saveStream(ctx, client, sel.Winner.SourceURL, path); err != nil {
		return err
	}
	fmt.Printf("Saved: %s\n", path)
	return nil
}

func saveStream(ctx context.Context, client *http.Client, mediaURL, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return fmt.Errorf("creating download request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("fetching stream: status %d", resp.StatusCode)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(path)
		return fmt.Errorf("writing stream: %w", err)
	}
	return nil
}
