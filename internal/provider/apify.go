package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"tubetap/internal/httputil"
	"tubetap/internal/media"
)

// DefaultBaseURL is the Apify v2 API endpoint.
const DefaultBaseURL = "https://api.apify.com"

// Apify runs extraction jobs as Apify actor runs, polled over HTTP.
type Apify struct {
	// BaseURL allows pointing the client at a test server.
	BaseURL string
	Token   string

	// ProxyCountry pins the actor's proxy pool to one country when set.
	ProxyCountry string

	Client *http.Client
}

// NewApify creates an Apify runner with the production endpoint and a
// hardened client.
func NewApify(token string) *Apify {
	return &Apify{
		BaseURL: DefaultBaseURL,
		Token:   token,
		Client:  httputil.NewClient(),
	}
}

// runEnvelope tolerates both the documented {data: {...}} nesting and the
// bare shape some responses use.
type runEnvelope struct {
	Data runFields `json:"data"`
	runFields
}

type runFields struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	DefaultDatasetID string `json:"defaultDatasetId"`
}

func (e runEnvelope) id() string {
	if e.Data.ID != "" {
		return e.Data.ID
	}
	return e.ID
}

func (e runEnvelope) status() string {
	if e.Data.Status != "" {
		return e.Data.Status
	}
	return e.Status
}

func (e runEnvelope) datasetID() string {
	if e.Data.DefaultDatasetID != "" {
		return e.Data.DefaultDatasetID
	}
	return e.DefaultDatasetID
}

// StartJob submits the source URL to the given actor and returns a job handle.
func (a *Apify) StartJob(ctx context.Context, videoURL, format, actor string) (Job, error) {
	input := buildActorInput(actor, videoURL, format, a.ProxyCountry)
	body, err := json.Marshal(input)
	if err != nil {
		return Job{}, fmt.Errorf("encoding actor input: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/acts/%s/runs?token=%s",
		a.BaseURL, url.PathEscape(actor), url.QueryEscape(a.Token))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Job{}, fmt.Errorf("creating start request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.Client.Do(req)
	if err != nil {
		return Job{}, fmt.Errorf("starting actor %s: %w", actor, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Job{}, fmt.Errorf("starting actor %s: status %d: %s",
			actor, resp.StatusCode, readErrorBody(resp.Body))
	}

	var env runEnvelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&env); err != nil {
		return Job{}, fmt.Errorf("decoding start response: %w", err)
	}
	if env.id() == "" {
		return Job{}, fmt.Errorf("actor %s returned no run id", actor)
	}

	return Job{ID: env.id(), Actor: actor}, nil
}

// JobStatus reports the current state of a started job. The actor-runs
// route is keyed by run id alone, so a Job reconstructed from just an id
// can still be polled.
func (a *Apify) JobStatus(ctx context.Context, job Job) (JobStatus, error) {
	endpoint := fmt.Sprintf("%s/v2/actor-runs/%s?token=%s",
		a.BaseURL, url.PathEscape(job.ID), url.QueryEscape(a.Token))

	body, err := httputil.GetJSON(ctx, a.Client, endpoint)
	if err != nil {
		return JobStatus{}, fmt.Errorf("fetching run status: %w", err)
	}

	var env runEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return JobStatus{}, fmt.Errorf("decoding status response: %w", err)
	}

	return JobStatus{
		Status:      Status(env.status()),
		ResultSetID: env.datasetID(),
	}, nil
}

// ResultSet fetches the raw records of a succeeded job's default dataset.
func (a *Apify) ResultSet(ctx context.Context, resultSetID string) ([]media.RawDescriptor, error) {
	endpoint := fmt.Sprintf("%s/v2/datasets/%s/items?token=%s",
		a.BaseURL, url.PathEscape(resultSetID), url.QueryEscape(a.Token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating dataset request: %w", err)
	}

	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching dataset items: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching dataset items: status %d: %s",
			resp.StatusCode, readErrorBody(resp.Body))
	}

	var items []media.RawDescriptor
	if err := json.NewDecoder(io.LimitReader(resp.Body, 32<<20)).Decode(&items); err != nil {
		return nil, fmt.Errorf("decoding dataset items: %w", err)
	}

	return items, nil
}

// buildActorInput shapes the run input per actor family. The
// scrapearchitect downloader takes video_urls records; the other known
// actors take the generic urls + audioOnly shape with a per-run proxy
// session so retries do not inherit a burned IP.
func buildActorInput(actor, videoURL, format, proxyCountry string) map[string]any {
	if strings.Contains(actor, "scrapearchitect~youtube-audio-mp3-downloader") {
		input := map[string]any{
			"video_urls":   []map[string]any{{"url": videoURL, "method": "GET"}},
			"include_info": true,
		}
		if proxyCountry != "" {
			input["proxyConfiguration"] = map[string]any{
				"useApifyProxy":     true,
				"apifyProxyCountry": proxyCountry,
			}
		}
		return input
	}

	if format == "" {
		format = "mp3"
	}
	proxy := map[string]any{
		"useApifyProxy": true,
		"session":       "yt-" + uuid.NewString(),
	}
	if proxyCountry != "" {
		proxy["apifyProxyCountry"] = proxyCountry
	}
	return map[string]any{
		"urls":         []map[string]any{{"url": videoURL}},
		"audioOnly":    true,
		"audioFormat":  format,
		"audioQuality": "192",
		"concurrency":  1,
		"proxy":        proxy,
	}
}

func readErrorBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 2048))
	return strings.TrimSpace(string(b))
}
