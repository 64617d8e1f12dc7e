package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"tubetap/internal/deliver"
	"tubetap/internal/extract"
	"tubetap/internal/history"
	"tubetap/internal/httputil"
	"tubetap/internal/media"
	"tubetap/internal/provider"
)

const maxRequestBody = 64 * 1024

type extractRequest struct {
	VideoURL       string `json:"videoUrl"`
	DesiredFormat  string `json:"desiredFormat"`
	MaxWaitMs      int    `json:"maxWaitMs"`
	PollIntervalMs int    `json:"pollIntervalMs"`
}

type extractResponse struct {
	Item media.Extraction `json:"item"`
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	return true
}

// optionsFor builds the orchestrator options from config defaults with the
// request's per-call overrides applied.
func (s *Server) optionsFor(req extractRequest) extract.Options {
	opts := extract.Options{
		Format:       s.cfg.Format,
		PollInterval: s.cfg.PollInterval(),
		MaxWait:      s.cfg.MaxWait(),
		RequireAudio: true,
	}
	if f := strings.ToLower(strings.TrimSpace(req.DesiredFormat)); f != "" {
		opts.Format = f
	}
	if req.PollIntervalMs > 0 {
		opts.PollInterval = time.Duration(req.PollIntervalMs) * time.Millisecond
	}
	if req.MaxWaitMs > 0 {
		opts.MaxWait = time.Duration(req.MaxWaitMs) * time.Millisecond
	}
	return opts
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := httputil.ValidateURL(req.VideoURL); err != nil {
		writeError(w, http.StatusBadRequest, "invalid videoUrl", err.Error())
		return
	}

	opts := s.optionsFor(req)
	res, err := s.orch.Run(r.Context(), req.VideoURL, opts)
	if err != nil {
		failExtraction(w, err)
		return
	}

	s.record(r, req.VideoURL, opts.Format, res)
	writeJSON(w, http.StatusOK, extractResponse{Item: toExtraction(res)})
}

func toExtraction(res *extract.Result) media.Extraction {
	medias := res.Candidates
	if medias == nil {
		medias = []media.Candidate{}
	}
	winner := res.Selection.Winner
	return media.Extraction{
		Title:           res.Title,
		Medias:          medias,
		ChosenMedia:     &winner,
		TranscodeNeeded: res.Selection.RequiresTranscode,
		HasNativeForMp3: res.HasNativeForMp3,
	}
}

// record writes a history entry; failures are logged, never surfaced.
func (s *Server) record(r *http.Request, videoURL, format string, res *extract.Result) {
	if s.store == nil {
		return
	}
	err := s.store.Record(r.Context(), history.Entry{
		VideoURL:   videoURL,
		Title:      res.Title,
		Format:     format,
		Extension:  res.Selection.Winner.Extension,
		Actor:      res.Actor,
		Transcoded: res.Selection.RequiresTranscode,
	})
	if err != nil {
		s.logger.Warn("recording history", "error", err, "request_id", requestIDFrom(r.Context()))
	}
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	mediaURL := r.URL.Query().Get("url")
	if err := httputil.ValidateMediaURL(mediaURL); err != nil {
		writeError(w, http.StatusBadRequest, "invalid url", err.Error())
		return
	}
	filename := httputil.SanitizeTitle(r.URL.Query().Get("filename"))

	if err := deliver.Relay(w, r, s.stream, mediaURL, filename, r.URL.Query().Get("mime")); err != nil {
		failExtraction(w, err)
	}
}

type transcodeRequest struct {
	URL      string `json:"url"`
	Format   string `json:"format"`
	Filename string `json:"filename"`
}

func (s *Server) handleTranscode(w http.ResponseWriter, r *http.Request) {
	req := transcodeRequest{
		URL:      r.URL.Query().Get("url"),
		Format:   r.URL.Query().Get("format"),
		Filename: r.URL.Query().Get("filename"),
	}
	if r.Method == http.MethodPost && req.URL == "" {
		if !s.decodeBody(w, r, &req) {
			return
		}
	}

	if err := httputil.ValidateMediaURL(req.URL); err != nil {
		writeError(w, http.StatusBadRequest, "invalid url", err.Error())
		return
	}
	format := strings.ToLower(strings.TrimSpace(req.Format))
	if format == "" {
		format = "mp3"
	}
	filename := httputil.SanitizeTitle(req.Filename)

	if err := deliver.Transcode(w, r, s.stream, req.URL, format, filename); err != nil {
		failExtraction(w, err)
	}
}

type startExtractRequest struct {
	VideoURL      string `json:"videoUrl"`
	DesiredFormat string `json:"desiredFormat"`
	Actor         string `json:"actor"`
}

func (s *Server) handleStartExtract(w http.ResponseWriter, r *http.Request) {
	var req startExtractRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := httputil.ValidateURL(req.VideoURL); err != nil {
		writeError(w, http.StatusBadRequest, "invalid videoUrl", err.Error())
		return
	}

	actor := req.Actor
	if actor == "" {
		actor = s.cfg.Actors[0]
	}
	format := strings.ToLower(strings.TrimSpace(req.DesiredFormat))
	if format == "" {
		format = s.cfg.Format
	}

	job, err := s.runner.StartJob(r.Context(), req.VideoURL, format, actor)
	if err != nil {
		failExtraction(w, &extract.StartError{Actor: actor, Err: err})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"runId": job.ID,
		"actor": job.Actor,
	})
}

func (s *Server) handleRunStatus(w http.ResponseWriter, r *http.Request) {
	runID := r.URL.Query().Get("runId")
	if runID == "" {
		writeError(w, http.StatusBadRequest, "runId is required", "")
		return
	}

	js, err := s.runner.JobStatus(r.Context(), provider.Job{ID: runID})
	if err != nil {
		writeError(w, http.StatusBadGateway, "run status lookup failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"runId":     runID,
		"status":    string(js.Status),
		"datasetId": js.ResultSetID,
	})
}

func (s *Server) handleRunResult(w http.ResponseWriter, r *http.Request) {
	datasetID := r.URL.Query().Get("datasetId")
	if datasetID == "" {
		writeError(w, http.StatusBadRequest, "datasetId is required", "")
		return
	}
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("desiredFormat")))
	if format == "" {
		format = s.cfg.Format
	}

	raws, err := s.runner.ResultSet(r.Context(), datasetID)
	if err != nil {
		writeError(w, http.StatusBadGateway, "result fetch failed", err.Error())
		return
	}

	res, err := extract.ResultFromSet(raws, format, true)
	if err != nil {
		failExtraction(w, err)
		return
	}

	writeJSON(w, http.StatusOK, extractResponse{Item: toExtraction(res)})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
