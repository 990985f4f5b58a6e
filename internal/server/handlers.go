package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/voice-fingerprint/internal/jobs"
	"github.com/jonathan/voice-fingerprint/internal/readiness"
	"github.com/jonathan/voice-fingerprint/internal/types"
)

// ExtractRequest represents the request body for /fingerprints
type ExtractRequest struct {
	Text string `json:"text" validate:"required"`
}

// LearnRequest represents the request body for learning a document
type LearnRequest struct {
	DocumentID  string `json:"document_id,omitempty" validate:"max=255"`
	FileName    string `json:"file_name,omitempty" validate:"max=512"`
	WritingType string `json:"writing_type,omitempty" validate:"max=64"`
	Text        string `json:"text" validate:"required"`
}

// ProfileSummary is the compact view returned by profile updates
type ProfileSummary struct {
	UserID          string                `json:"user_id"`
	ConfidenceLevel int                   `json:"confidence_level"`
	Tier            types.Tier            `json:"tier"`
	DocumentCount   int                   `json:"document_count"`
	TotalWordCount  int                   `json:"total_word_count"`
	LastTrainedAt   *time.Time            `json:"last_trained_at,omitempty"`
	LatestChange    *types.VoiceEvolution `json:"latest_change,omitempty"`
}

// DocumentSummary describes one contributing document without its fingerprint
type DocumentSummary struct {
	DocumentID   string    `json:"document_id"`
	DocumentName string    `json:"document_name"`
	WritingType  string    `json:"writing_type"`
	Sequence     int64     `json:"sequence"`
	WordCount    int       `json:"word_count"`
	LearnedAt    time.Time `json:"learned_at"`
}

// JobResponse represents the response for an accepted background job
type JobResponse struct {
	JobID     string     `json:"job_id"`
	State     jobs.State `json:"state"`
	StatusURL string     `json:"status_url"`
}

func summarize(p types.VoiceProfile) ProfileSummary {
	out := ProfileSummary{
		UserID:          p.UserID,
		ConfidenceLevel: p.ConfidenceLevel,
		Tier:            readiness.TierFor(p.ConfidenceLevel),
		DocumentCount:   p.DocumentCount,
		TotalWordCount:  p.TotalWordCount,
		LastTrainedAt:   p.LastTrainedAt,
	}
	if n := len(p.EvolutionHistory); n > 0 {
		latest := p.EvolutionHistory[n-1]
		out.LatestChange = &latest
	}
	return out
}

// decode reads a JSON body into dst and validates it.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid request body: " + err.Error()}
	}
	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &ErrValidation{Field: strings.ToLower(verrs[0].Field()), Message: "failed " + verrs[0].Tag() + " check"}
		}
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	return nil
}

// handleExtract computes a fingerprint without storing anything
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if err := s.decode(w, r, &req); err != nil {
		s.serviceError(w, r, err)
		return
	}
	fp, err := s.voice.Extract(req.Text)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, fp)
}

// handleLearn extracts a document and learns it synchronously
func (s *Server) handleLearn(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	var req LearnRequest
	if err := s.decode(w, r, &req); err != nil {
		s.serviceError(w, r, err)
		return
	}

	profile, err := s.voice.LearnText(r.Context(), userID, req.Text, req.meta())
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, summarize(profile))
}

// handleLearnAsync queues a document for background learning
func (s *Server) handleLearnAsync(w http.ResponseWriter, r *http.Request) {
	if s.queue == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "asynchronous learning is disabled")
		return
	}

	userID := r.PathValue("user_id")
	var req LearnRequest
	if err := s.decode(w, r, &req); err != nil {
		s.serviceError(w, r, err)
		return
	}

	meta := req.meta()
	if meta.DocumentID == "" {
		meta.DocumentID = uuid.NewString()
	}
	id, err := s.queue.Submit(jobs.Task{
		UserID: userID,
		// runs on the worker context, the request is gone by then
		Run: func(ctx context.Context) error {
			_, err := s.voice.LearnText(ctx, userID, req.Text, meta)
			return err
		},
	})
	if err != nil {
		if errors.Is(err, jobs.ErrQueueFull) {
			w.Header().Set("Retry-After", "5")
		}
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusAccepted, JobResponse{
		JobID:     id,
		State:     jobs.StatePending,
		StatusURL: "/jobs/" + id,
	})
}

// handleJobStatus reports the state of a background job
func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if s.queue == nil {
		s.serviceError(w, r, &ErrJobNotFound{JobID: id})
		return
	}
	status, ok := s.queue.Status(id)
	if !ok {
		s.serviceError(w, r, &ErrJobNotFound{JobID: id})
		return
	}
	s.jsonResponse(w, http.StatusOK, status)
}

// handleListDocuments lists the contributing documents of a user
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.voice.Documents(r.Context(), r.PathValue("user_id"))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	out := make([]DocumentSummary, 0, len(docs))
	for _, d := range docs {
		out = append(out, DocumentSummary{
			DocumentID:   d.DocumentID,
			DocumentName: d.DocumentName,
			WritingType:  d.WritingType,
			Sequence:     d.Sequence,
			WordCount:    d.Fingerprint.Meta.SampleWordCount,
			LearnedAt:    d.LearnedAt,
		})
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"documents": out})
}

// handleForget removes one document from a profile
func (s *Server) handleForget(w http.ResponseWriter, r *http.Request) {
	profile, err := s.voice.Forget(r.Context(), r.PathValue("user_id"), r.PathValue("document_id"))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, summarize(profile))
}

// handleReset returns a profile to its empty state
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	profile, err := s.voice.Reset(r.Context(), r.PathValue("user_id"))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, summarize(profile))
}

// handleGetProfile returns the full profile of a user
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.voice.Profile(r.Context(), r.PathValue("user_id"))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	if profile.EvolutionHistory == nil {
		profile.EvolutionHistory = []types.VoiceEvolution{}
	}
	s.jsonResponse(w, http.StatusOK, profile)
}

// handleGetHistory returns the evolution history of a user
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.voice.History(r.Context(), r.PathValue("user_id"))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"history": history})
}

// handleGetContext returns the generation context for a studio type
func (s *Server) handleGetContext(w http.ResponseWriter, r *http.Request) {
	studio := strings.TrimSpace(r.URL.Query().Get("studio"))
	if studio == "" {
		s.serviceError(w, r, &ErrValidation{Field: "studio", Message: "query parameter is required"})
		return
	}
	gc, err := s.voice.GetGenerationContext(r.Context(), r.PathValue("user_id"), studio)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, gc)
}

func (req LearnRequest) meta() types.DocumentMeta {
	return types.DocumentMeta{
		DocumentID:  req.DocumentID,
		FileName:    req.FileName,
		WritingType: req.WritingType,
	}
}
