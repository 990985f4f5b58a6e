// Package rewriting restyles text in a user's voice through the generator,
// gated on the profile's readiness for the target studio.
package rewriting

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/voice-fingerprint/internal/llm"
	"github.com/jonathan/voice-fingerprint/internal/prompts"
	"github.com/jonathan/voice-fingerprint/internal/schemas"
	"github.com/jonathan/voice-fingerprint/internal/segment"
	"github.com/jonathan/voice-fingerprint/internal/types"
)

const (
	// DefaultTolerance is the allowed relative word count drift of a rewrite
	DefaultTolerance = 0.3
	// DefaultAttempts is how many generations are tried before giving up on length
	DefaultAttempts = 2

	rewritePromptKey = "rewrite-in-voice"
)

// Request is one rewrite.
type Request struct {
	Text string
	// AvoidPhrases must not be introduced by the rewrite.
	AvoidPhrases []string
}

// Result is a finished rewrite.
type Result struct {
	Text           string        `json:"text"`
	SourceWords    int           `json:"source_words"`
	RewrittenWords int           `json:"rewritten_words"`
	Attempts       int           `json:"attempts"`
	Tier           llm.ModelTier `json:"tier"`
	// Introduced lists avoided phrases that appeared anyway.
	Introduced []string `json:"introduced,omitempty"`
}

// Rewriter calls the generator with a user's voice prompt.
type Rewriter struct {
	client    llm.Client
	tolerance float64
	attempts  int
	log       *logrus.Entry
}

// NewRewriter creates a rewriter. Non-positive tolerance or attempts use the defaults.
func NewRewriter(client llm.Client, tolerance float64, attempts int, log *logrus.Entry) *Rewriter {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	if log == nil {
		log = logrus.WithField("component", "rewriting")
	}
	return &Rewriter{client: client, tolerance: tolerance, attempts: attempts, log: log}
}

// Rewrite restyles req.Text using gc. It declines with NotReadyError when
// the profile is not ready for gc.StudioType, without calling the generator.
func (r *Rewriter) Rewrite(ctx context.Context, gc types.GenerationContext, req Request) (*Result, error) {
	if !gc.HasVoiceProfile || !gc.Readiness.IsReady {
		return nil, &NotReadyError{Message: gc.Readiness.Message, Score: gc.Readiness.Score}
	}
	sourceWords := segment.CountWords(req.Text)
	if sourceWords == 0 {
		return nil, &segment.UnsupportedInputError{Message: "nothing to rewrite"}
	}

	base, err := prompts.Render(prompts.VoiceFile, rewritePromptKey, map[string]string{
		"VoiceProfile":     gc.PromptInjection,
		"Studio":           gc.StudioType,
		"TolerancePercent": strconv.Itoa(int(math.Round(r.tolerance * 100))),
		"SourceWords":      strconv.Itoa(sourceWords),
		"Text":             req.Text,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build rewrite prompt: %w", err)
	}

	tier := llm.TierForWords(sourceWords)
	prompt := base
	var last *Result
	for attempt := 1; attempt <= r.attempts; attempt++ {
		text, err := r.generate(ctx, prompt, tier)
		if err != nil {
			return nil, err
		}

		last = &Result{
			Text:           text,
			SourceWords:    sourceWords,
			RewrittenWords: segment.CountWords(text),
			Attempts:       attempt,
			Tier:           tier,
			Introduced:     introduced(req.Text, text, req.AvoidPhrases),
		}
		if withinTolerance(last.RewrittenWords, sourceWords, r.tolerance) {
			if len(last.Introduced) > 0 {
				r.log.WithField("phrases", last.Introduced).Warn("Rewrite introduced avoided phrases")
			}
			return last, nil
		}

		r.log.WithFields(logrus.Fields{
			"attempt":         attempt,
			"source_words":    sourceWords,
			"rewritten_words": last.RewrittenWords,
		}).Warn("Rewrite length out of tolerance")
		prompt = fmt.Sprintf("%s\n\nYour previous attempt had %d words. Stay close to %d words.",
			base, last.RewrittenWords, sourceWords)
	}

	return nil, &LengthError{
		SourceWords:    sourceWords,
		RewrittenWords: last.RewrittenWords,
		Tolerance:      r.tolerance,
	}
}

type rewriteResponse struct {
	Rewritten string `json:"rewritten"`
}

func (r *Rewriter) generate(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	raw, err := r.client.GenerateJSON(ctx, prompt, tier)
	if err != nil {
		return "", &APICallError{Message: "failed to generate rewrite", Cause: err}
	}

	body := llm.CleanJSONBlock(raw)
	if err := schemas.Validate(schemas.RewriteResponse, []byte(body)); err != nil {
		return "", &APICallError{Message: "generator returned an unexpected response", Cause: err}
	}
	var resp rewriteResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return "", &APICallError{Message: "failed to decode rewrite", Cause: err}
	}
	return resp.Rewritten, nil
}
