package rewriting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/voice-fingerprint/internal/llm"
	"github.com/jonathan/voice-fingerprint/internal/types"
)

// fakeClient replays canned responses and records prompts.
type fakeClient struct {
	responses []string
	err       error
	prompts   []string
	tiers     []llm.ModelTier
}

func (f *fakeClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return f.GenerateJSON(ctx, prompt, tier)
}

func (f *fakeClient) GenerateJSON(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.tiers = append(f.tiers, tier)
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", errors.New("no more responses")
	}
	next := f.responses[0]
	f.responses = f.responses[1:]
	return next, nil
}

func (f *fakeClient) Close() error { return nil }

func quietLog() *logrus.Entry {
	logger, _ := test.NewNullLogger()
	return logrus.NewEntry(logger)
}

func readyContext() types.GenerationContext {
	return types.GenerationContext{
		HasVoiceProfile: true,
		StudioType:      "social",
		Readiness:       types.Readiness{IsReady: true, Score: 55, Tier: types.TierDeveloping},
		PromptInjection: "Write in the user's personal voice. The user:\n- Uses contractions freely",
	}
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func response(text string) string {
	return fmt.Sprintf("```json\n{\"rewritten\": %q}\n```", text)
}

func TestRewrite_NotReady(t *testing.T) {
	client := &fakeClient{}
	r := NewRewriter(client, 0, 0, quietLog())

	gc := readyContext()
	gc.Readiness = types.Readiness{IsReady: false, Score: 20, Message: "Academic content needs 60% confidence"}

	_, err := r.Rewrite(context.Background(), gc, Request{Text: "Hello there."})
	var notReady *NotReadyError
	require.True(t, errors.As(err, &notReady))
	assert.Equal(t, "Academic content needs 60% confidence", notReady.Message)
	assert.Equal(t, 20, notReady.Score)
	assert.Empty(t, client.prompts, "generator must not be called")
}

func TestRewrite_NoProfile(t *testing.T) {
	r := NewRewriter(&fakeClient{}, 0, 0, quietLog())
	_, err := r.Rewrite(context.Background(), types.GenerationContext{}, Request{Text: "Hi"})
	var notReady *NotReadyError
	assert.True(t, errors.As(err, &notReady))
}

func TestRewrite_Success(t *testing.T) {
	client := &fakeClient{responses: []string{response(words(21))}}
	r := NewRewriter(client, 0.3, 2, quietLog())

	res, err := r.Rewrite(context.Background(), readyContext(), Request{Text: words(20)})
	require.NoError(t, err)

	assert.Equal(t, 20, res.SourceWords)
	assert.Equal(t, 21, res.RewrittenWords)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, llm.TierLite, res.Tier)

	require.Len(t, client.prompts, 1)
	prompt := client.prompts[0]
	assert.Contains(t, prompt, "- Uses contractions freely")
	assert.Contains(t, prompt, "for social content")
	assert.Contains(t, prompt, "within 30% of the original (20 words)")
	assert.NotContains(t, prompt, "{{.")
}

func TestRewrite_RetriesOnLength(t *testing.T) {
	client := &fakeClient{responses: []string{response(words(40)), response(words(19))}}
	r := NewRewriter(client, 0.3, 2, quietLog())

	res, err := r.Rewrite(context.Background(), readyContext(), Request{Text: words(20)})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Attempts)
	require.Len(t, client.prompts, 2)
	assert.Contains(t, client.prompts[1], "Your previous attempt had 40 words")
}

func TestRewrite_LengthError(t *testing.T) {
	client := &fakeClient{responses: []string{response(words(5)), response(words(6))}}
	r := NewRewriter(client, 0.3, 2, quietLog())

	_, err := r.Rewrite(context.Background(), readyContext(), Request{Text: words(20)})
	var lengthErr *LengthError
	require.True(t, errors.As(err, &lengthErr))
	assert.Equal(t, 6, lengthErr.RewrittenWords)
	assert.Equal(t, 20, lengthErr.SourceWords)
}

func TestRewrite_GeneratorFailure(t *testing.T) {
	cause := errors.New("quota exceeded")
	r := NewRewriter(&fakeClient{err: cause}, 0, 0, quietLog())

	_, err := r.Rewrite(context.Background(), readyContext(), Request{Text: words(10)})
	var apiErr *APICallError
	require.True(t, errors.As(err, &apiErr))
	assert.ErrorIs(t, err, cause)
}

func TestRewrite_MalformedResponse(t *testing.T) {
	r := NewRewriter(&fakeClient{responses: []string{`{"text": "wrong key"}`}}, 0, 0, quietLog())

	_, err := r.Rewrite(context.Background(), readyContext(), Request{Text: words(10)})
	var apiErr *APICallError
	require.True(t, errors.As(err, &apiErr))
	assert.Contains(t, err.Error(), "unexpected response")
}

func TestRewrite_ReportsIntroducedPhrases(t *testing.T) {
	rewritten := "We leverage synergy to move the needle on this project today."
	client := &fakeClient{responses: []string{response(rewritten)}}
	r := NewRewriter(client, 0.5, 1, quietLog())

	source := "We use synergy to make real progress on this project today."
	res, err := r.Rewrite(context.Background(), readyContext(), Request{
		Text:         source,
		AvoidPhrases: []string{"synergy", "Move the needle", "circle back"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Move the needle"}, res.Introduced)
}

func TestWithinTolerance(t *testing.T) {
	tests := []struct {
		got, want int
		tolerance float64
		expected  bool
	}{
		{100, 100, 0.3, true},
		{130, 100, 0.3, true},
		{131, 100, 0.3, false},
		{70, 100, 0.3, true},
		{69, 100, 0.3, false},
		{5, 3, 0.1, true}, // two words of slack on tiny inputs
		{6, 3, 0.1, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, withinTolerance(tt.got, tt.want, tt.tolerance), "got=%d want=%d", tt.got, tt.want)
	}
}

func TestForbiddenPhrasesIn(t *testing.T) {
	found := forbiddenPhrasesIn("Let's Circle Back and circle back again", []string{"circle back", "CIRCLE BACK", " ", "synergy"})
	assert.Equal(t, []string{"circle back"}, found)
	assert.Nil(t, forbiddenPhrasesIn("anything", nil))
}
