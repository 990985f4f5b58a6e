// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/voice-fingerprint/internal/rewriting"
	"github.com/jonathan/voice-fingerprint/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 64
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 8
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)
	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(line, inner))
	}
	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad truncates or right-pads s to exactly width runes.
func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n > width {
		runes := []rune(s)
		return string(runes[:width-3]) + "..."
	}
	return s + strings.Repeat(" ", width-n)
}

// PrintFingerprint outputs the feature groups of a fingerprint.
func (p *Printer) PrintFingerprint(title string, fp *types.Fingerprint) {
	if fp == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Sample:      %d words, %d sentences\n", fp.Meta.SampleWordCount, fp.Meta.SampleSentenceCount)
	sb.WriteString("\n")

	v := fp.Vocabulary
	sb.WriteString("Vocabulary\n")
	fmt.Fprintf(&sb, "  unique words %.0f   avg length %.2f   rarity %.2f\n", v.UniqueWordCount, v.AvgWordLength, v.RarityScore)
	fmt.Fprintf(&sb, "  complex %s   contractions %s\n", percent(v.ComplexWordRatio), percent(v.ContractionRatio))
	if len(v.TopWords) > 0 {
		fmt.Fprintf(&sb, "  top: %s\n", joinLimited(v.TopWords, maxItemsToShow))
	}

	r := fp.Rhythm
	sb.WriteString("Rhythm\n")
	fmt.Fprintf(&sb, "  sentence %.1f ± %.1f words   short %s   long %s\n",
		r.AvgSentenceLength, r.SentenceLengthStdDev, percent(r.ShortSentenceRatio), percent(r.LongSentenceRatio))
	fmt.Fprintf(&sb, "  paragraph %.1f ± %.1f words\n", r.AvgParagraphLength, r.ParagraphLengthStdDev)

	pu := fp.Punctuation
	sb.WriteString("Punctuation (per 100 sentences)\n")
	fmt.Fprintf(&sb, "  ! %.1f   ? %.1f   ; %.1f   — %.1f   … %.1f   : %.1f\n",
		pu.ExclamationRate, pu.QuestionRate, pu.SemicolonRate, pu.DashRate, pu.EllipsisRate, pu.ColonRate)
	fmt.Fprintf(&sb, "  commas %.1f per 100 words\n", pu.CommaRate)

	vo := fp.Voice
	sb.WriteString("Voice\n")
	fmt.Fprintf(&sb, "  formality %.2f   active %s   pronouns %s\n", vo.FormalityScore, percent(vo.ActiveVoiceRatio), percent(vo.PersonalPronounRate))
	fmt.Fprintf(&sb, "  hedges %.3f   qualifiers %.3f   assertive %.3f\n", vo.HedgeDensity, vo.QualifierDensity, vo.AssertiveDensity)

	rh := fp.Rhetoric
	sb.WriteString("Rhetoric\n")
	fmt.Fprintf(&sb, "  question openers %s   lists %s\n", percent(rh.QuestionOpenerRate), percent(rh.ListUsageRate))
	fmt.Fprintf(&sb, "  transitions %.2f   examples %.2f per sentence\n", rh.TransitionWordRate, rh.ExampleUsageRate)
	if len(rh.EmphasisPatterns) > 0 {
		fmt.Fprintf(&sb, "  emphasis: %s\n", strings.Join(rh.EmphasisPatterns, ", "))
	}

	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintProfile outputs a profile summary followed by its aggregate.
func (p *Printer) PrintProfile(profile *types.VoiceProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "User:        %s\n", profile.UserID)
	fmt.Fprintf(&sb, "Confidence:  %d%%\n", profile.ConfidenceLevel)
	fmt.Fprintf(&sb, "Documents:   %d\n", profile.DocumentCount)
	fmt.Fprintf(&sb, "Words:       %d\n", profile.TotalWordCount)
	if profile.LastTrainedAt != nil {
		fmt.Fprintf(&sb, "Trained:     %s\n", profile.LastTrainedAt.Format("2006-01-02 15:04 MST"))
	}
	p.printBox("VOICE PROFILE", strings.TrimSuffix(sb.String(), "\n"))

	if !profile.IsEmpty() {
		p.PrintFingerprint("AGGREGATE FINGERPRINT", &profile.Aggregate)
	}
}

// PrintHistory outputs the most recent evolution entries, newest first.
func (p *Printer) PrintHistory(history []types.VoiceEvolution) {
	if len(history) == 0 {
		return
	}

	var sb strings.Builder
	shown := 0
	for i := len(history) - 1; i >= 0 && shown < maxItemsToShow; i-- {
		e := history[i]
		name := e.SourceDocumentName
		if name == "" {
			name = e.SourceDocumentID
		}
		fmt.Fprintf(&sb, "%s  %s\n", e.Timestamp.Format("2006-01-02"), name)
		fmt.Fprintf(&sb, "    confidence %d%% (%+d), %d docs\n", e.ConfidenceLevelAfter, e.ConfidenceDelta, e.TotalDocumentsAfter)
		if len(e.ChangesMade) > 0 {
			fmt.Fprintf(&sb, "    changed: %s\n", strings.Join(e.ChangesMade, ", "))
		}
		shown++
	}
	if len(history) > maxItemsToShow {
		fmt.Fprintf(&sb, "... and %d earlier\n", len(history)-maxItemsToShow)
	}
	p.printBox("VOICE EVOLUTION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintGenerationContext outputs readiness and the prompt injection.
func (p *Printer) PrintGenerationContext(gc *types.GenerationContext) {
	if gc == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Studio:      %s\n", gc.StudioType)
	fmt.Fprintf(&sb, "Ready:       %t\n", gc.Readiness.IsReady)
	fmt.Fprintf(&sb, "Score:       %d%% (%s)\n", gc.Readiness.Score, gc.Readiness.Tier.Label())
	for _, line := range wrap(gc.Readiness.Message, boxWidth-4) {
		sb.WriteString(line + "\n")
	}
	if gc.PromptInjection != "" {
		sb.WriteString("\n")
		sb.WriteString(gc.PromptInjection)
	}
	p.printBox("GENERATION CONTEXT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRewrite outputs a rewrite and its length stats.
func (p *Printer) PrintRewrite(res *rewriting.Result) {
	if res == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Words:       %d -> %d (attempt %d, %s tier)\n", res.SourceWords, res.RewrittenWords, res.Attempts, res.Tier)
	if len(res.Introduced) > 0 {
		fmt.Fprintf(&sb, "Warning:     introduced %s\n", strings.Join(res.Introduced, ", "))
	}
	sb.WriteString("\n")
	for _, line := range wrap(res.Text, boxWidth-4) {
		sb.WriteString(line + "\n")
	}
	p.printBox("REWRITE", strings.TrimSuffix(sb.String(), "\n"))
}

func percent(ratio float64) string {
	return fmt.Sprintf("%.0f%%", ratio*100)
}

func joinLimited(items []string, limit int) string {
	if len(items) <= limit {
		return strings.Join(items, ", ")
	}
	return strings.Join(items[:limit], ", ") + fmt.Sprintf(" (+%d)", len(items)-limit)
}

// wrap breaks text into lines of at most width runes at spaces.
func wrap(text string, width int) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		var line strings.Builder
		for _, word := range strings.Fields(para) {
			if line.Len() > 0 && utf8.RuneCountInString(line.String())+1+utf8.RuneCountInString(word) > width {
				lines = append(lines, line.String())
				line.Reset()
			}
			if line.Len() > 0 {
				line.WriteString(" ")
			}
			line.WriteString(word)
		}
		lines = append(lines, line.String())
	}
	return lines
}
