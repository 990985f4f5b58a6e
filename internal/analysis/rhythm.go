package analysis

import "github.com/jonathan/voice-fingerprint/internal/types"

const (
	// ShortSentenceWords is the exclusive upper bound of a short sentence
	ShortSentenceWords = 10
	// LongSentenceWords is the exclusive lower bound of a long sentence
	LongSentenceWords = 25
)

// Rhythm computes sentence and paragraph length statistics. Sentences and
// paragraphs without words do not count.
func Rhythm(s *Sample) types.RhythmStats {
	var sentences, paragraphs []int
	short, long := 0, 0
	for _, p := range s.Doc.Paragraphs {
		if n := p.WordCount(); n > 0 {
			paragraphs = append(paragraphs, n)
		}
		for _, sent := range p.Sentences {
			n := len(sent.Words)
			if n == 0 {
				continue
			}
			sentences = append(sentences, n)
			if n < ShortSentenceWords {
				short++
			}
			if n > LongSentenceWords {
				long++
			}
		}
	}

	avgSentence, stdSentence := meanStd(sentences)
	avgParagraph, stdParagraph := meanStd(paragraphs)
	return types.RhythmStats{
		AvgSentenceLength:     avgSentence,
		SentenceLengthStdDev:  stdSentence,
		ShortSentenceRatio:    ratio(short, len(sentences)),
		LongSentenceRatio:     ratio(long, len(sentences)),
		AvgParagraphLength:    avgParagraph,
		ParagraphLengthStdDev: stdParagraph,
	}
}
