// Package segment splits raw text into paragraphs, sentences and words.
// Every analyzer works on the Document produced here.
package segment

import (
	"regexp"
	"strings"
	"unicode"
)

// Words are runs of letters and digits joined by internal apostrophes or hyphens,
// so "don't" and "well-known" stay whole.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['\-][\p{L}\p{N}]+)*`)

var paragraphBreak = regexp.MustCompile(`\n[ \t]*\n`)

var quoteReplacer = strings.NewReplacer("\r\n", "\n", "\r", "\n", "’", "'", "‘", "'")

// abbreviations never end a sentence when followed by a single period
var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true, "sr": true, "jr": true,
	"st": true, "vs": true, "e.g": true, "i.e": true, "u.s": true, "u.k": true, "u.s.a": true,
	"a.m": true, "p.m": true, "inc": true, "ltd": true, "co": true, "corp": true, "no": true,
	"mt": true, "fig": true, "approx": true, "dept": true, "est": true, "gen": true, "gov": true,
	"jan": true, "feb": true, "mar": true, "apr": true, "jun": true, "jul": true, "aug": true,
	"sep": true, "sept": true, "oct": true, "nov": true, "dec": true,
}

// Document is segmented text.
type Document struct {
	Paragraphs []Paragraph
}

// Paragraph is a blank-line delimited block of text.
type Paragraph struct {
	Text      string
	Lines     []string
	Sentences []Sentence
}

// Sentence is an ordered run of words ending at a sentence boundary.
type Sentence struct {
	Text  string
	Words []string
}

// Normalize unifies line endings and curly apostrophes.
func Normalize(text string) string {
	return quoteReplacer.Replace(text)
}

// Words returns every word of the text in order.
func Words(text string) []string {
	return wordPattern.FindAllString(Normalize(text), -1)
}

// CountWords returns the number of words in text.
func CountWords(text string) int {
	return len(wordPattern.FindAllStringIndex(Normalize(text), -1))
}

// TruncateWords cuts normalized text right after its n-th word. It returns the
// possibly shortened text and the number of words it contains.
func TruncateWords(text string, n int) (string, int) {
	text = Normalize(text)
	if n <= 0 {
		return text, CountWords(text)
	}
	locs := wordPattern.FindAllStringIndex(text, n+1)
	if len(locs) <= n {
		return text, len(locs)
	}
	return text[:locs[n-1][1]], n
}

// Split segments text into a Document. Text without any sentence-ending
// punctuation becomes a single paragraph holding a single sentence.
func Split(text string) (*Document, error) {
	text = strings.TrimSpace(Normalize(text))
	if len(wordPattern.FindStringIndex(text)) == 0 {
		return nil, &UnsupportedInputError{Message: "no words found in input"}
	}

	if !strings.ContainsAny(text, ".!?") {
		return &Document{Paragraphs: []Paragraph{{
			Text:      text,
			Lines:     strings.Split(text, "\n"),
			Sentences: []Sentence{newSentence(text)},
		}}}, nil
	}

	doc := &Document{}
	for _, block := range paragraphBreak.Split(text, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		doc.Paragraphs = append(doc.Paragraphs, Paragraph{
			Text:      block,
			Lines:     strings.Split(block, "\n"),
			Sentences: splitSentences(block),
		})
	}
	if doc.SentenceCount() == 0 {
		return nil, &UnsupportedInputError{Message: "no sentences could be derived from input"}
	}
	return doc, nil
}

// Sentences returns every sentence in document order.
func (d *Document) Sentences() []Sentence {
	var out []Sentence
	for _, p := range d.Paragraphs {
		out = append(out, p.Sentences...)
	}
	return out
}

// Words returns every word in document order.
func (d *Document) Words() []string {
	var out []string
	for _, p := range d.Paragraphs {
		for _, s := range p.Sentences {
			out = append(out, s.Words...)
		}
	}
	return out
}

// SentenceCount counts sentences that contain at least one word.
func (d *Document) SentenceCount() int {
	n := 0
	for _, p := range d.Paragraphs {
		for _, s := range p.Sentences {
			if len(s.Words) > 0 {
				n++
			}
		}
	}
	return n
}

// WordCount returns the number of words in the paragraph.
func (p *Paragraph) WordCount() int {
	n := 0
	for _, s := range p.Sentences {
		n += len(s.Words)
	}
	return n
}

func newSentence(text string) Sentence {
	text = strings.TrimSpace(text)
	return Sentence{Text: text, Words: wordPattern.FindAllString(text, -1)}
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isCloser(r rune) bool {
	return strings.ContainsRune("\"')]”", r)
}

func isOpener(r rune) bool {
	return unicode.IsUpper(r) || unicode.IsDigit(r) || strings.ContainsRune("\"'([“", r)
}

// splitSentences scans a paragraph for terminal punctuation followed by
// whitespace and a sentence opener.
func splitSentences(block string) []Sentence {
	runes := []rune(block)
	var out []Sentence
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) {
			continue
		}
		end := i
		for end+1 < len(runes) && isTerminal(runes[end+1]) {
			end++
		}
		k := end + 1
		for k < len(runes) && isCloser(runes[k]) {
			k++
		}
		if k < len(runes) {
			if !unicode.IsSpace(runes[k]) {
				i = end
				continue
			}
			m := k
			for m < len(runes) && unicode.IsSpace(runes[m]) {
				m++
			}
			if m < len(runes) && !isOpener(runes[m]) {
				i = end
				continue
			}
		}
		if end == i && runes[i] == '.' && isAbbreviation(runes, i) {
			continue
		}
		if s := newSentence(string(runes[start:k])); s.Text != "" {
			out = append(out, s)
		}
		start = k
		i = k - 1
	}
	if start < len(runes) {
		if s := newSentence(string(runes[start:])); s.Text != "" {
			out = append(out, s)
		}
	}
	return out
}

// isAbbreviation reports whether the token ending just before the period at
// position dot is a known abbreviation or a single-letter initial.
func isAbbreviation(runes []rune, dot int) bool {
	j := dot
	for j > 0 && (unicode.IsLetter(runes[j-1]) || runes[j-1] == '.') {
		j--
	}
	token := string(runes[j:dot])
	if token == "" {
		return false
	}
	if tr := []rune(token); len(tr) == 1 {
		return unicode.IsUpper(tr[0]) && tr[0] != 'I'
	}
	return abbreviations[strings.ToLower(token)]
}
