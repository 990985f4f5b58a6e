package analysis

import "strings"

func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// phrases splits each entry on spaces into a lower-case word sequence.
func phrases(entries ...string) [][]string {
	out := make([][]string, len(entries))
	for i, e := range entries {
		out[i] = strings.Fields(e)
	}
	return out
}

// stopwords are removed before ranking top words
var stopwords = set(
	"a", "about", "above", "after", "again", "against", "all", "also", "am", "an", "and", "any",
	"are", "as", "at", "be", "because", "been", "before", "being", "below", "between", "both",
	"but", "by", "can", "could", "did", "do", "does", "doing", "don't", "down", "during", "each",
	"even", "few", "for", "from", "further", "get", "got", "had", "has", "have", "having", "he",
	"her", "here", "hers", "herself", "him", "himself", "his", "how", "i", "i'm", "if", "in",
	"into", "is", "it", "it's", "its", "itself", "just", "like", "me", "more", "most", "my",
	"myself", "no", "nor", "not", "now", "of", "off", "on", "once", "one", "only", "or", "other",
	"our", "ours", "ourselves", "out", "over", "own", "really", "same", "she", "should", "so",
	"some", "such", "than", "that", "that's", "the", "their", "theirs", "them", "themselves",
	"then", "there", "there's", "these", "they", "this", "those", "through", "to", "too",
	"under", "until", "up", "us", "very", "was", "we", "were", "what", "when", "where", "which",
	"while", "who", "whom", "why", "will", "with", "would", "you", "your", "yours", "yourself",
	"yourselves", "much", "many", "make", "made", "way", "well", "still", "lot", "thing",
	"things", "going", "know", "think", "want", "said", "say", "says", "let", "can't", "won't",
	"didn't", "doesn't", "isn't", "wasn't", "i've", "i'll", "i'd", "we're", "you're", "they're",
)

// commonWords is the reference list behind the rarity score
var commonWords = func() map[string]bool {
	m := set(
		"able", "across", "actually", "add", "after", "age", "ago", "air", "almost", "alone",
		"along", "already", "although", "always", "among", "another", "answer", "anything",
		"area", "around", "ask", "asked", "away", "back", "bad", "best", "better", "big", "bit",
		"body", "book", "bring", "build", "business", "call", "called", "came", "car", "care",
		"case", "change", "child", "children", "city", "close", "come", "comes", "company",
		"could", "country", "course", "day", "days", "different", "done", "door", "draw", "during",
		"early", "easy", "end", "enough", "every", "everyone", "everything", "example", "eye",
		"eyes", "face", "fact", "family", "far", "feel", "felt", "find", "first", "five", "food",
		"found", "four", "friend", "friends", "full", "game", "gave", "give", "given", "go",
		"goes", "gone", "good", "great", "group", "grow", "hand", "hands", "happen", "happened",
		"hard", "head", "hear", "heard", "help", "high", "hold", "home", "hope", "hour", "hours",
		"house", "idea", "important", "keep", "kind", "knew", "known", "land", "large", "last",
		"late", "later", "learn", "least", "leave", "left", "less", "life", "light", "line",
		"little", "live", "long", "look", "looked", "looking", "lose", "lost", "love", "man",
		"maybe", "mean", "means", "men", "might", "mind", "minute", "moment", "money", "month",
		"morning", "move", "must", "name", "need", "needs", "never", "new", "next", "nice",
		"night", "nothing", "number", "often", "old", "open", "order", "part", "people", "perhaps",
		"person", "place", "plan", "play", "point", "possible", "pretty", "problem", "put",
		"question", "quite", "read", "ready", "real", "reason", "right", "room", "run", "saw",
		"school", "second", "see", "seem", "seemed", "seen", "sense", "set", "show", "side",
		"simple", "since", "small", "something", "sometimes", "soon", "sort", "start", "started",
		"stop", "story", "sure", "take", "taken", "talk", "tell", "ten", "three", "time", "times",
		"today", "together", "told", "took", "toward", "try", "tried", "turn", "two", "understand",
		"upon", "use", "used", "using", "usually", "wait", "walk", "wanted", "water", "week",
		"went", "whole", "without", "woman", "women", "word", "words", "work", "worked", "working",
		"world", "write", "writing", "wrong", "year", "years", "yes", "yet", "young", "okay",
	)
	for w := range stopwords {
		m[w] = true
	}
	return m
}()

// commonLongWords have three or more syllables but read as plain language
var commonLongWords = set(
	"actually", "another", "anything", "anyone", "everything", "everyone", "everybody",
	"already", "however", "family", "different", "important", "together", "probably",
	"usually", "really", "company", "beautiful", "remember", "yesterday", "tomorrow",
	"somebody", "nobody", "interesting", "understand", "whatever", "wonderful", "library",
	"camera", "banana", "idea", "area", "video", "radio", "seriously", "basically",
	"especially", "completely", "definitely", "absolutely", "literally", "totally",
)

// contractionStems may take a contracted "'s" (is/has/us) rather than a possessive
var contractionStems = set(
	"it", "that", "what", "there", "here", "who", "he", "she", "let", "where", "how", "when",
	"everyone", "nobody", "somebody", "someone", "everything", "nothing", "something",
)

var hedgePhrases = phrases(
	"maybe", "perhaps", "possibly", "probably", "apparently", "arguably", "presumably",
	"likely", "might", "seems", "seem", "i think", "i guess", "i suppose", "i feel",
	"i believe", "sort of", "kind of", "in my opinion", "more or less", "it appears",
)

var qualifierPhrases = phrases(
	"very", "really", "quite", "rather", "fairly", "pretty", "extremely", "incredibly",
	"somewhat", "slightly", "totally", "super", "a bit", "a little",
)

var assertivePhrases = phrases(
	"clearly", "obviously", "definitely", "certainly", "undoubtedly", "absolutely", "surely",
	"indeed", "undeniably", "always", "never", "must", "of course", "without a doubt",
	"no doubt", "in fact",
)

var personalPronouns = set(
	"i", "me", "my", "mine", "myself", "we", "us", "our", "ours", "ourselves",
	"i'm", "i've", "i'll", "i'd", "we're", "we've", "we'll", "we'd",
)

var transitionPhrases = phrases(
	"however", "therefore", "moreover", "furthermore", "consequently", "nevertheless",
	"nonetheless", "meanwhile", "additionally", "thus", "hence", "otherwise", "similarly",
	"likewise", "instead", "accordingly", "subsequently", "ultimately", "in addition",
	"on the other hand", "as a result", "in contrast", "by contrast", "in other words",
	"that said", "even so", "first of all", "in conclusion", "to sum up",
)

var examplePhrases = phrases(
	"for example", "for instance", "such as", "e g", "to illustrate", "as an example",
	"case in point",
)

var beVerbs = set("am", "is", "are", "was", "were", "be", "been", "being")

var irregularParticiples = set(
	"written", "given", "taken", "seen", "done", "made", "known", "shown", "built", "sent",
	"held", "told", "found", "thrown", "chosen", "driven", "eaten", "broken", "spoken",
	"stolen", "forgotten", "hidden", "born", "paid", "said", "brought", "bought", "caught",
	"taught", "kept", "put", "set", "led", "won", "begun", "drawn", "grown", "worn", "torn",
	"beaten", "bitten", "frozen", "shaken", "sold", "spent", "struck", "understood", "woken",
)

// edNonParticiples end in "ed" without being past participles
var edNonParticiples = set(
	"need", "feed", "seed", "bed", "red", "shed", "speed", "indeed", "breed", "weed", "bleed",
	"greed", "deed", "steed", "embed", "hundred", "sacred", "naked", "wicked", "sled",
)
