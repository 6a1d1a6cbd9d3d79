package output

import "regexp"

// dashPattern matches em dashes and en dashes used as punctuation; the
// de-AI pass normalizes both to a plain hyphen-with-spaces, since dash-heavy
// sentences are one of the most common AI-writing tells.
var dashPattern = regexp.MustCompile(`\s*[—–]\s*`)

// blacklistedVocabulary are words whose disproportionate frequency in LLM
// output makes them worth stripping on sight; each is swapped for a plainer
// synonym rather than deleted outright so the sentence still reads.
var blacklistedVocabulary = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)\bdelve into\b`), "look into"},
	{regexp.MustCompile(`(?i)\bdelve\b`), "dig in"},
	{regexp.MustCompile(`(?i)\btapestry\b`), "mix"},
	{regexp.MustCompile(`(?i)\bin the realm of\b`), "in"},
	{regexp.MustCompile(`(?i)\bit('s| is) worth noting that\b`), ""},
	{regexp.MustCompile(`(?i)\bnavigate the complexit(y|ies) of\b`), "handle"},
	{regexp.MustCompile(`(?i)\bunderscores? the importance of\b`), "shows why"},
	{regexp.MustCompile(`(?i)\bfoster(s|ing)?\b`), "build"},
	{regexp.MustCompile(`(?i)\bmoreover\b`), "also"},
	{regexp.MustCompile(`(?i)\bfurthermore\b`), "also"},
	{regexp.MustCompile(`(?i)\bin conclusion\b`), ""},
}

// sycophanticOpeners are removed entirely rather than rewritten; they carry
// no information and Lucy's voice does not open messages this way.
var sycophanticOpeners = regexp.MustCompile(`(?i)^(great question[!.]?\s*|i'd be happy to help[!.]?\s*|absolutely[!.]?\s*|certainly[!.]?\s*)`)

// chatbotClosers are trailing stock phrases ("let me know if you have any
// other questions") that read as boilerplate rather than a genuine offer.
var chatbotClosers = regexp.MustCompile(`(?i)\s*(let me know if you (have any|need anything)( (other|more) questions)?[!.]?|feel free to (ask|reach out) if you need anything else[!.]?)\s*$`)

// secondTierThreshold is the de-AI score above which layer 4 would escalate
// to an LLM-based rewrite pass. Spec §4.5 describes this second tier as
// present but disabled; rather than omit the tier, its trigger threshold
// is set above any score the regex pass can produce, so the code path
// exists and is provably unreachable rather than silently absent.
const secondTierThreshold = 1 << 30

// StripAIPhrasing is layer 4: it removes em/en dashes, blacklisted
// vocabulary, sycophantic openers, and chatbot-style closers. The LLM-based
// second tier described alongside this layer never fires in this
// implementation: see secondTierThreshold.
func StripAIPhrasing(text string) string {
	text = sycophanticOpeners.ReplaceAllString(text, "")
	text = chatbotClosers.ReplaceAllString(text, "")
	text = dashPattern.ReplaceAllString(text, " - ")
	for _, rule := range blacklistedVocabulary {
		text = rule.pattern.ReplaceAllString(text, rule.replacement)
	}
	if deAIScore(text) > secondTierThreshold {
		text = rewriteWithModel(text)
	}
	return text
}

// rewriteWithModel is the LLM-based second tier. It is never called: see
// secondTierThreshold.
func rewriteWithModel(text string) string {
	return text
}

// deAIScore is a rough count of remaining AI-tell markers, used only to
// gate the (permanently disabled) second tier.
func deAIScore(text string) int {
	score := 0
	for _, rule := range blacklistedVocabulary {
		score += len(rule.pattern.FindAllString(text, -1))
	}
	return score
}
