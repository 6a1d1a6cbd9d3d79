package output

// Process runs the four output layers in order: Sanitize, ToChatFormat,
// ValidateTone, StripAIPhrasing. Every layer is a pure, total string
// transform, so running Process on its own output yields the same string
// (sanitized text has no paths/keys/tags left to redact, chat-formatted
// text has no remaining markdown to convert, validated tone has no
// remaining rejected phrases, and stripped text has no remaining dashes or
// blacklisted vocabulary for a second pass to touch).
func Process(text string, dialect ChatDialect) string {
	text = Sanitize(text)
	text = ToChatFormat(text, dialect)
	text = ValidateTone(text)
	text = StripAIPhrasing(text)
	return text
}
