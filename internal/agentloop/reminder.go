package agentloop

import (
	"strings"

	"github.com/ojashyadav101/lucy-sub000/internal/model"
)

// injectSystemMessage appends a <system-reminder>-wrapped system message to
// messages, grounded on runtime/agent/reminder/inject.go's
// formatReminderText convention. Every system-message injection in the
// turn algorithm (narration correction, intervention, guidance, replanned
// goal) funnels through this one helper, since they share the same
// wrap-and-append shape and differ only in the text supplied; the
// empty-response nudge is a user message (injectUserMessage).
func injectSystemMessage(messages []*model.Message, text string) []*model.Message {
	t := strings.TrimSpace(text)
	if t == "" {
		return messages
	}
	if !strings.Contains(t, "<system-reminder>") {
		t = "<system-reminder>" + t + "</system-reminder>"
	}
	return append(messages, model.TextMessage(model.RoleSystem, t))
}

// injectUserMessage appends a plain user message, used for the
// empty-response nudge ("please continue"), which the spec describes as a
// user message rather than a system reminder.
func injectUserMessage(messages []*model.Message, text string) []*model.Message {
	return append(messages, model.TextMessage(model.RoleUser, text))
}
