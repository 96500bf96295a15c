// Package crisis implements the crisis-detection and escalation flow:
// keyword scanning of outgoing messages, routing to a dedicated support
// conversation, the AI support session transcript, and the inactivity
// check-in trigger.
package crisis

import "strings"

// SupportBotUsername is the reserved counterpart identity for the support
// conversation. Identity claims for this name are rejected so it cannot
// collide with a real user.
const SupportBotUsername = "Crisis Support Bot 🆘"

// Keywords that trigger support routing. Matching is case-insensitive
// substring containment; over-triggering is preferred to missing a signal.
var crisisKeywords = []string{
	"kill myself",
	"suicide",
	"suicidal",
	"end my life",
	"want to die",
	"better off dead",
	"harm myself",
	"hurt myself",
	"self harm",
	"self-harm",
	"cut myself",
	"overdose",
	"no reason to live",
	"nothing to live for",
	"can't go on",
	"give up on life",
}

// Detect reports whether the message contains any crisis keyword. It is a
// pure predicate and must run before the send path commits.
func Detect(text string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range crisisKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
