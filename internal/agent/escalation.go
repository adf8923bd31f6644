package agent

import "strings"

// RequiresEscalation reports whether a user message asks for, or signals the
// need for, a human agent.
func RequiresEscalation(userMessage string) bool {
	return containsAny(strings.ToLower(userMessage), escalationTriggers)
}
