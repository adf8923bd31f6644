package agent

import "strings"

// Category tags a group of synonym keywords.
type Category string

const (
	CategoryCancel       Category = "cancel"
	CategorySubscription Category = "subscription"
	CategoryPassword     Category = "password"
	CategoryRefund       Category = "refund"
	CategoryHours        Category = "hours"
	CategoryTrial        Category = "trial"
	CategoryContact      Category = "contact"
)

type keywordSet struct {
	category Category
	keywords []string
}

// faqCategories drives FAQ scoring. Matching is substring containment on
// lowercased text, so "end" also matches "weekend".
var faqCategories = []keywordSet{
	{CategoryCancel, []string{"cancel", "stop", "end", "terminate", "unsubscribe"}},
	{CategorySubscription, []string{"subscription", "membership", "plan", "billing"}},
	{CategoryPassword, []string{"password", "login", "forgot"}},
	{CategoryRefund, []string{"refund", "money back", "return"}},
	{CategoryHours, []string{"hours", "time", "schedule", "when", "open"}},
	{CategoryTrial, []string{"trial", "free"}},
	{CategoryContact, []string{"contact", "call", "email", "phone", "support"}},
}

// escalationTriggers are phrases that hand a conversation to a human.
var escalationTriggers = []string{
	"manager", "supervisor", "complaint", "speak to human", "human agent",
	"cancel", "refund", "billing", "angry", "frustrated", "unsatisfied",
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
