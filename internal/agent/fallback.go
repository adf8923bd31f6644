package agent

import "strings"

// Canned replies used while the generative model is unavailable.
const (
	ReplyBillingCancel = "You can cancel your subscription from the 'Billing' section in your account settings. Cancellations take effect at the end of your billing cycle."
	ReplyHours         = "Our customer support is available Monday to Friday, 9 AM to 6 PM EST."
	ReplyPassword      = "You can reset your password by clicking 'Forgot Password' on the login page and following the instructions sent to your email."
	ReplyRefund        = "We offer 30-day money-back guarantee for all our premium plans. Contact support with your order details for refund requests."
	ReplyTrial         = "Yes, we offer a 14-day free trial for all new users. No credit card required to start your trial."
	ReplyContact       = "I'd be happy to help you! For detailed assistance, please contact our support team at support@company.com or call 1-800-123-4567."
)

type fallbackRule struct {
	category Category
	keywords []string
	reply    string
}

// fallbackRules are checked in order; the first hit wins.
var fallbackRules = []fallbackRule{
	{CategoryCancel, []string{"cancel", "subscription", "stop", "end"}, ReplyBillingCancel},
	{CategoryHours, []string{"hour", "time", "open", "available"}, ReplyHours},
	{CategoryPassword, []string{"password", "reset", "login"}, ReplyPassword},
	{CategoryRefund, []string{"refund", "money", "return"}, ReplyRefund},
	{CategoryTrial, []string{"trial", "free"}, ReplyTrial},
}

// FallbackReply picks a canned reply for prompt by keyword category.
func FallbackReply(prompt string) string {
	reply, _ := fallbackFor(prompt)
	return reply
}

func fallbackFor(prompt string) (string, Category) {
	p := strings.ToLower(prompt)
	for _, rule := range fallbackRules {
		if containsAny(p, rule.keywords) {
			return rule.reply, rule.category
		}
	}
	return ReplyContact, CategoryContact
}
