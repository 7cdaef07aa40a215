package advisor

import (
	"regexp"
	"strings"
)

const (
	OnboardingTip = "Start adding transactions to get smart insights!"
	OfflineNotice = "You are offline. Showing generic financial tips."

	// TipCount is how many tips a full answer carries.
	TipCount = 3
)

var localTips = [...]string{
	"Try to keep your food expenses below 30% of your total budget.",
	"Consider setting aside 20% of your income for savings.",
	"Small daily purchases can add up; review your 'Others' category.",
	"Track your recurring bills to identify potential subscription waste.",
	"Consistency is key—keep logging your expenses daily!",
}

// LocalTips returns a copy of the built-in pool, in its fixed order.
func LocalTips() []string {
	return append([]string(nil), localTips[:]...)
}

var bullet = regexp.MustCompile(`^[*•-]\s*`)

// ParseTips splits a model answer into at most TipCount tips, one per
// non-blank line, without leading bullet markers.
func ParseTips(text string) []string {
	var tips []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		tips = append(tips, bullet.ReplaceAllString(line, ""))
		if len(tips) == TipCount {
			break
		}
	}
	return tips
}
