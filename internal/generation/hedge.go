package generation

import "strings"

// SuspicionFunc decides whether generated output looks ungrounded and should
// be replaced with the canonical refusal.
type SuspicionFunc func(text string) bool

// hedgePhrases are uncertainty markers that signal the model answered from
// its own knowledge rather than the supplied context. A coarse substring
// scan is intentional; this is a policy filter, not a semantic classifier.
var hedgePhrases = []string{
	"as an ai",
	"as a language model",
	"i believe",
	"i think",
	"based on my knowledge",
	"to my knowledge",
	"typically",
	"usually",
	"generally",
	"in general",
}

// HedgeScan reports whether the lower-cased text contains any hedge phrase.
func HedgeScan(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range hedgePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
