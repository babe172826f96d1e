package services

import (
	"errors"
	"regexp"
	"strings"
)

var ErrContentRejected = errors.New("content rejected")

// BannedWords covers the French and Wolof insults seen on the forum plus
// the usual English ones.
var BannedWords = []string{
	"connard", "connasse", "salope", "salaud", "encule", "enculé", "pute",
	"putain", "merde", "batard", "bâtard", "nique", "fdp", "ntm",
	"fuck", "fucking", "shit", "bitch", "asshole",
	"porn", "porno", "nude", "nudes",
	"arnaque", "scam", "phishing",
}

// Rejection carries the reason a text was refused and the message shown
// to the resident.
type Rejection struct {
	Reason  string
	Message string
}

func (r *Rejection) Error() string {
	return r.Message
}

func (r *Rejection) Unwrap() error {
	return ErrContentRejected
}

// ContentFilter screens forum posts and comments.
type ContentFilter struct {
	enabled           bool
	bannedWordRegexps []*regexp.Regexp
	urlPattern        *regexp.Regexp
	allCapsPattern    *regexp.Regexp
}

func NewContentFilter(enabled bool) *ContentFilter {
	f := &ContentFilter{enabled: enabled}

	f.bannedWordRegexps = make([]*regexp.Regexp, 0, len(BannedWords))
	for _, word := range BannedWords {
		// \b does not treat accented letters as word characters.
		pattern := `(?i)(^|[^\p{L}])` + regexp.QuoteMeta(word) + `($|[^\p{L}])`
		re, err := regexp.Compile(pattern)
		if err == nil {
			f.bannedWordRegexps = append(f.bannedWordRegexps, re)
		}
	}

	f.urlPattern = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`)
	f.allCapsPattern = regexp.MustCompile(`\p{Lu}{5,}`)
	return f
}

var rejectionMessages = map[string]string{
	"inappropriate_language": "Votre message contient des propos inappropriés.",
	"url_not_allowed":        "Les liens ne sont pas autorisés.",
	"spam_detected":          "Votre message ressemble à du spam.",
	"excessive_caps":         "Merci d'éviter les majuscules excessives.",
}

// Check returns a *Rejection for the first text that fails a rule.
func (f *ContentFilter) Check(texts ...string) error {
	if f == nil || !f.enabled {
		return nil
	}
	for _, text := range texts {
		if reason := f.reason(text); reason != "" {
			return &Rejection{Reason: reason, Message: rejectionMessages[reason]}
		}
	}
	return nil
}

func (f *ContentFilter) reason(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	for _, re := range f.bannedWordRegexps {
		if re.MatchString(text) {
			return "inappropriate_language"
		}
	}
	if f.urlPattern.MatchString(text) {
		return "url_not_allowed"
	}
	if hasRepeatedRun(text, 5) {
		return "spam_detected"
	}
	if len(f.allCapsPattern.FindAllString(text, -1)) > 2 {
		return "excessive_caps"
	}
	return ""
}

// hasRepeatedRun reports whether the same rune appears n times in a row,
// ignoring spaces and digits. RE2 has no backreferences.
func hasRepeatedRun(text string, n int) bool {
	var last rune
	run := 0
	for _, r := range strings.ToLower(text) {
		if r == ' ' || (r >= '0' && r <= '9') {
			last, run = 0, 0
			continue
		}
		if r == last {
			run++
		} else {
			last, run = r, 1
		}
		if run >= n {
			return true
		}
	}
	return false
}
