package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// redaction replaces one kind of contact or payment detail. valid, when set,
// confirms a regex hit before it is replaced.
type redaction struct {
	placeholder string
	pattern     *regexp.Regexp
	valid       func(match string) bool
}

// Order matters: card numbers are removed before the phone pattern can split
// them into fragments.
var redactions = []redaction{
	{"[EMAIL]", regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`), nil},
	{"[CARD]", regexp.MustCompile(`\b(?:\d[ -]?){12,18}\d\b`), luhnValid},
	{"[PHONE]", regexp.MustCompile(`(?:\+?1[-.\s]?)?\(?\b[0-9]{3}\)?[-.\s]?[0-9]{3}[-.\s]?[0-9]{4}\b`), nil},
}

// HashID returns the hex-encoded SHA-256 of an identifier, or "" for "".
func HashID(id string) string {
	if id == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:])
}

// ScrubPII masks emails, payment card numbers and phone numbers that prospects
// read out during a call.
func ScrubPII(text string) string {
	for _, r := range redactions {
		if r.valid == nil {
			text = r.pattern.ReplaceAllString(text, r.placeholder)
			continue
		}
		text = r.pattern.ReplaceAllStringFunc(text, func(m string) string {
			if r.valid(m) {
				return r.placeholder
			}
			return m
		})
	}
	return text
}

// ScrubMessages scrubs every message in place.
func ScrubMessages(msgs []Message) {
	for i := range msgs {
		msgs[i].Content = ScrubPII(msgs[i].Content)
	}
}

func luhnValid(s string) bool {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if len(digits) < 13 {
		return false
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
