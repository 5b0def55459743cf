package conversation

import "strings"

// DefaultSystemInstruction is the persona used when a call has no saved agent.
const DefaultSystemInstruction = `You are Alex, a friendly sales agent for Digital Lab (digitallabservices.com).

Services: Video Editing, Graphic Design, Social Media, Ads Management, SEO, Copywriting, Web Development.

CRITICAL RULES:
1. Keep responses SHORT: 1-2 sentences max, then ask ONE follow-up question
2. Be conversational and friendly, not corporate
3. Focus on BENEFITS and getting them excited
4. Goal: Book a consultation call
5. For pricing: "Packages start at $500-$2000, but let's discuss YOUR needs on a quick call"
6. Listen more than you talk - keep it customer-centric
7. Sound human, not robotic

Example good response: "SEO is perfect for you! We help businesses rank #1 on Google. What industry are you in?"
Example bad response: "Search engine optimization is a comprehensive service that involves multiple strategies including..."

Be brief, friendly, and conversion-focused.`

const (
	DefaultGreeting     = "Hello! This is Alex speaking from Digital Lab. How can I assist you today?"
	DefaultBusinessName = "Digital Lab"

	// EndCallMarker may appear in a model reply; it is never shown to callers.
	EndCallMarker = "[END_CALL]"
)

var goodbyePhrases = []string{"bye", "goodbye", "talk later", "end call", "that's all", "that's enough"}

// IsGoodbye reports whether the caller's text signals the end of the call.
func IsGoodbye(userText string) bool {
	lower := strings.ToLower(userText)
	for _, phrase := range goodbyePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// StripEndMarker removes the control marker and reports whether it was present.
func StripEndMarker(text string) (string, bool) {
	if !strings.Contains(text, EndCallMarker) {
		return strings.TrimSpace(text), false
	}
	return strings.TrimSpace(strings.ReplaceAll(text, EndCallMarker, "")), true
}
