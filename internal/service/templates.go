package service

import (
	"strings"

	"github.com/postloom/postloom/internal/models"
	"github.com/postloom/postloom/pkg/util"
)

// Caption templates per tone. "{theme}" is substituted verbatim; the
// template for a given day is picked by dayOffset modulo table length, so a
// long range cycles through the whole table.
var captionTemplates = map[Tone][]string{
	ToneProfessional: {
		"Discover how {theme} can transform your business. Our team shares the key insights you need to stay ahead.",
		"Industry spotlight: {theme}. Here is what the data tells us and what it means for your strategy.",
		"We've been working on {theme} and the results speak for themselves. Reach out to learn more.",
		"Three things every professional should know about {theme}. Number two surprises most people.",
		"A closer look at {theme}: practical takeaways from our latest work.",
	},
	ToneCasual: {
		"Okay, real talk: {theme} is kind of a big deal and here's why.",
		"So we've been obsessed with {theme} lately... can you blame us?",
		"Just dropping by with some thoughts on {theme}. Grab a coffee first.",
		"{theme}? Yeah, we went there. Here's the scoop.",
	},
	ToneFriendly: {
		"Hey friends! We wanted to share something about {theme} that made our week.",
		"We love talking about {theme} with this community. What's your take?",
		"A little something about {theme} to brighten your feed today.",
		"You asked, we listened: everything you wanted to know about {theme}.",
	},
	ToneInformative: {
		"Did you know? {theme} affects more of your day than you might think. Here are the facts.",
		"Quick explainer: what {theme} actually means and why it matters.",
		"The numbers behind {theme}, broken down in under a minute.",
		"A step-by-step look at {theme}, no jargon required.",
	},
	ToneInspirational: {
		"Every great journey starts with a single step. Today, that step is {theme}.",
		"Believe in the power of {theme}. We've seen it change everything.",
		"Your only limit is you. Let {theme} be the spark.",
		"Dream big. Start small. Start with {theme}.",
	},
}

const (
	shortFormLimit = 250

	linkedinHashtags  = "#Business #Growth #Professional"
	instagramHashtags = "✨ #instagood #community"
	facebookCTA       = "What do you think? Let us know in the comments and share with someone who needs to see this!"
)

// FallbackCaption deterministically builds caption text for a slot without
// calling the AI service. It is total: any tone and any platform, known or
// not, yields a non-empty caption.
func FallbackCaption(tone Tone, theme, platform string, dayOffset int) string {
	templates, ok := captionTemplates[tone]
	if !ok {
		templates = captionTemplates[ToneProfessional]
	}
	if dayOffset < 0 {
		dayOffset = -dayOffset
	}

	text := strings.ReplaceAll(templates[dayOffset%len(templates)], "{theme}", theme)

	return decorateForPlatform(text, theme, platform)
}

// decorateForPlatform applies platform conventions after substitution:
// hard truncation for short-form networks, hashtag blocks, or an
// engagement prompt.
func decorateForPlatform(text, theme, platform string) string {
	switch platform {
	case models.PlatformTwitter, "x":
		return util.TruncateRunes(text, shortFormLimit)
	case models.PlatformLinkedIn:
		return text + "\n\n" + strings.TrimSpace(linkedinHashtags+" "+util.HashtagFromTheme(theme))
	case models.PlatformInstagram:
		return text + "\n\n" + strings.TrimSpace(instagramHashtags+" "+util.HashtagFromTheme(theme))
	case models.PlatformFacebook:
		return text + "\n\n" + facebookCTA
	default:
		return text
	}
}
