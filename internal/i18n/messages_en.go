package i18n

// englishMessages contains all English translations.
var englishMessages = map[string]string{
	// Search replies
	"reply.search_failed": "I couldn't search right now. Please try again.",
	"reply.no_results":    "I couldn't find anything for that. Try the song name and artist.",
	"reply.ambiguous":     "I found a few possibilities:\n%s\nReply with a more precise song name and artist.",
	"reply.rate_limited":  "Easy there! Too many searches. Try again in a minute.",

	// Confirmation flow
	"reply.added":     "Queued: %s by %s 🎶",
	"reply.expired":   "That confirmation has expired. Search again to request the song.",
	"reply.duplicate": "That song is already in the queue.",
	"reply.rejected":  "Okay! Send me the song name and artist to search again.",

	// Confirmation card
	"confirm.body":          "%s",
	"confirm.played_today":  " (played today)",
	"confirm.reject_label":  "No",
	"confirm.confirm_label": "Yes, queue it",
}
