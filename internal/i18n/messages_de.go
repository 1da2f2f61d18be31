package i18n

// germanMessages contains all German translations.
var germanMessages = map[string]string{
	// Search replies
	"reply.search_failed": "Ich konnte gerade nicht suchen. Bitte versuch es nochmal.",
	"reply.no_results":    "Dazu habe ich nichts gefunden. Versuch es mit Songtitel und Interpret.",
	"reply.ambiguous":     "Ich habe mehrere Möglichkeiten gefunden:\n%s\nAntworte mit einem genaueren Songtitel und Interpret.",
	"reply.rate_limited":  "Immer langsam! Zu viele Suchanfragen. Versuch es in einer Minute nochmal.",

	// Confirmation flow
	"reply.added":     "In der Warteschlange: %s von %s 🎶",
	"reply.expired":   "Diese Bestätigung ist abgelaufen. Such nochmal, um den Song zu wünschen.",
	"reply.duplicate": "Dieser Song ist schon in der Warteschlange.",
	"reply.rejected":  "Okay! Schick mir Songtitel und Interpret für eine neue Suche.",

	// Confirmation card
	"confirm.body":          "%s",
	"confirm.played_today":  " (heute schon gespielt)",
	"confirm.reject_label":  "Nein",
	"confirm.confirm_label": "Ja, einreihen",
}
