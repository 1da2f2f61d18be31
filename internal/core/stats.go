package core

import (
	"sort"
	"strings"
)

// StatEntry is one row of the request statistics: a song or artist key and
// its play count.
type StatEntry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// TopSongs returns the n most-played songs, keyed "Title - Artist", counts
// descending. Ties keep history iteration order.
func TopSongs(records []PlayRecord, n int) []StatEntry {
	counts := make(map[string]int)
	var order []string

	for _, record := range records {
		key := record.Title + " - " + record.Artist
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}

	return topEntries(counts, order, n)
}

// TopArtists returns the n most-played artists. A track crediting multiple
// artists counts once for each of them, split on ArtistSeparator.
func TopArtists(records []PlayRecord, n int) []StatEntry {
	counts := make(map[string]int)
	var order []string

	for _, record := range records {
		for _, artist := range strings.Split(record.Artist, ArtistSeparator) {
			artist = strings.TrimSpace(artist)
			if artist == "" {
				continue
			}
			if _, seen := counts[artist]; !seen {
				order = append(order, artist)
			}
			counts[artist]++
		}
	}

	return topEntries(counts, order, n)
}

func topEntries(counts map[string]int, order []string, n int) []StatEntry {
	entries := make([]StatEntry, 0, len(order))
	for _, key := range order {
		entries = append(entries, StatEntry{Key: key, Count: counts[key]})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})

	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
