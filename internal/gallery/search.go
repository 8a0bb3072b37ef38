package gallery

import (
	"strings"

	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/models"
)

// SearchResult is a filtered view over the cached read model. NoMatch is set
// when a non-empty query matched nothing.
type SearchResult struct {
	Media   []models.Media `json:"media"`
	Events  []models.Event `json:"events"`
	NoMatch bool           `json:"no_match"`
}

// Search filters the cached media and events by a case-insensitive substring
// match on identifier/filename, linked event title, and date string. It never
// touches the stores.
func (g *Gallery) Search(query string) SearchResult {
	media := g.Media()
	events := g.Events()

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return SearchResult{Media: media, Events: events}
	}

	titles := make(map[string]string, len(events))
	for _, ev := range events {
		titles[ev.ID] = ev.Title
	}

	var res SearchResult
	res.Media = []models.Media{}
	res.Events = []models.Event{}
	for _, m := range media {
		if mediaMatches(m, titles, q) {
			res.Media = append(res.Media, m)
		}
	}
	for _, ev := range events {
		if contains(ev.ID, q) || contains(ev.Title, q) || contains(ev.Date, q) {
			res.Events = append(res.Events, ev)
		}
	}
	res.NoMatch = len(res.Media) == 0 && len(res.Events) == 0
	return res
}

func mediaMatches(m models.Media, titles map[string]string, q string) bool {
	if contains(m.ID, q) || contains(m.Date, q) {
		return true
	}
	if m.Event != nil && contains(titles[*m.Event], q) {
		return true
	}
	return false
}

func contains(s, q string) bool {
	return strings.Contains(strings.ToLower(s), q)
}
