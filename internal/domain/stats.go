// Package domain — derived watchlist statistics.
//
// Stats is a pure function of a movie collection; it carries no state and is
// recomputed by callers (the client controller, the CLI) whenever the
// underlying collection changes.
package domain

// Stats summarizes the watch progress of a collection.
type Stats struct {
	Total           int      `json:"total"`
	Watched         int      `json:"watched"`
	Unwatched       int      `json:"unwatched"`
	PercentWatched  float64  `json:"percent_watched"`
	WatchedTitles   []string `json:"watched_titles"`
	UnwatchedTitles []string `json:"unwatched_titles"`
}

// ComputeStats derives counts, the watched percentage, and per-state title
// lists from movies. An empty collection yields a zero percentage rather
// than dividing by zero.
func ComputeStats(movies []Movie) Stats {
	s := Stats{
		Total:           len(movies),
		WatchedTitles:   []string{},
		UnwatchedTitles: []string{},
	}
	for _, m := range movies {
		if m.Status == StatusWatched {
			s.Watched++
			s.WatchedTitles = append(s.WatchedTitles, m.Title)
		} else {
			s.Unwatched++
			s.UnwatchedTitles = append(s.UnwatchedTitles, m.Title)
		}
	}
	if s.Total > 0 {
		s.PercentWatched = float64(s.Watched) / float64(s.Total) * 100
	}
	return s
}
