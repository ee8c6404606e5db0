package transcripts

import "strings"

// defaultLanguages are always appended to the configured preferences.
var defaultLanguages = []string{"en", "en-US"}

// preferredLanguages returns the configured languages plus the defaults,
// deduplicated with order preserved.
func preferredLanguages(languages []string) []string {
	seen := make(map[string]bool)
	ordered := make([]string, 0, len(languages)+len(defaultLanguages))
	for _, lang := range append(append([]string{}, languages...), defaultLanguages...) {
		lang = strings.TrimSpace(lang)
		if lang == "" || seen[lang] {
			continue
		}
		seen[lang] = true
		ordered = append(ordered, lang)
	}
	return ordered
}

// orderTracks ranks caption tracks for download: for each preferred language,
// manually created tracks before automatic ones, then any remaining manual
// tracks, then any remaining automatic tracks.
func orderTracks(tracks []captionTrack, languages []string) []captionTrack {
	taken := make([]bool, len(tracks))
	ordered := make([]captionTrack, 0, len(tracks))

	take := func(match func(captionTrack) bool) {
		for i, track := range tracks {
			if !taken[i] && match(track) {
				taken[i] = true
				ordered = append(ordered, track)
			}
		}
	}

	for _, lang := range languages {
		take(func(t captionTrack) bool { return !t.automatic() && t.LanguageCode == lang })
		take(func(t captionTrack) bool { return t.automatic() && t.LanguageCode == lang })
	}
	take(func(t captionTrack) bool { return !t.automatic() })
	take(func(t captionTrack) bool { return t.automatic() })

	return ordered
}

func (t captionTrack) automatic() bool {
	return t.Kind == "asr"
}
