package musicbrainz

import "strings"

// preprocessArtistName normalizes artist names for better matching.
func preprocessArtistName(name string) string {
	name = strings.TrimSpace(name)

	// Normalize collaboration separators
	name = strings.ReplaceAll(name, ", ", " & ")
	name = strings.ReplaceAll(name, " ft. ", " feat. ")
	name = strings.ReplaceAll(name, " ft ", " feat. ")
	name = strings.ReplaceAll(name, " featuring ", " feat. ")
	name = strings.ReplaceAll(name, " x ", " & ")

	return name
}

// preprocessTrackName strips version suffixes and parenthetical content.
func preprocessTrackName(name string) string {
	name = strings.TrimSpace(name)

	// Keywords that indicate version suffixes to strip (case-insensitive)
	suffixKeywords := []string{
		"remaster", "remix", "mix", "version", "anniversary",
		"edit", "recording", "take",
	}

	// Strip content after " - " if followed by a keyword
	if idx := strings.Index(name, " - "); idx != -1 {
		suffix := strings.ToLower(name[idx+3:])
		for _, keyword := range suffixKeywords {
			if strings.Contains(suffix, keyword) {
				name = name[:idx]
				break
			}
		}
	}

	// Keywords that indicate parenthetical content to strip
	parenKeywords := []string{
		"remaster", "remix", "mix", "version", "edit",
		"feat.", "feat", "ft.", "ft", "featuring", "with",
		"live", "acoustic", "instrumental",
	}

	// Strip parenthetical content if it contains a keyword
	for {
		start := strings.Index(name, "(")
		if start == -1 {
			break
		}
		end := strings.Index(name[start:], ")")
		if end == -1 {
			break
		}
		end += start

		parenContent := strings.ToLower(name[start+1 : end])
		shouldStrip := false
		for _, keyword := range parenKeywords {
			if strings.Contains(parenContent, keyword) {
				shouldStrip = true
				break
			}
		}

		if shouldStrip {
			name = name[:start] + name[end+1:]
		} else {
			break
		}
	}

	return strings.TrimSpace(name)
}

// extractFirstArtist extracts the first artist from a collaboration.
func extractFirstArtist(name string) string {
	separators := []string{" & ", " feat. ", " featuring ", " x ", ","}

	for _, sep := range separators {
		if idx := strings.Index(name, sep); idx != -1 {
			return strings.TrimSpace(name[:idx])
		}
	}

	return name
}
