package upstream

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ppiankov/reliefboard/internal/model"
)

// MaxParagraphs is the longest body kept as is
const MaxParagraphs = 3

// keptParagraphs is how many trailing paragraphs survive truncation
const keptParagraphs = 4

var paragraphBreak = regexp.MustCompile(`\n[ \t\r]*\n`)

// Truncate bounds body length for the board's description limit. Bodies with
// more than MaxParagraphs paragraphs keep only the last four, behind an
// ellipsis and followed by a link to the full text.
func Truncate(body, canonicalURL string) string {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return ""
	}

	var paragraphs []string
	for _, p := range paragraphBreak.Split(trimmed, -1) {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	if len(paragraphs) <= MaxParagraphs {
		return body
	}

	parts := make([]string, 0, keptParagraphs+2)
	parts = append(parts, "...")
	parts = append(parts, paragraphs[len(paragraphs)-keptParagraphs:]...)
	parts = append(parts, ReadMoreLink(canonicalURL))
	return strings.Join(parts, "\n\n")
}

// ReadMoreLink is the markdown pointer appended to truncated bodies
func ReadMoreLink(canonicalURL string) string {
	return "[Read full text](" + canonicalURL + ")"
}

// SortEntities orders by list position, then newest (highest id) first
func SortEntities(entities []model.Entity) {
	sort.SliceStable(entities, func(i, j int) bool {
		if entities[i].StatusPosition != entities[j].StatusPosition {
			return entities[i].StatusPosition < entities[j].StatusPosition
		}
		return entities[i].ID > entities[j].ID
	})
}

// ReportBucket coarsens the age of the latest report. Ages up to a week are
// kept exact; older ones collapse to 8, 31 or 61 days.
func ReportBucket(days int) int {
	switch {
	case days < 0:
		return model.NoReport
	case days > 60:
		return 61
	case days > 30:
		return 31
	case days > 7:
		return 8
	}
	return days
}
