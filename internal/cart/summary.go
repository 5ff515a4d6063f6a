package cart

import (
	"fmt"
	"strings"
)

// FormatSummary renders cart lines as a natural-language phrase:
// "2 pizza", "2 pizza and 1 samosa", "2 pizza, 1 samosa and 3 mango lassi".
// An empty cart renders as "empty"; callers guard against reaching that.
func FormatSummary(lines []Line) string {
	if len(lines) == 0 {
		return "empty"
	}
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = fmt.Sprintf("%d %s", l.Quantity, l.Item)
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
}
