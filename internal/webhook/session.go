package webhook

import (
	"strings"

	"foodbot/internal/domain"
)

// ExtractSessionID pulls the session id out of the first output context
// name, which has the form ".../sessions/{id}/contexts/...". Returns ""
// if no context carries one.
func ExtractSessionID(contexts []domain.OutputContext) string {
	if len(contexts) == 0 {
		return ""
	}
	parts := strings.Split(contexts[0].Name, "/")
	for i, p := range parts {
		if p == "sessions" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}
