package card

import "github.com/zjrosen/automator/internal/workflow"

// DefaultIcon is used for services without a dedicated icon.
const DefaultIcon = "🔧"

var serviceIcons = map[string]string{
	"email":        "📧",
	"google drive": "📁",
	"slack":        "💬",
	"github":       "🐙",
	"calendar":     "📅",
	"todoist":      "✅",
}

// Icon returns the icon for a service name. Lookup uses
// workflow.ServiceKey, so "Google_Drive" and "google drive" match.
func Icon(service string) string {
	if icon, ok := serviceIcons[workflow.ServiceKey(service)]; ok {
		return icon
	}
	return DefaultIcon
}
