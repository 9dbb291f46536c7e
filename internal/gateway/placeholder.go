package gateway

import (
	"embed"
	"encoding/json"
	"fmt"
)

//go:embed placeholder/*.json
var placeholderFS embed.FS

func placeholderFile(name string) json.RawMessage {
	data, err := placeholderFS.ReadFile("placeholder/" + name + ".json")
	if err != nil {
		panic(fmt.Sprintf("gateway: missing placeholder %s: %v", name, err))
	}
	return json.RawMessage(data)
}

// Placeholder returns the static sample bundle shown when no session token
// is available.
func Placeholder() Bundle {
	return Bundle{
		Dashboard:   Ok(placeholderFile("dashboard")),
		Departments: Ok(placeholderFile("departments")),
		Workers:     Ok(placeholderFile("workers")),
		Wards:       Ok(placeholderFile("wards")),
		Activity:    Ok(placeholderFile("activity")),
	}
}

// PlaceholderRecentActivity returns the sample activity feed.
func PlaceholderRecentActivity() json.RawMessage {
	return placeholderFile("recent_activity")
}

// PlaceholderNotifications returns the sample notifications.
func PlaceholderNotifications() json.RawMessage {
	return placeholderFile("notifications")
}
