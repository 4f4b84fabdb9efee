// Package diagnostics builds the redacted diagnostics report of an account.
package diagnostics

import (
	"cmp"
	"slices"
	"time"

	"github.com/stacklok/listonic-sync/internal/sync/coordinator"
)

// Redacted replaces every value that must not leave the process
const Redacted = "**REDACTED**"

// alwaysRedacted fields are redacted even if someone adds them to the allow-list
var alwaysRedacted = []string{"email", "password"}

// allowed config entry fields are copied verbatim
var allowed = []string{"name", "interval", "keyring"}

// Report is the diagnostics document of one account
type Report struct {
	ConfigEntry    map[string]any `json:"config_entry"`
	Lists          ListsSection   `json:"lists"`
	Coordinator    CoordSection   `json:"coordinator"`
	Authentication AuthSection    `json:"authentication"`
}

// ListsSection summarizes the cached lists
type ListsSection struct {
	Count   int          `json:"count"`
	Details []ListDetail `json:"details"`
}

// ListDetail summarizes one list without item names
type ListDetail struct {
	ID             int64  `json:"list_id"`
	Name           string `json:"name"`
	ItemCount      int    `json:"item_count"`
	CheckedCount   int    `json:"checked_count"`
	UncheckedCount int    `json:"unchecked_count"`
	IsArchived     bool   `json:"is_archived"`
}

// CoordSection describes the polling state
type CoordSection struct {
	LastUpdateSuccess     bool       `json:"last_update_success"`
	LastUpdateTime        *time.Time `json:"last_update_time"`
	UpdateIntervalSeconds int64      `json:"update_interval_seconds"`
}

// AuthSection reports token presence
type AuthSection struct {
	HasToken        bool `json:"has_token"`
	HasRefreshToken bool `json:"has_refresh_token"`
}

// Build assembles the report from a config entry and a coordinator snapshot
func Build(entry map[string]any, snapshot coordinator.Snapshot) Report {
	details := make([]ListDetail, 0, len(snapshot.Data))
	for _, l := range snapshot.Data {
		details = append(details, ListDetail{
			ID:             l.ID,
			Name:           l.Name,
			ItemCount:      len(l.Items),
			CheckedCount:   l.CheckedCount(),
			UncheckedCount: l.UncheckedCount(),
			IsArchived:     l.IsArchived,
		})
	}
	slices.SortFunc(details, func(a, b ListDetail) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return Report{
		ConfigEntry: Redact(entry),
		Lists: ListsSection{
			Count:   len(details),
			Details: details,
		},
		Coordinator: CoordSection{
			LastUpdateSuccess:     snapshot.LastUpdateSuccess,
			LastUpdateTime:        snapshot.LastUpdateSuccessTime,
			UpdateIntervalSeconds: snapshot.UpdateIntervalSeconds,
		},
		Authentication: AuthSection{
			HasToken:        snapshot.Client.HasToken,
			HasRefreshToken: snapshot.Client.HasRefreshToken,
		},
	}
}

// Redact returns a copy of entry keeping only allow-listed values. Credentials
// are always present in the output, as Redacted.
func Redact(entry map[string]any) map[string]any {
	out := make(map[string]any, len(entry)+len(alwaysRedacted))
	for key, value := range entry {
		if slices.Contains(allowed, key) && !slices.Contains(alwaysRedacted, key) {
			out[key] = value
			continue
		}
		out[key] = Redacted
	}
	for _, key := range alwaysRedacted {
		out[key] = Redacted
	}
	return out
}
