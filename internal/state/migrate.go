package state

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// legacyPhaseRenames maps pre-v2 phase tags to their current names
//.
var legacyPhaseRenames = map[string]string{
	"requirements-review": "requirements-approval",
	"design-review":       "design-approval",
	"tasks-review":        "tasks-approval",
}

// migrate brings a raw decoded document up to CurrentStateVersion,
// returning re-marshaled JSON ready for the final typed unmarshal.
// Every step is defensive: a field of the wrong shape is skipped
// rather than treated as an error, since migration only ever runs on
// documents that already passed validShape.
func migrate(raw map[string]any) ([]byte, error) {
	version := 0
	if v, ok := raw["version"].(float64); ok {
		version = int(v)
	}
	if version >= 2 {
		return json.Marshal(raw)
	}

	renamePhaseTags(raw)
	migrateHistory(raw)
	migrateTaskProgress(raw)
	raw["version"] = 2

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("marshal migrated document: %w", err)
	}
	return data, nil
}

func renamePhaseTags(raw map[string]any) {
	if phase, ok := raw["phase"].(map[string]any); ok {
		if t, ok := phase["type"].(string); ok {
			if renamed, ok := legacyPhaseRenames[t]; ok {
				phase["type"] = renamed
			}
		}
	}
	if hist, ok := raw["history"].([]any); ok {
		for _, h := range hist {
			entry, ok := h.(map[string]any)
			if !ok {
				continue
			}
			phase, ok := entry["phase"].(map[string]any)
			if !ok {
				continue
			}
			if t, ok := phase["type"].(string); ok {
				if renamed, ok := legacyPhaseRenames[t]; ok {
					phase["type"] = renamed
				}
			}
		}
	}
}

// migrateHistory converts a legacy history array of bare phase strings
// into HistoryEntry objects, seeding timestamp from createdAt.
func migrateHistory(raw map[string]any) {
	hist, ok := raw["history"].([]any)
	if !ok {
		return
	}
	createdAt, _ := raw["createdAt"].(string)

	converted := make([]any, 0, len(hist))
	changed := false
	for _, h := range hist {
		switch v := h.(type) {
		case string:
			changed = true
			tag := v
			if renamed, ok := legacyPhaseRenames[tag]; ok {
				tag = renamed
			}
			converted = append(converted, map[string]any{
				"phase":     map[string]any{"type": tag},
				"timestamp": createdAt,
			})
		default:
			converted = append(converted, h)
		}
	}
	if changed {
		raw["history"] = converted
	}
}

// migrateTaskProgress converts the legacy
// {completedTasks: [ids], totalTasks} shape into GroupedTaskProgress,
// synthesizing TaskEntry records with empty titles — titles are only
// filled in when tasks.md is freshly parsed.
func migrateTaskProgress(raw map[string]any) {
	tp, ok := raw["taskProgress"].(map[string]any)
	if !ok {
		return
	}
	if _, hasNew := tp["completedGroups"]; hasNew {
		return
	}
	legacyIDs, ok := tp["completedTasks"].([]any)
	if !ok {
		return
	}

	groupSet := map[int]bool{}
	entries := make([]any, 0, len(legacyIDs))
	for _, idAny := range legacyIDs {
		id, ok := idAny.(string)
		if !ok {
			continue
		}
		groupSet[groupPrefix(id)] = true
		entries = append(entries, map[string]any{
			"id":          id,
			"title":       "",
			"status":      "completed",
			"completedAt": "migration",
		})
	}

	groups := make([]int, 0, len(groupSet))
	for g := range groupSet {
		groups = append(groups, g)
	}

	raw["taskProgress"] = map[string]any{
		"completedGroups": groups,
		"totalGroups":      tp["totalTasks"],
		"taskEntries":      entries,
	}
}

func groupPrefix(id string) int {
	prefix := id
	if i := strings.IndexByte(id, '.'); i >= 0 {
		prefix = id[:i]
	}
	n, _ := strconv.Atoi(prefix)
	return n
}
