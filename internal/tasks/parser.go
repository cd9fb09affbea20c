// Package tasks implements the Task Parser: anchored-regex
// parsing of a project's tasks.md file, atomic single-checkbox rewrites,
// and grouping by integer id prefix.
package tasks

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/renameio/v2"

	"github.com/red64llc/red64/pkg/models"
)

// taskLine matches "- [ ] 1.2 Title", "- [x] 1. Title", with optional
// trailing asterisk and optional leading "(P)" priority marker
var taskLine = regexp.MustCompile(`^-\s+\[([ x])\](\*)?\s+(\d+(?:\.\d+)?)\.?\s+(?:\(P\)\s+)?(.+)$`)

// Parse reads a tasks.md file and returns every task line in order,
// with each task's description populated from the indented "-" bullets
// that follow it up to the next task line.
func Parse(path string) ([]models.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tasks: read %s: %w", path, err)
	}
	return ParseBytes(data), nil
}

// ParseBytes parses already-loaded tasks.md content.
func ParseBytes(data []byte) []models.Task {
	lines := strings.Split(string(data), "\n")
	var out []models.Task
	var descLines []string

	flushDescription := func() {
		if len(out) > 0 && len(descLines) > 0 {
			out[len(out)-1].Description = strings.TrimSpace(strings.Join(descLines, "\n"))
		}
		descLines = nil
	}

	for _, line := range lines {
		if m := taskLine.FindStringSubmatch(line); m != nil {
			flushDescription()
			out = append(out, models.Task{
				ID:          m[3],
				Completed:   m[1] == "x",
				HasAsterisk: m[2] == "*",
				Priority:    strings.Contains(line, "(P)"),
				Title:       strings.TrimSpace(m[4]),
			})
			continue
		}
		trimmed := strings.TrimLeft(line, " \t")
		if len(out) > 0 && strings.HasPrefix(trimmed, "-") {
			descLines = append(descLines, trimmed)
		}
	}
	flushDescription()
	return out
}

// checkboxLineFor finds the exact line for a given task id, in either
// checkbox state, so MarkTaskComplete can rewrite only that line.
func checkboxLineFor(id string) *regexp.Regexp {
	return regexp.MustCompile(`^-\s+\[( |x)\]\*?\s+` + regexp.QuoteMeta(id) + `\.?\s`)
}

// MarkTaskComplete rewrites task id's checkbox to "[x]" and atomically
// replaces the file. Already-checked tasks are a successful no-op. An
// id absent from the file is an error.
func MarkTaskComplete(path, id string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("tasks: read %s: %w", path, err)
	}

	re := checkboxLineFor(id)
	lines := strings.Split(string(data), "\n")
	found := false
	for i, line := range lines {
		if !re.MatchString(line) {
			continue
		}
		found = true
		if strings.Contains(line, "[x]") {
			return nil
		}
		lines[i] = strings.Replace(line, "[ ]", "[x]", 1)
		break
	}
	if !found {
		return fmt.Errorf("tasks: no task with id %q in %s", id, path)
	}

	return renameio.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644)
}

// Group buckets tasks by the integer prefix of their id, preserving
// ascending order of first appearance. A group is complete iff every
// sub-task within it is completed.
func Group(items []models.Task) []models.TaskGroup {
	order := []int{}
	byGroup := map[int][]models.Task{}

	for _, t := range items {
		g := groupOf(t.ID)
		if _, seen := byGroup[g]; !seen {
			order = append(order, g)
		}
		byGroup[g] = append(byGroup[g], t)
	}

	groups := make([]models.TaskGroup, 0, len(order))
	for _, g := range order {
		ts := byGroup[g]
		complete := len(ts) > 0
		for _, t := range ts {
			if !t.Completed {
				complete = false
				break
			}
		}
		groups = append(groups, models.TaskGroup{Group: g, Tasks: ts, Completed: complete})
	}
	return groups
}

func groupOf(id string) int {
	prefix := id
	if i := strings.IndexByte(id, '.'); i >= 0 {
		prefix = id[:i]
	}
	n, _ := strconv.Atoi(prefix)
	return n
}
