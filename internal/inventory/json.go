package inventory

import (
	"encoding/json"
	"fmt"
)

// flatHostEntry is how a host renders inside every group list of the flat
// json export: its full group tags plus its variable bag.
type flatHostEntry struct {
	Groups    []string       `json:"groups"`
	Variables map[string]any `json:"variables"`
}

// serializeFlatJSON renders the write-only flat json export: "all" lists
// every host exactly once, and every observed group lists its members again.
// There is no parser for this format.
func (g *Registry) serializeFlatJSON() (string, error) {
	out := map[string][]map[string]flatHostEntry{
		GroupAll: make([]map[string]flatHostEntry, 0, len(g.records)),
	}
	for _, rec := range g.records {
		out[GroupAll] = append(out[GroupAll], rec.flatEntry())
	}
	for _, group := range g.GroupNames() {
		for _, rec := range g.HostsInGroup(group) {
			out[group] = append(out[group], rec.flatEntry())
		}
	}

	b, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("render flat json inventory: %w", err)
	}
	return string(b), nil
}

func (r *Record) flatEntry() map[string]flatHostEntry {
	// Groups and Variables both return non-nil copies, so empty records
	// marshal as [] and {} rather than null.
	return map[string]flatHostEntry{
		r.Hostname: {Groups: r.Groups(), Variables: r.Variables()},
	}
}
