package inventory

import "fmt"

// Registry is the full inventory: an insertion-ordered set of records,
// unique by hostname. The hostname index makes the first-write-wins rule
// explicit instead of hiding it behind record equality.
type Registry struct {
	records []*Record
	index   map[string]*Record
}

func NewRegistry() *Registry {
	return &Registry{index: map[string]*Record{}}
}

// adopt appends an existing record, refusing duplicates. Merge and Filter go
// through it so records keep their parsed state (user, groups) untouched.
func (g *Registry) adopt(rec *Record) bool {
	if _, ok := g.index[rec.Hostname]; ok {
		return false
	}
	g.records = append(g.records, rec)
	g.index[rec.Hostname] = rec
	return true
}

// ensure returns the record for hostname, creating a bare ungrouped one if
// needed. This is the parser path: no user default is applied.
func (g *Registry) ensure(hostname string) *Record {
	if rec, ok := g.index[hostname]; ok {
		return rec
	}
	rec := NewRecord(hostname)
	g.adopt(rec)
	return rec
}

// AddHost enrolls a host. If the hostname is already present the call is a
// no-op and the existing record is returned untouched: groups and variables
// from the duplicate definition are discarded, not merged. An empty user
// defaults to "root".
func (g *Registry) AddHost(hostname string, groups []string, user string) *Record {
	if rec, ok := g.index[hostname]; ok {
		return rec
	}
	if user == "" {
		user = "root"
	}
	rec := NewRecord(hostname)
	rec.User = user
	for _, group := range groups {
		rec.AddGroup(group)
	}
	g.adopt(rec)
	return rec
}

// RemoveHost removes and returns the record, or ErrHostNotFound.
func (g *Registry) RemoveHost(hostname string) (*Record, error) {
	rec, ok := g.index[hostname]
	if !ok {
		return nil, fmt.Errorf("%q: %w", hostname, ErrHostNotFound)
	}
	delete(g.index, hostname)
	for i, r := range g.records {
		if r == rec {
			g.records = append(g.records[:i], g.records[i+1:]...)
			break
		}
	}
	return rec, nil
}

func (g *Registry) GetHost(hostname string) (*Record, bool) {
	rec, ok := g.index[hostname]
	return rec, ok
}

func (g *Registry) HasHost(hostname string) bool {
	_, ok := g.index[hostname]
	return ok
}

// Hosts returns the records in registry order.
func (g *Registry) Hosts() []*Record {
	out := make([]*Record, len(g.records))
	copy(out, g.records)
	return out
}

func (g *Registry) Len() int {
	return len(g.records)
}

// Hostnames returns every hostname in registry order.
func (g *Registry) Hostnames() []string {
	out := make([]string, 0, len(g.records))
	for _, rec := range g.records {
		out = append(out, rec.Hostname)
	}
	return out
}

// HostsInGroup returns the records belonging to group, in registry order.
// The virtual "all" group matches every record.
func (g *Registry) HostsInGroup(group string) []*Record {
	var out []*Record
	for _, rec := range g.records {
		if rec.HasGroup(group) {
			out = append(out, rec)
		}
	}
	return out
}

// GroupNames returns every group name observed across the registry in
// first-seen order, excluding the implicit "all".
func (g *Registry) GroupNames() []string {
	var out []string
	seen := map[string]bool{}
	for _, rec := range g.records {
		for _, group := range rec.groups {
			if !seen[group] {
				seen[group] = true
				out = append(out, group)
			}
		}
	}
	return out
}

// Filter returns a new registry holding the union of HostsInGroup for each
// requested group, deduplicated by hostname. No groups requested means no
// hosts: an empty input yields an empty registry, not the full set.
func (g *Registry) Filter(groups []string) *Registry {
	out := NewRegistry()
	for _, group := range groups {
		for _, rec := range g.HostsInGroup(group) {
			out.adopt(rec)
		}
	}
	return out
}

// Merge folds other registries into this one in the order given. Each record
// is subject to AddHost semantics: the first definition of a hostname wins
// entirely and later ones are dropped, never merged field-by-field.
func (g *Registry) Merge(others ...*Registry) {
	for _, other := range others {
		if other == nil {
			continue
		}
		for _, rec := range other.records {
			g.adopt(rec)
		}
	}
}
