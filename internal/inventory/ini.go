package inventory

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

// Ansible's ini dialect is not real ini: hosts may appear before any section
// header and carry inline key=value tokens, so this is a hand-rolled
// line parser rather than an ini library.
var (
	sectionHeaderRe = regexp.MustCompile(`^\[([^\[\]]+)\]`)
	hostLineRe      = regexp.MustCompile(`^\s*([a-zA-Z0-9.-]+)`)
)

// parseGroupedList reads the grouped-list (ini) format. Hosts seen before
// the first section header land in "ungrouped". Lines matching neither
// pattern are ignored.
func parseGroupedList(data []byte) (*Registry, error) {
	reg := NewRegistry()
	current := GroupUngrouped

	sc := bufio.NewScanner(bytes.NewReader(data))
	lineno := 0
	for sc.Scan() {
		lineno++
		line := sc.Text()

		if m := sectionHeaderRe.FindStringSubmatch(line); m != nil {
			current = m[1]
			continue
		}
		m := hostLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		rec := reg.ensure(m[1])
		rec.AddGroup(current)

		fields := strings.Fields(line)
		for _, tok := range fields[1:] {
			// Split on the first '=' only: values may themselves contain '='.
			key, value, ok := strings.Cut(tok, "=")
			if !ok {
				return nil, fmt.Errorf("line %d: token %q: %w", lineno, tok, ErrMalformedVariableToken)
			}
			rec.SetVariable(key, value)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan grouped-list input: %w: %v", ErrSourceUnreadable, err)
	}
	return reg, nil
}

// serializeGroupedList renders the registry back to the grouped-list format:
// ungrouped hosts first with no header, then a blank line and a [group]
// section per remaining group in first-seen order. Hosts in several groups
// are repeated under each.
func (g *Registry) serializeGroupedList() string {
	var lines []string
	for _, rec := range g.HostsInGroup(GroupUngrouped) {
		lines = append(lines, rec.groupedListEntry())
	}
	for _, group := range g.GroupNames() {
		if group == GroupUngrouped {
			continue
		}
		lines = append(lines, "", "["+group+"]")
		for _, rec := range g.HostsInGroup(group) {
			lines = append(lines, rec.groupedListEntry())
		}
	}
	return strings.Join(lines, "\n")
}

// groupedListEntry renders one host line. A set user is emitted as a leading
// ansible_user token; the record's own variable bag is left untouched.
func (r *Record) groupedListEntry() string {
	parts := []string{r.Hostname}
	if r.User != "" {
		parts = append(parts, "ansible_user="+r.User)
	}
	for _, key := range r.variableKeys() {
		if key == "ansible_user" && r.User != "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%v", key, r.vars[key]))
	}
	return strings.Join(parts, " ")
}
