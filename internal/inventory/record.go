package inventory

// Reserved group names. GroupAll is virtual: every record is a member for
// query purposes but it is never written into a record's group set.
const (
	GroupAll       = "all"
	GroupUngrouped = "ungrouped"
)

// Record is a single managed host: its hostname (the identity key within a
// Registry), the remote user ansible should connect as, its group
// memberships, and its host variables.
//
// User stays empty unless set explicitly; only Registry.AddHost applies the
// "root" default, parsed records keep it blank.
type Record struct {
	Hostname string
	User     string

	groups   []string
	varOrder []string
	vars     map[string]any
}

// NewRecord returns a record tagged ungrouped with an empty variable bag.
func NewRecord(hostname string) *Record {
	return &Record{
		Hostname: hostname,
		groups:   []string{GroupUngrouped},
		vars:     map[string]any{},
	}
}

// HasGroup reports membership. Every record is a member of "all".
func (r *Record) HasGroup(name string) bool {
	if name == GroupAll {
		return true
	}
	return r.hasStoredGroup(name)
}

func (r *Record) hasStoredGroup(name string) bool {
	for _, g := range r.groups {
		if g == name {
			return true
		}
	}
	return false
}

// AddGroup tags the record with a group. Adding "all" is a no-op since
// membership there is implicit. The first real group evicts "ungrouped".
func (r *Record) AddGroup(name string) {
	if name == GroupAll || r.hasStoredGroup(name) {
		return
	}
	if name != GroupUngrouped && r.hasStoredGroup(GroupUngrouped) {
		r.RemoveGroup(GroupUngrouped)
	}
	r.groups = append(r.groups, name)
}

// RemoveGroup drops a group tag if present. Removing the last group leaves
// the record with no groups; "ungrouped" is not restored automatically.
func (r *Record) RemoveGroup(name string) {
	for i, g := range r.groups {
		if g == name {
			r.groups = append(r.groups[:i], r.groups[i+1:]...)
			return
		}
	}
}

// Groups returns a snapshot of the stored group tags in the order they were
// added. The virtual "all" group is never part of it.
func (r *Record) Groups() []string {
	out := make([]string, len(r.groups))
	copy(out, r.groups)
	return out
}

// SetVariable sets a host variable, keeping first-set ordering for
// serialization.
func (r *Record) SetVariable(key string, value any) {
	if _, ok := r.vars[key]; !ok {
		r.varOrder = append(r.varOrder, key)
	}
	r.vars[key] = value
}

// RemoveVariable drops a host variable; absent keys are a no-op.
func (r *Record) RemoveVariable(key string) {
	if _, ok := r.vars[key]; !ok {
		return
	}
	delete(r.vars, key)
	for i, k := range r.varOrder {
		if k == key {
			r.varOrder = append(r.varOrder[:i], r.varOrder[i+1:]...)
			break
		}
	}
}

// Variable returns one host variable.
func (r *Record) Variable(key string) (any, bool) {
	v, ok := r.vars[key]
	return v, ok
}

// Variables returns a copy of the variable bag.
func (r *Record) Variables() map[string]any {
	out := make(map[string]any, len(r.vars))
	for k, v := range r.vars {
		out[k] = v
	}
	return out
}

// variableKeys is the first-set order the serializers emit variables in.
func (r *Record) variableKeys() []string {
	return r.varOrder
}
