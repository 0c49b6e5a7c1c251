// Package inventory implements the in-memory fleet inventory model and the
// on-disk ansible inventory codecs.
//
// Owns:
//   - Record/Registry host model (hostname identity, groups, variables)
//   - Grouped-list (ini) and structured (yaml) parsers
//   - ini/yaml/json serializers and format dispatch
//   - Multi-source loading and first-wins merge semantics
//
// Does not own:
//   - HTTP routing or request handling (internal/server)
//   - Enrollment persistence (internal/server store)
//   - Logging setup or configuration
//
// Invariants:
//   - Hostnames are unique per Registry; the first definition of a hostname
//     wins and later ones are dropped whole, never merged field-by-field
//   - Every record belongs to the virtual group "all" without storing it
//   - "ungrouped" is evicted the moment a real group is added
//   - The registry is not safe for concurrent mutation; callers serialize
package inventory
