// Package server implements the rollcall HTTP API surface: the collaborator
// layer that sits in front of the inventory engine.
//
// Owns:
//   - HTTP routing, handlers, and request/response contracts
//   - Enroll-token gating and agent signature verification (RequireAgentAuth)
//   - Serialized access to the inventory directory (InventoryService mutex)
//   - Enrollment persistence (Store implementations)
//
// Does not own:
//   - Inventory model and codec semantics (internal/inventory)
//   - Public key sourcing and caching (internal/pubkey)
//
// Invariants:
//   - JSON responses go through writeJSON
//   - Mutating agent endpoints require signed requests
//   - All inventory reads/writes go through the InventoryService so
//     concurrent requests never race on the hosts files
package server
