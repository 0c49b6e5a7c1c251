package server

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"rollcall/internal/inventory"
	"rollcall/internal/shared"
)

// InventoryService is the one gateway between the HTTP layer and the
// inventory directory. The engine itself is synchronous and unlocked, so the
// service serializes every load/save cycle behind a mutex.
type InventoryService struct {
	mu  sync.Mutex
	dir string
}

func NewInventoryService(dir string) *InventoryService {
	return &InventoryService{dir: dir}
}

// Render loads the inventory directory and serializes it in the requested
// format.
func (s *InventoryService) Render(format string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, err := inventory.Load(s.dir)
	if err != nil {
		return "", err
	}
	return reg.Serialize(format)
}

// Enroll adds a host to the inventory and persists hosts.yaml. A hostname
// that is already present is left untouched and reported as such.
func (s *InventoryService) Enroll(req *shared.EnrollRequest) (*shared.EnrollResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, err := inventory.Load(s.dir)
	if err != nil {
		return nil, err
	}

	resp := &shared.EnrollResponse{Hostname: req.Hostname, NextMerge: s.nextMerge()}
	if reg.HasHost(req.Hostname) {
		resp.AlreadyEnrolled = true
		resp.Message = req.Hostname + " is already enrolled"
		return resp, nil
	}

	var groups []string
	for _, group := range append([]string{req.OSType, req.Environment}, req.Applications...) {
		if strings.TrimSpace(group) != "" {
			groups = append(groups, group)
		}
	}

	rec := reg.AddHost(req.Hostname, groups, req.User)
	for key, value := range req.Facts {
		rec.SetVariable(key, value)
	}
	if err := reg.SaveToDisk(filepath.Join(s.dir, "hosts.yaml")); err != nil {
		return nil, err
	}

	resp.Groups = rec.Groups()
	resp.Message = "successfully added " + req.Hostname + " to the ansible inventory"
	return resp, nil
}

// nextMerge reports when the out-of-band inventory merge job runs next, read
// from the .nextupdate marker that job maintains.
func (s *InventoryService) nextMerge() string {
	b, err := os.ReadFile(filepath.Join(s.dir, ".nextupdate"))
	if err != nil {
		return "Unknown"
	}
	return strings.TrimSpace(string(b))
}

// IsBadRequest reports whether an inventory error is the caller's fault
// (unsupported format) rather than a server-side failure.
func IsBadRequest(err error) bool {
	return errors.Is(err, inventory.ErrUnsupportedFormat)
}
