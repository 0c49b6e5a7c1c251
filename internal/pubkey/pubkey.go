// Package pubkey serves the SSH public keys handed out to enrolling
// machines, one per named environment (PROD, DEV, ...). Keys live at a
// configured location and reads are cached with a short TTL so the files can
// be rotated without restarting the server.
package pubkey

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
)

// AccessFile is the only implemented access method. A redis-backed store is
// a known follow-up; the method is validated up front so configs naming it
// fail loudly instead of at first read.
const AccessFile = "FILE"

const cacheTTL = 60 * time.Second

var (
	ErrInvalidAccessMethod = errors.New("invalid pubkey access method")
	ErrUnknownEnvironment  = errors.New("unknown pubkey environment")
	ErrMissingPubkey       = errors.New("pubkey does not exist")
	ErrNoPubkeys           = errors.New("no pubkeys were loaded")
)

type source struct {
	location string
	access   string
}

// Store holds the per-environment key sources and the read-through cache.
type Store struct {
	sources map[string]source
	cache   *gocache.Cache
}

func NewStore() *Store {
	return &Store{
		sources: map[string]source{},
		cache:   gocache.New(cacheTTL, 5*time.Minute),
	}
}

// Register adds an environment's key source. Environment names are
// case-insensitive and stored upper-cased.
func (s *Store) Register(env, location, access string) error {
	access = strings.ToUpper(access)
	if access != AccessFile {
		return fmt.Errorf("%q (valid: %s): %w", access, AccessFile, ErrInvalidAccessMethod)
	}
	s.sources[strings.ToUpper(env)] = source{location: location, access: access}
	return nil
}

// Environments lists the registered environment names, sorted.
func (s *Store) Environments() []string {
	out := make([]string, 0, len(s.sources))
	for env := range s.sources {
		out = append(out, env)
	}
	sort.Strings(out)
	return out
}

// Get returns the public key for env, reading the backing file at most once
// per TTL window.
func (s *Store) Get(env string) (string, error) {
	env = strings.ToUpper(env)
	src, ok := s.sources[env]
	if !ok {
		return "", fmt.Errorf("%q (valid: %s): %w", env, strings.Join(s.Environments(), ", "), ErrUnknownEnvironment)
	}

	if cached, ok := s.cache.Get(env); ok {
		return cached.(string), nil
	}

	raw, err := os.ReadFile(src.location)
	if err != nil {
		return "", fmt.Errorf("%q at %s: %w: %v", env, src.location, ErrMissingPubkey, err)
	}
	key := string(raw)
	s.cache.Set(env, key, gocache.DefaultExpiration)
	return key, nil
}

// All returns every environment's key. A single unreadable key fails the
// whole call; partial listings would hand enrollers a key for the wrong
// environment.
func (s *Store) All() (map[string]string, error) {
	out := make(map[string]string, len(s.sources))
	for _, env := range s.Environments() {
		key, err := s.Get(env)
		if err != nil {
			return nil, err
		}
		out[env] = key
	}
	return out, nil
}

// FromEnv builds a store from PUBKEY_ENVS (comma-separated environment
// names), PUBKEY_<NAME> (key location per environment), and PUBKEY_STORE
// (access method, defaulting to FILE). Zero loadable keys is fatal for the
// caller: a fleet enroller with nothing to hand out is misconfigured.
func FromEnv() (*Store, error) {
	names := os.Getenv("PUBKEY_ENVS")
	if strings.TrimSpace(names) == "" {
		return nil, fmt.Errorf("PUBKEY_ENVS is not set: %w", ErrNoPubkeys)
	}

	access := strings.TrimSpace(os.Getenv("PUBKEY_STORE"))
	if access == "" {
		log.Warn().Str("default", AccessFile).Msg("PUBKEY_STORE not set, defaulting to file access")
		access = AccessFile
	}

	store := NewStore()
	for _, name := range strings.Split(names, ",") {
		name = strings.ToUpper(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		location := os.Getenv("PUBKEY_" + name)
		if location == "" {
			continue
		}
		log.Debug().Str("environment", name).Msg("registering pubkey source")
		if err := store.Register(name, location, access); err != nil {
			return nil, err
		}
	}
	if len(store.sources) == 0 {
		return nil, ErrNoPubkeys
	}
	return store, nil
}
