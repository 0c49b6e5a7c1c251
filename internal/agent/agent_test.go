package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"rollcall/internal/shared"
)

func writeAgentConfig(t *testing.T, cfg *shared.AgentConfig) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agent.json")
	require.NoError(t, shared.SaveAgentConfig(path, cfg))
	return path
}

func TestNew_GeneratesKeyOnFirstRun(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "agent.key")
	path := writeAgentConfig(t, &shared.AgentConfig{
		ServerURL:      "http://localhost:1",
		PrivateKeyPath: keyPath,
	})

	a, err := New(path)
	require.NoError(t, err)
	require.NotEmpty(t, a.pubB64)
	require.FileExists(t, keyPath)

	// Second construction reuses the same key.
	b, err := New(path)
	require.NoError(t, err)
	require.Equal(t, a.pubB64, b.pubB64)
}

func TestEnrollIfNeeded(t *testing.T) {
	var got shared.EnrollRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/enroll", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(shared.EnrollResponse{Hostname: got.Hostname, Groups: []string{"linux", "prod"}})
	}))
	defer srv.Close()

	cfgPath := writeAgentConfig(t, &shared.AgentConfig{
		ServerURL:      srv.URL,
		EnrollToken:    "test-token",
		Environment:    "prod",
		PrivateKeyPath: filepath.Join(t.TempDir(), "agent.key"),
	})

	a, err := New(cfgPath)
	require.NoError(t, err)
	require.NoError(t, a.EnrollIfNeeded(context.Background()))

	hostname, _ := os.Hostname()
	require.Equal(t, "test-token", got.EnrollToken)
	require.Equal(t, hostname, got.Hostname)
	require.Equal(t, "prod", got.Environment)
	require.Equal(t, a.pubB64, got.PublicKey)
	require.Contains(t, got.Facts, "os")

	// The token must not survive enrollment on disk.
	saved, err := shared.LoadAgentConfig(cfgPath)
	require.NoError(t, err)
	require.True(t, saved.Enrolled)
	require.Empty(t, saved.EnrollToken)

	// Already enrolled: no further requests.
	srv.Close()
	require.NoError(t, a.EnrollIfNeeded(context.Background()))
}

func TestEnrollIfNeeded_RejectedToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
		w.Write([]byte(`{"error":"invalid enroll token"}`))
	}))
	defer srv.Close()

	cfgPath := writeAgentConfig(t, &shared.AgentConfig{
		ServerURL:      srv.URL,
		EnrollToken:    "wrong",
		PrivateKeyPath: filepath.Join(t.TempDir(), "agent.key"),
	})

	a, err := New(cfgPath)
	require.NoError(t, err)
	require.Error(t, a.EnrollIfNeeded(context.Background()))

	saved, err := shared.LoadAgentConfig(cfgPath)
	require.NoError(t, err)
	require.False(t, saved.Enrolled)
}

func TestSendHeartbeat_SignsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/heartbeat", r.URL.Path)

		pub, err := shared.DecodePubKey(r.Header.Get("X-PubKey"))
		require.NoError(t, err)

		ts := r.Header.Get("X-Timestamp")
		sha := r.Header.Get("X-Body-Sha256")
		sig := r.Header.Get("X-Signature")
		require.True(t, shared.VerifyRequest(pub, sig, ts, r.Method, r.URL.Path, sha))

		json.NewEncoder(w).Encode(shared.HeartbeatResponse{Ok: true})
	}))
	defer srv.Close()

	cfgPath := writeAgentConfig(t, &shared.AgentConfig{
		ServerURL:      srv.URL,
		Enrolled:       true,
		PrivateKeyPath: filepath.Join(t.TempDir(), "agent.key"),
	})

	a, err := New(cfgPath)
	require.NoError(t, err)
	require.NoError(t, a.SendHeartbeat(context.Background()))
}
