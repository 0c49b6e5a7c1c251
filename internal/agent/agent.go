// Package agent implements the machine-side client: one-time enrollment
// against the server, then a signed heartbeat loop.
package agent

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"rollcall/internal/shared"
)

const defaultKeyPath = "/etc/rollcall/agent.key"

type Agent struct {
	cfg        *shared.AgentConfig
	configPath string
	client     *http.Client
	priv       ed25519.PrivateKey
	pubB64     string
}

func New(configPath string) (*Agent, error) {
	cfg, err := shared.LoadAgentConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load agent config: %w", err)
	}
	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("agent config %s: server_url is required", configPath)
	}

	a := &Agent{
		cfg:        cfg,
		configPath: configPath,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
	if err := a.ensureKey(); err != nil {
		return nil, err
	}
	return a, nil
}

// ensureKey loads the machine's signing key, generating and persisting one
// on first run.
func (a *Agent) ensureKey() error {
	path := a.cfg.PrivateKeyPath
	if path == "" {
		path = defaultKeyPath
	}

	if b, err := os.ReadFile(path); err == nil {
		priv, err := shared.DecodePrivKey(strings.TrimSpace(string(b)))
		if err != nil {
			return fmt.Errorf("key file %s: %w", path, err)
		}
		a.priv = priv
	} else {
		pubB64, privB64, err := shared.NewEnrollmentKey()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(privB64+"\n"), 0600); err != nil {
			return fmt.Errorf("write key file %s: %w", path, err)
		}
		a.priv, _ = shared.DecodePrivKey(privB64)
		log.Info().Str("path", path).Str("fingerprint", shared.Fingerprint(pubB64)).Msg("generated machine key")
	}

	pub := a.priv.Public().(ed25519.PublicKey)
	a.pubB64 = base64.StdEncoding.EncodeToString(pub)
	return nil
}

func (a *Agent) url(path string) string {
	return strings.TrimSuffix(a.cfg.ServerURL, "/") + path
}

// EnrollIfNeeded enrolls the machine once. On success the enroll token is
// cleared from the config file so it never lingers on disk.
func (a *Agent) EnrollIfNeeded(ctx context.Context) error {
	if a.cfg.Enrolled {
		return nil
	}
	if a.cfg.EnrollToken == "" {
		return fmt.Errorf("agent is not enrolled and no enroll_token is configured")
	}

	hostname, err := os.Hostname()
	if err != nil {
		return err
	}

	req := shared.EnrollRequest{
		EnrollToken:  a.cfg.EnrollToken,
		Hostname:     hostname,
		User:         a.cfg.User,
		OSType:       osType(),
		Environment:  a.cfg.Environment,
		Applications: a.cfg.Applications,
		PublicKey:    a.pubB64,
		Facts:        CollectFacts(),
	}
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url("/v1/enroll"), bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := a.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("enroll request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
	if httpResp.StatusCode != http.StatusOK {
		return fmt.Errorf("enroll rejected: %s: %s", httpResp.Status, strings.TrimSpace(string(respBody)))
	}

	var resp shared.EnrollResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return fmt.Errorf("enroll response: %w", err)
	}

	a.cfg.Enrolled = true
	a.cfg.EnrollToken = ""
	if err := shared.SaveAgentConfig(a.configPath, a.cfg); err != nil {
		return fmt.Errorf("persist enrollment: %w", err)
	}

	log.Info().
		Str("hostname", resp.Hostname).
		Strs("groups", resp.Groups).
		Str("next_merge", resp.NextMerge).
		Bool("already_enrolled", resp.AlreadyEnrolled).
		Msg("enrolled")
	return nil
}

// signedRequest builds a request carrying the signature headers the server's
// auth middleware verifies.
func (a *Agent) signedRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, a.url(path), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	hostname, err := os.Hostname()
	if err != nil {
		return nil, err
	}

	ts := strconv.FormatInt(time.Now().Unix(), 10)
	sha := shared.BodySHA256(body)

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Hostname", hostname)
	req.Header.Set("X-PubKey", a.pubB64)
	req.Header.Set("X-Timestamp", ts)
	req.Header.Set("X-Body-Sha256", sha)
	req.Header.Set("X-Signature", shared.SignRequest(a.priv, ts, method, path, sha))
	return req, nil
}

func (a *Agent) SendHeartbeat(ctx context.Context) error {
	hostname, err := os.Hostname()
	if err != nil {
		return err
	}
	body, err := json.Marshal(shared.HeartbeatRequest{Hostname: hostname})
	if err != nil {
		return err
	}

	req, err := a.signedRequest(ctx, http.MethodPost, "/v1/heartbeat", body)
	if err != nil {
		return err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("heartbeat request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("heartbeat rejected: %s", resp.Status)
	}
	return nil
}

// Run enrolls if needed, then heartbeats until the context is cancelled.
func (a *Agent) Run(ctx context.Context) error {
	if err := a.EnrollIfNeeded(ctx); err != nil {
		return err
	}

	interval := time.Duration(a.cfg.HeartbeatSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Dur("interval", interval).Msg("heartbeat loop started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := a.SendHeartbeat(ctx); err != nil {
				log.Warn().Err(err).Msg("heartbeat failed")
			}
		}
	}
}
