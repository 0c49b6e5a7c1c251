package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"rollcall/internal/pubkey"
	"rollcall/internal/shared"
)

type API struct {
	Store       Store
	Inventory   *InventoryService
	Pubkeys     *pubkey.Store
	EnrollToken string
	Domain      string
	RootPath    string
}

// Routes wires the full API surface onto a fresh mux.
func (a *API) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", a.Ping)
	mux.HandleFunc("/enroll", a.EnrollScript)
	mux.HandleFunc("/v1/enroll", a.Enroll)
	mux.HandleFunc("/v1/inventory", a.RenderInventory)
	mux.HandleFunc("/v1/hosts", a.ListHosts)
	mux.HandleFunc("/v1/pubkeys", a.AllPubkeys)
	mux.HandleFunc("/v1/pubkeys/", a.PubkeyByEnvironment) // prefix last
	mux.HandleFunc("/v1/heartbeat", a.RequireAgentAuth(a.Heartbeat))
	return mux
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(body))
}

func readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(io.LimitReader(r.Body, 2<<20))
}

func (a *API) Ping(w http.ResponseWriter, r *http.Request) {
	writeText(w, 200, "pong")
}

// Enroll adds a machine to the fleet: token check, inventory update, and an
// enrollment row for the ledger.
func (a *API) Enroll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, 405, map[string]any{"error": "method not allowed"})
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeJSON(w, 400, map[string]any{"error": "bad body"})
		return
	}

	var req shared.EnrollRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, 400, map[string]any{"error": "bad json"})
		return
	}
	if req.EnrollToken == "" || req.EnrollToken != a.EnrollToken {
		writeJSON(w, 401, map[string]any{"error": "invalid enroll token"})
		return
	}
	if strings.TrimSpace(req.Hostname) == "" {
		writeJSON(w, 400, map[string]any{"error": "missing hostname"})
		return
	}

	resp, err := a.Inventory.Enroll(&req)
	if err != nil {
		log.Error().Err(err).Str("hostname", req.Hostname).Msg("enroll failed")
		writeJSON(w, 500, map[string]any{"error": "inventory error"})
		return
	}

	if !resp.AlreadyEnrolled {
		if _, err := a.Store.CreateEnrollment(&EnrollmentRecord{
			Hostname:    req.Hostname,
			User:        orDefault(req.User, "root"),
			Environment: req.Environment,
			Groups:      resp.Groups,
			PublicKey:   req.PublicKey,
		}); err != nil {
			log.Error().Err(err).Str("hostname", req.Hostname).Msg("enrollment ledger write failed")
			writeJSON(w, 500, map[string]any{"error": "db error"})
			return
		}
		log.Info().Str("hostname", req.Hostname).Strs("groups", resp.Groups).Msg("host enrolled")
	}

	resp.ServerTime = time.Now().Unix()
	writeJSON(w, 200, resp)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// RenderInventory serves the inventory in any of the engine's formats.
func (a *API) RenderInventory(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	out, err := a.Inventory.Render(format)
	if err != nil {
		if IsBadRequest(err) {
			writeJSON(w, 400, map[string]any{"error": err.Error()})
			return
		}
		log.Error().Err(err).Msg("inventory render failed")
		writeJSON(w, 500, map[string]any{"error": "inventory error"})
		return
	}

	if strings.EqualFold(format, "json") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(200)
		_, _ = w.Write([]byte(out))
		return
	}
	writeText(w, 200, out)
}

func (a *API) ListHosts(w http.ResponseWriter, r *http.Request) {
	recs, err := a.Store.List()
	if err != nil {
		writeJSON(w, 500, map[string]any{"error": "db error"})
		return
	}
	views := make([]shared.HostView, 0, len(recs))
	for _, rec := range recs {
		view := shared.HostView{
			Hostname:    rec.Hostname,
			User:        rec.User,
			Environment: rec.Environment,
			Groups:      rec.Groups,
			EnrolledAt:  rec.EnrolledAt,
			LastSeen:    rec.LastSeen,
		}
		if rec.PublicKey != "" {
			view.Fingerprint = shared.Fingerprint(rec.PublicKey)
		}
		views = append(views, view)
	}
	writeJSON(w, 200, views)
}

func (a *API) AllPubkeys(w http.ResponseWriter, r *http.Request) {
	keys, err := a.Pubkeys.All()
	if err != nil {
		log.Error().Err(err).Msg("pubkey read failed")
		writeJSON(w, 500, map[string]any{"error": "pubkey error"})
		return
	}
	writeJSON(w, 200, keys)
}

func (a *API) PubkeyByEnvironment(w http.ResponseWriter, r *http.Request) {
	env := strings.TrimPrefix(r.URL.Path, "/v1/pubkeys/")
	key, err := a.Pubkeys.Get(env)
	if err != nil {
		if errors.Is(err, pubkey.ErrUnknownEnvironment) {
			writeJSON(w, 400, map[string]any{"error": err.Error()})
			return
		}
		log.Error().Err(err).Str("environment", env).Msg("pubkey read failed")
		writeJSON(w, 500, map[string]any{"error": "pubkey error"})
		return
	}
	writeText(w, 200, key)
}

// RequireAgentAuth verifies a signed agent request: timestamp inside a 10
// minute window, body matching its declared digest, and an ed25519 signature
// from a key the store knows. The body is restored for the wrapped handler.
func (a *API) RequireAgentAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hostname := r.Header.Get("X-Hostname")
		pubKeyB64 := r.Header.Get("X-PubKey")
		ts := r.Header.Get("X-Timestamp")
		sig := r.Header.Get("X-Signature")
		bodySha := r.Header.Get("X-Body-Sha256")

		if ts == "" || sig == "" || bodySha == "" {
			writeJSON(w, 401, map[string]any{"error": "missing auth headers"})
			return
		}

		tInt, err := strconv.ParseInt(ts, 10, 64)
		now := time.Now().Unix()
		if err != nil || tInt < now-600 || tInt > now+600 {
			writeJSON(w, 401, map[string]any{"error": "timestamp outside window"})
			return
		}

		body, err := readBody(r)
		if err != nil || shared.BodySHA256(body) != bodySha {
			writeJSON(w, 401, map[string]any{"error": "body digest mismatch"})
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		var rec *EnrollmentRecord
		if hostname != "" {
			if rec, err = a.Store.GetByHostname(hostname); err != nil {
				writeJSON(w, 500, map[string]any{"error": "db error"})
				return
			}
		}
		if rec == nil && pubKeyB64 != "" {
			if rec, err = a.Store.GetByPubKey(pubKeyB64); err != nil {
				writeJSON(w, 500, map[string]any{"error": "db error"})
				return
			}
			if rec != nil {
				// Tell the handler which hostname this key belongs to.
				r.Header.Set("X-Canonical-Hostname", rec.Hostname)
			}
		}
		if rec == nil || rec.PublicKey == "" {
			writeJSON(w, 401, map[string]any{"error": "unknown agent"})
			return
		}

		pub, err := shared.DecodePubKey(rec.PublicKey)
		if err != nil {
			writeJSON(w, 500, map[string]any{"error": "server key decode failed"})
			return
		}
		if !shared.VerifyRequest(pub, sig, ts, r.Method, r.URL.Path, bodySha) {
			writeJSON(w, 401, map[string]any{"error": "bad signature"})
			return
		}

		next(w, r)
	}
}

func (a *API) Heartbeat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, 405, map[string]any{"error": "method not allowed"})
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeJSON(w, 400, map[string]any{"error": "bad body"})
		return
	}

	var hb shared.HeartbeatRequest
	if err := json.Unmarshal(body, &hb); err != nil {
		writeJSON(w, 400, map[string]any{"error": "bad json"})
		return
	}
	if canon := r.Header.Get("X-Canonical-Hostname"); canon != "" {
		hb.Hostname = canon
	}

	if err := a.Store.TouchLastSeen(hb.Hostname, time.Now().Unix()); err != nil {
		writeJSON(w, 500, map[string]any{"error": "db error"})
		return
	}
	writeJSON(w, 200, shared.HeartbeatResponse{Ok: true, ServerTime: time.Now().Unix()})
}
