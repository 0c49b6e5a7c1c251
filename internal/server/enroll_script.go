package server

import (
	_ "embed"
	"net/http"
	"strings"
)

//go:embed resources/enroll.sh
var enrollScript string

// EnrollScript serves the self-enrollment shell script with the server's
// own links substituted in, so `curl .../enroll | bash` works from any
// machine that can reach us.
func (a *API) EnrollScript(w http.ResponseWriter, r *http.Request) {
	script := enrollScript
	script = strings.Replace(script, "ENROLL_LINK=", "ENROLL_LINK="+a.link(r, "v1/enroll"), 1)
	script = strings.Replace(script, "SSH_PUBKEY_LINK=", "SSH_PUBKEY_LINK="+a.link(r, "v1/pubkeys"), 1)

	envs := make([]string, 0)
	for _, env := range a.Pubkeys.Environments() {
		envs = append(envs, `"`+env+`"`)
	}
	script = strings.Replace(script, "ENVIRONMENTS=", "ENVIRONMENTS=("+strings.Join(envs, " ")+")", 1)

	writeText(w, 200, script)
}

// link builds an absolute URL for path, preferring the configured domain
// over whatever Host header the request arrived with.
func (a *API) link(r *http.Request, path string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	host := a.Domain
	if host == "" {
		host = r.Host
	}
	return scheme + "://" + host + a.RootPath + "/" + path
}
