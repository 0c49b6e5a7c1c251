package shared

// EnrollRequest is what a machine (or the enroll script on its behalf)
// submits to join the fleet inventory. OSType, Environment, and Applications
// all become inventory groups; Facts become host variables.
type EnrollRequest struct {
	EnrollToken  string         `json:"enroll_token"`
	Hostname     string         `json:"hostname"`
	User         string         `json:"user,omitempty"`
	OSType       string         `json:"os_type,omitempty"`
	Environment  string         `json:"environment,omitempty"`
	Applications []string       `json:"applications,omitempty"`
	PublicKey    string         `json:"public_key,omitempty"` // base64 ed25519
	Facts        map[string]any `json:"facts,omitempty"`
}

type EnrollResponse struct {
	Hostname        string   `json:"hostname"`
	AlreadyEnrolled bool     `json:"already_enrolled"`
	Groups          []string `json:"groups,omitempty"`
	NextMerge       string   `json:"next_merge"`
	Message         string   `json:"message"`
	ServerTime      int64    `json:"server_time"`
}

type HeartbeatRequest struct {
	Hostname string `json:"hostname"`
}

type HeartbeatResponse struct {
	Ok         bool  `json:"ok"`
	ServerTime int64 `json:"server_time"`
}

// HostView is the admin-facing projection of one enrollment record.
type HostView struct {
	Hostname    string   `json:"hostname"`
	User        string   `json:"user"`
	Environment string   `json:"environment"`
	Groups      []string `json:"groups"`
	Fingerprint string   `json:"fingerprint,omitempty"`
	EnrolledAt  int64    `json:"enrolled_at"`
	LastSeen    int64    `json:"last_seen"`
}
