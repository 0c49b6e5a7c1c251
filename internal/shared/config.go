package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ServerConfig is the rc-server bootstrap, read from RC_* environment
// variables. InventoryDir is the only required setting: it is the directory
// the ansible inventory files live in and must be writable.
type ServerConfig struct {
	Addr         string
	DBPath       string
	InventoryDir string
	EnrollToken  string
	Domain       string
	RootPath     string
	LogLevel     string
}

// LoadServerConfig reads the environment via viper (prefix RC_).
func LoadServerConfig() (*ServerConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("RC")
	v.AutomaticEnv()
	v.SetDefault("addr", ":8085")
	v.SetDefault("db_path", "./data/rollcall.db")
	v.SetDefault("enroll_token", "ENROLL-DEV-CHANGE-ME")
	v.SetDefault("log_level", "warn")

	cfg := &ServerConfig{
		Addr:         v.GetString("addr"),
		DBPath:       v.GetString("db_path"),
		InventoryDir: v.GetString("inventory_dir"),
		EnrollToken:  v.GetString("enroll_token"),
		Domain:       v.GetString("domain"),
		RootPath:     strings.TrimSuffix(v.GetString("root_path"), "/"),
		LogLevel:     v.GetString("log_level"),
	}
	if cfg.InventoryDir == "" {
		return nil, errors.New("RC_INVENTORY_DIR is not set: the ansible inventory directory is required")
	}
	return cfg, nil
}

// ValidateInventoryDir checks the configured location is a directory we can
// write the hosts file into, by touching it the way the save path will.
func (c *ServerConfig) ValidateInventoryDir() error {
	info, err := os.Stat(c.InventoryDir)
	if err != nil {
		return fmt.Errorf("inventory location %s: %w", c.InventoryDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("inventory location %s is not a directory", c.InventoryDir)
	}
	probe := filepath.Join(c.InventoryDir, "hosts.yaml")
	f, err := os.OpenFile(probe, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("inventory location %s is not writable: %w", c.InventoryDir, err)
	}
	return f.Close()
}

// AgentConfig is the rc-agent's JSON config file. Enrolled flips once the
// machine has been accepted; the enroll token is cleared at the same time.
type AgentConfig struct {
	ServerURL        string   `json:"server_url"`
	EnrollToken      string   `json:"enroll_token"`
	Enrolled         bool     `json:"enrolled"`
	User             string   `json:"user"`
	Environment      string   `json:"environment"`
	Applications     []string `json:"applications"`
	PrivateKeyPath   string   `json:"private_key_path"`
	HeartbeatSeconds int      `json:"heartbeat_seconds"`
}

func LoadAgentConfig(path string) (*AgentConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c AgentConfig
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	if c.HeartbeatSeconds <= 0 {
		c.HeartbeatSeconds = 30
	}
	return &c, nil
}

func SaveAgentConfig(path string, c *AgentConfig) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0600)
}
