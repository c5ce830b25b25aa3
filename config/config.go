package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Destination describes one publish target for generated renditions.
// CredentialsKey references an entry in the credentials store.
type Destination struct {
	Type           string `mapstructure:"type"`
	CredentialsKey string `mapstructure:"credentials_key"`
	Folder         string `mapstructure:"folder"`
}

var (
	v  = newViper()
	mu sync.RWMutex
)

// newViper builds the settings registry with defaults and RENDITION_* env binding.
// Env values are looked up on every Get, so changes take effect without a restart.
func newViper() *viper.Viper {
	cfg := viper.New()
	cfg.SetEnvPrefix("RENDITION")
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	cfg.SetDefault("data_dir", "./data")
	cfg.SetDefault("serve_dir", "./serve")
	cfg.SetDefault("listen_addr", ":8080")
	cfg.SetDefault("jwt.secret", "")
	cfg.SetDefault("jwt.issuer", "")
	cfg.SetDefault("log.level", "info")
	cfg.SetDefault("log.file", "")
	cfg.SetDefault("planner.concurrency", 1)
	cfg.SetDefault("planner.generation_timeout", "2m")
	cfg.SetDefault("redis.addr", "")
	cfg.SetDefault("redis.queue", "renditions:workitems")
	cfg.SetDefault("retention", "720h")
	return cfg
}

// Load reads an optional config file. An empty path falls back to
// RENDITION_CONFIG; when neither is set only defaults and env apply.
func Load(path string) error {
	if path == "" {
		path = os.Getenv("RENDITION_CONFIG")
	}
	if path == "" {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

// Set overrides a single setting at runtime.
func Set(key string, value any) {
	mu.Lock()
	defer mu.Unlock()
	v.Set(key, value)
}

func getString(key string) string {
	mu.RLock()
	defer mu.RUnlock()
	return v.GetString(key)
}

// GetDataDir returns the directory where databases, originals and renditions live.
func GetDataDir() string {
	return getString("data_dir")
}

// GetDirectServeBaseDir returns the base directory for the directServe destination.
// Configurable by server administrators only.
func GetDirectServeBaseDir() string {
	return getString("serve_dir")
}

func GetListenAddr() string {
	return getString("listen_addr")
}

// GetJWTSecret returns the HMAC secret for submission tokens. Empty disables auth.
func GetJWTSecret() string {
	return getString("jwt.secret")
}

func GetJWTIssuer() string {
	return getString("jwt.issuer")
}

func GetLogLevel() string {
	return getString("log.level")
}

func GetLogFile() string {
	return getString("log.file")
}

func GetRedisAddr() string {
	return getString("redis.addr")
}

func GetRedisQueue() string {
	return getString("redis.queue")
}

// GetPlannerConcurrency returns how many rendition pairs may run at once. Never below 1.
func GetPlannerConcurrency() int {
	mu.RLock()
	n := v.GetInt("planner.concurrency")
	mu.RUnlock()
	if n < 1 {
		return 1
	}
	return n
}

// GetGenerationTimeout bounds a single external rendition generation call.
func GetGenerationTimeout() time.Duration {
	return durationOr("planner.generation_timeout", 2*time.Minute)
}

// GetRetention is the age after which success and failure records are purged.
func GetRetention() time.Duration {
	return durationOr("retention", 30*24*time.Hour)
}

func durationOr(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getString(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// GetDestinations returns the configured publish destinations.
func GetDestinations() ([]Destination, error) {
	mu.RLock()
	defer mu.RUnlock()
	var ds []Destination
	if err := v.UnmarshalKey("publish.destinations", &ds); err != nil {
		return nil, fmt.Errorf("invalid publish.destinations: %w", err)
	}
	return ds, nil
}

// Path: {DATA_DIR}/assets.db
func GetAssetsDBPath() string {
	return filepath.Join(GetDataDir(), "assets.db")
}

// Path: {DATA_DIR}/credentials.db
func GetCredentialsDBPath() string {
	return filepath.Join(GetDataDir(), "credentials.db")
}

// Path: {DATA_DIR}/failures.db
func GetFailuresDBPath() string {
	return filepath.Join(GetDataDir(), "failures.db")
}

// Path: {DATA_DIR}/success.db
func GetSuccessDBPath() string {
	return filepath.Join(GetDataDir(), "success.db")
}

// Path: {DATA_DIR}/WorkQueue.db
func GetWorkQueueDBPath() string {
	return filepath.Join(GetDataDir(), "WorkQueue.db")
}

// GetOriginalsDir is where uploaded asset originals are stored.
func GetOriginalsDir() string {
	return filepath.Join(GetDataDir(), "originals")
}

// GetRenditionsDir is where generated renditions are written before publishing.
func GetRenditionsDir() string {
	return filepath.Join(GetDataDir(), "renditions")
}
