package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"taskpad/domain"
)

const (
	StoreAzure  = "azure"
	StoreMemory = "memory"

	SessionsMemory = "memory"
	SessionsRedis  = "redis"
)

// Config holds server settings.
type Config struct {
	Port  string
	Debug bool

	Store            string
	ConnectionString string
	TasksTable       string
	UsersTable       string

	SessionBackend string
	RedisConn      string
	SessionTTL     time.Duration
	// AppToken, when set, is pre-registered as a session for AppTokenUser.
	AppToken     string
	AppTokenUser string

	Ownership  domain.OwnershipPolicy
	BcryptCost int

	ActivityQueue   string
	ActivityWorkers int
	ActivityBuffer  int
	ActivityTimeout time.Duration

	CORSOrigins []string
}

// LoadDefaults returns the configuration used when no variable is set.
func LoadDefaults() *Config {
	return &Config{
		Port:            "3000",
		Store:           StoreAzure,
		TasksTable:      "tasks",
		UsersTable:      "users",
		SessionBackend:  SessionsMemory,
		SessionTTL:      24 * time.Hour,
		Ownership:       domain.OwnershipShared,
		BcryptCost:      10,
		ActivityWorkers: 4,
		ActivityBuffer:  256,
		ActivityTimeout: 10 * time.Second,
		CORSOrigins:     []string{"*"},
	}
}

// Load overlays environment variables read through getenv on the defaults
// and validates the result.
func Load(getenv func(string) string) (*Config, error) {
	c := LoadDefaults()
	var err error

	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		v := strings.TrimSpace(getenv(key))
		if v == "" || err != nil {
			return
		}
		n, perr := strconv.Atoi(v)
		if perr != nil || n < 0 {
			err = fmt.Errorf("invalid %s: %q", key, v)
			return
		}
		*dst = n
	}
	dur := func(key string, dst *time.Duration) {
		v := strings.TrimSpace(getenv(key))
		if v == "" || err != nil {
			return
		}
		d, perr := time.ParseDuration(v)
		if perr != nil || d < 0 {
			err = fmt.Errorf("invalid %s: %q", key, v)
			return
		}
		*dst = d
	}

	str("PORT", &c.Port)
	if v := getenv("DEBUG"); v != "" {
		if dbg, perr := strconv.ParseBool(v); perr == nil {
			c.Debug = dbg
		}
	}
	str("STORE", &c.Store)
	str("STORAGE_CONNECTION_STRING", &c.ConnectionString)
	str("TASKS_TABLE", &c.TasksTable)
	str("USERS_TABLE", &c.UsersTable)
	str("SESSION_BACKEND", &c.SessionBackend)
	str("REDIS_CONNECTION_STRING", &c.RedisConn)
	dur("SESSION_TTL", &c.SessionTTL)
	str("APP_TOKEN", &c.AppToken)
	str("APP_TOKEN_USER", &c.AppTokenUser)
	num("BCRYPT_COST", &c.BcryptCost)
	str("ACTIVITY_QUEUE", &c.ActivityQueue)
	num("ACTIVITY_WORKERS", &c.ActivityWorkers)
	num("ACTIVITY_BUFFER", &c.ActivityBuffer)
	dur("ACTIVITY_TIMEOUT", &c.ActivityTimeout)
	if err != nil {
		return nil, err
	}

	if v := getenv("OWNERSHIP_POLICY"); v != "" {
		p, perr := domain.ParseOwnershipPolicy(v)
		if perr != nil {
			return nil, perr
		}
		c.Ownership = p
	}
	if v := getenv("CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) > 0 {
			c.CORSOrigins = origins
		}
	}

	c.Store = strings.ToLower(c.Store)
	c.SessionBackend = strings.ToLower(c.SessionBackend)
	return c, c.Validate()
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	switch c.Store {
	case StoreAzure:
		if c.ConnectionString == "" {
			return fmt.Errorf("missing STORAGE_CONNECTION_STRING")
		}
		if c.TasksTable == "" || c.UsersTable == "" {
			return fmt.Errorf("missing table names")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE %q", c.Store)
	}
	switch c.SessionBackend {
	case SessionsRedis:
		if c.RedisConn == "" {
			return fmt.Errorf("missing REDIS_CONNECTION_STRING")
		}
	case SessionsMemory:
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.SessionBackend)
	}
	if (c.AppToken == "") != (c.AppTokenUser == "") {
		return fmt.Errorf("APP_TOKEN and APP_TOKEN_USER must be set together")
	}
	if c.ActivityQueue != "" && c.ConnectionString == "" {
		return fmt.Errorf("ACTIVITY_QUEUE requires STORAGE_CONNECTION_STRING")
	}
	if c.ActivityWorkers == 0 {
		return fmt.Errorf("invalid ACTIVITY_WORKERS: must be greater than zero")
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string { return ":" + c.Port }
