// internal/common/config/config.go
package config

import (
	"strings"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Zpro     ZproConfig     `mapstructure:"zpro"`
	Cabme    CabmeConfig    `mapstructure:"cabme"`
	Session  SessionConfig  `mapstructure:"session"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	AdminKey string `mapstructure:"admin_key"` // empty disables the /admin/smoke gate
}

// ZproConfig holds the chat/ticketing channel tenant credentials.
type ZproConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIID   string `mapstructure:"api_id"`
	Token   string `mapstructure:"token"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// GetTimeout returns the outbound call timeout as a duration.
func (z ZproConfig) GetTimeout() time.Duration {
	return time.Duration(z.Timeout) * time.Millisecond
}

// CabmeConfig holds the dispatch/booking API credentials plus the
// tenant-wide order defaults merged into every create-order payload.
type CabmeConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	APIKey          string        `mapstructure:"apikey"`
	AccessToken     string        `mapstructure:"accesstoken"`
	CreateOrderPath string        `mapstructure:"create_order_path"` // full URL override or path relative to base_url
	Timeout         int           `mapstructure:"timeout"`           // milliseconds
	Defaults        OrderDefaults `mapstructure:"defaults"`
}

// GetTimeout returns the outbound call timeout as a duration.
func (c CabmeConfig) GetTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Millisecond
}

// OrderDefaults are tenant-wide values the dispatch API requires even
// when the conversation does not collect them.
type OrderDefaults struct {
	RiderID        string  `mapstructure:"rider_id"`
	Latitude       float64 `mapstructure:"latitude"`
	Longitude      float64 `mapstructure:"longitude"`
	TotalPassenger int     `mapstructure:"total_passenger"`
	Fare           float64 `mapstructure:"fare"`
	Distance       float64 `mapstructure:"distance"`
	Duration       int     `mapstructure:"duration"` // minutes
	VehicleType    string  `mapstructure:"vehicle_type"`
}

// SessionConfig selects the conversation store backend and retention.
type SessionConfig struct {
	Backend       string `mapstructure:"backend"`        // "redis" or "memory"
	TTLHours      int    `mapstructure:"ttl_hours"`      // conversation retention
	DispatchHours int    `mapstructure:"dispatch_hours"` // dispatch-record retention
}

// IsRedis reports whether the durable keyed cache backend is selected.
func (s SessionConfig) IsRedis() bool {
	return strings.EqualFold(s.Backend, "redis")
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
