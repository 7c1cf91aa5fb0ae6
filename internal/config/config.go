// Package config 提供配置管理
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/zhiban/zhiban/pkg/model"
)

// Config 应用配置
type Config struct {
	App     AppConfig     `yaml:"app"`
	Log     LogConfig     `yaml:"log"`
	Solver  SolverConfig  `yaml:"solver"`
	Roster  RosterConfig  `yaml:"roster"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name string `yaml:"name"`
	Env  string `yaml:"env"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json/console
	Output string `yaml:"output"` // stderr/stdout
}

// SolverConfig 求解器配置
type SolverConfig struct {
	Backend         string        `yaml:"backend"`
	TimeLimit       time.Duration `yaml:"time_limit"`
	AcceptIncumbent bool          `yaml:"accept_incumbent"` // 超时后是否接受可行解
	Verbose         bool          `yaml:"verbose"`
}

// RosterConfig 排班默认参数，问题实例里的显式设置优先
type RosterConfig struct {
	DefaultModel         string `yaml:"default_model"`
	MinShiftsPerStaff    int    `yaml:"min_shifts_per_staff"`
	MinStaffPerShift     int    `yaml:"min_staff_per_shift"`
	MaxShiftsExperienced int    `yaml:"max_shifts_experienced"`
	MaxShiftsNew         int    `yaml:"max_shifts_new"`
}

// ToParams 转换为问题级参数
func (c *RosterConfig) ToParams() model.Params {
	return model.Params{
		MinShiftsPerStaff:    c.MinShiftsPerStaff,
		MinStaffPerShift:     c.MinStaffPerShift,
		MaxShiftsExperienced: c.MaxShiftsExperienced,
		MaxShiftsNew:         c.MaxShiftsNew,
	}
}

// MetricsConfig 监控配置
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name: getEnv("APP_NAME", "zhiban"),
			Env:  getEnv("APP_ENV", "development"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
			Output: getEnv("LOG_OUTPUT", "stderr"),
		},
		Solver: SolverConfig{
			Backend:         getEnv("SOLVER_BACKEND", "glpk"),
			TimeLimit:       getEnvDuration("SOLVER_TIME_LIMIT", 30*time.Second),
			AcceptIncumbent: getEnvBool("SOLVER_ACCEPT_INCUMBENT", false),
			Verbose:         getEnvBool("SOLVER_VERBOSE", false),
		},
		Roster: RosterConfig{
			DefaultModel:         getEnv("ROSTER_DEFAULT_MODEL", "helpdesk"),
			MinShiftsPerStaff:    getEnvInt("ROSTER_MIN_SHIFTS_PER_STAFF", model.DefaultMinShiftsPerStaff),
			MinStaffPerShift:     getEnvInt("ROSTER_MIN_STAFF_PER_SHIFT", model.DefaultMinStaffPerShift),
			MaxShiftsExperienced: getEnvInt("ROSTER_MAX_SHIFTS_EXPERIENCED", model.DefaultMaxShiftsExperienced),
			MaxShiftsNew:         getEnvInt("ROSTER_MAX_SHIFTS_NEW", model.DefaultMaxShiftsNew),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
		},
	}

	return cfg, nil
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// IsTest 检查是否为测试环境
func (c *Config) IsTest() bool {
	return c.App.Env == "test"
}

// 辅助函数
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
