package config

import (
	"testing"
	"time"

	"github.com/zhiban/zhiban/pkg/model"
)

func TestLoad_Defaults(t *testing.T) {
	// 清空相关环境变量，空值视同未设置
	for _, key := range []string{
		"APP_NAME", "APP_ENV", "LOG_LEVEL", "LOG_FORMAT", "LOG_OUTPUT",
		"SOLVER_BACKEND", "SOLVER_TIME_LIMIT", "SOLVER_ACCEPT_INCUMBENT",
		"SOLVER_VERBOSE", "ROSTER_DEFAULT_MODEL", "ROSTER_MIN_SHIFTS_PER_STAFF",
		"ROSTER_MIN_STAFF_PER_SHIFT", "ROSTER_MAX_SHIFTS_EXPERIENCED",
		"ROSTER_MAX_SHIFTS_NEW", "METRICS_ENABLED",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.App.Name != "zhiban" {
		t.Errorf("App.Name = %v, expected zhiban", cfg.App.Name)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "console" || cfg.Log.Output != "stderr" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Solver.Backend != "glpk" {
		t.Errorf("Solver.Backend = %v, expected glpk", cfg.Solver.Backend)
	}
	if cfg.Solver.TimeLimit != 30*time.Second {
		t.Errorf("Solver.TimeLimit = %v, expected 30s", cfg.Solver.TimeLimit)
	}
	if cfg.Solver.AcceptIncumbent {
		t.Error("AcceptIncumbent 默认应关闭")
	}
	if cfg.Roster.DefaultModel != "helpdesk" {
		t.Errorf("Roster.DefaultModel = %v, expected helpdesk", cfg.Roster.DefaultModel)
	}
	if cfg.Roster.MinShiftsPerStaff != model.DefaultMinShiftsPerStaff {
		t.Errorf("MinShiftsPerStaff = %d", cfg.Roster.MinShiftsPerStaff)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics 默认应开启")
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SOLVER_TIME_LIMIT", "90s")
	t.Setenv("SOLVER_ACCEPT_INCUMBENT", "true")
	t.Setenv("ROSTER_DEFAULT_MODEL", "lab")
	t.Setenv("ROSTER_MIN_STAFF_PER_SHIFT", "3")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !cfg.IsProduction() {
		t.Error("APP_ENV=production 时 IsProduction() 应为 true")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %v, expected debug", cfg.Log.Level)
	}
	if cfg.Solver.TimeLimit != 90*time.Second {
		t.Errorf("Solver.TimeLimit = %v, expected 90s", cfg.Solver.TimeLimit)
	}
	if !cfg.Solver.AcceptIncumbent {
		t.Error("AcceptIncumbent 应开启")
	}
	if cfg.Roster.DefaultModel != "lab" {
		t.Errorf("Roster.DefaultModel = %v, expected lab", cfg.Roster.DefaultModel)
	}
	if cfg.Roster.MinStaffPerShift != 3 {
		t.Errorf("MinStaffPerShift = %d, expected 3", cfg.Roster.MinStaffPerShift)
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics 应关闭")
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SOLVER_TIME_LIMIT", "很快")
	t.Setenv("ROSTER_MIN_SHIFTS_PER_STAFF", "abc")
	t.Setenv("METRICS_ENABLED", "也许")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// 解析失败时回退到默认值而不是报错
	if cfg.Solver.TimeLimit != 30*time.Second {
		t.Errorf("Solver.TimeLimit = %v, expected 30s", cfg.Solver.TimeLimit)
	}
	if cfg.Roster.MinShiftsPerStaff != model.DefaultMinShiftsPerStaff {
		t.Errorf("MinShiftsPerStaff = %d", cfg.Roster.MinShiftsPerStaff)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics 应保持默认开启")
	}
}

func TestRosterConfig_ToParams(t *testing.T) {
	rc := RosterConfig{
		MinShiftsPerStaff:    2,
		MinStaffPerShift:     1,
		MaxShiftsExperienced: 4,
		MaxShiftsNew:         2,
	}

	params := rc.ToParams()
	want := model.Params{
		MinShiftsPerStaff:    2,
		MinStaffPerShift:     1,
		MaxShiftsExperienced: 4,
		MaxShiftsNew:         2,
	}
	if params != want {
		t.Errorf("ToParams() = %+v, expected %+v", params, want)
	}
}

func TestConfig_EnvChecks(t *testing.T) {
	tests := []struct {
		name string
		env  string
		dev  bool
		prod bool
		test bool
	}{
		{name: "开发环境", env: "development", dev: true},
		{name: "生产环境", env: "production", prod: true},
		{name: "测试环境", env: "test", test: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{App: AppConfig{Env: tt.env}}
			if cfg.IsDevelopment() != tt.dev || cfg.IsProduction() != tt.prod || cfg.IsTest() != tt.test {
				t.Errorf("环境判断不正确: %s", tt.env)
			}
		})
	}
}
