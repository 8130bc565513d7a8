package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}
	return path
}

func TestLoad_DefaultsAndFile(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwt_secret: "test-secret-key-for-unit-testing"
feature:
  sweep_interval: 2h
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("期望默认端口 8080，实际=%d", cfg.Server.Port)
	}
	if cfg.Academy.Timezone != "America/Sao_Paulo" {
		t.Errorf("期望默认时区 America/Sao_Paulo，实际=%s", cfg.Academy.Timezone)
	}
	if cfg.Feature.SweepInterval != 2*time.Hour {
		t.Errorf("期望 sweep_interval=2h，实际=%v", cfg.Feature.SweepInterval)
	}
	if !cfg.Feature.SweepOnStartup {
		t.Error("期望默认启动时执行巡检")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwt_secret: "test-secret-key-for-unit-testing"
`)
	t.Setenv("ACADEMY_SERVER_PORT", "9191")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("期望环境变量覆盖端口为 9191，实际=%d", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Server:  ServerConfig{Port: 8080},
			Auth:    AuthConfig{JWTSecret: "0123456789abcdef"},
			Academy: AcademyConfig{Timezone: "America/Sao_Paulo"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"合法配置", func(c *Config) {}, false},
		{"密钥为空", func(c *Config) { c.Auth.JWTSecret = "" }, true},
		{"密钥过短", func(c *Config) { c.Auth.JWTSecret = "short" }, true},
		{"端口越界", func(c *Config) { c.Server.Port = 70000 }, true},
		{"时区无效", func(c *Config) { c.Academy.Timezone = "Mars/Olympus" }, true},
		{"巡检间隔为负", func(c *Config) { c.Feature.SweepInterval = -time.Minute }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
