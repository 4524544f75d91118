package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultBaseURL 默认 API 地址
const DefaultBaseURL = "http://localhost:8000"

// ClientConfig 客户端配置（YAML 文件）
type ClientConfig struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`

	path string
}

// DefaultClientConfigPath 返回 ~/.frame.yaml
func DefaultClientConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".frame.yaml"
	}
	return filepath.Join(home, ".frame.yaml")
}

// LoadClient 读取客户端配置，文件不存在时使用默认值
func LoadClient(path string) (*ClientConfig, error) {
	if path == "" {
		path = DefaultClientConfigPath()
	}
	cfg := &ClientConfig{path: path}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read client config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse client config: %w", err)
		}
	}

	if v := os.Getenv("FRAME_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return cfg, nil
}

// Path 配置文件路径
func (c *ClientConfig) Path() string {
	return c.path
}

// Save 写回配置文件（保存登录令牌）
func (c *ClientConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode client config: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return fmt.Errorf("write client config: %w", err)
	}
	return nil
}

// SetToken 保存访问令牌
func (c *ClientConfig) SetToken(token string) error {
	c.Token = token
	return c.Save()
}

// Clear 清除登录状态
func (c *ClientConfig) Clear() error {
	c.Token = ""
	return c.Save()
}
