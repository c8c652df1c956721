package configs

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// 交易所配置
	ExchangeConfig ExchangeConfig `json:"exchange_config" yaml:"exchange_config"`

	// TWAP 执行参数
	TwapConfig TwapConfig `json:"twap_config" yaml:"twap_config"`

	// 审计配置
	AuditConfig AuditConfig `json:"audit_config" yaml:"audit_config"`
}

type ExchangeConfig struct {
	BaseURL   string `json:"base_url" yaml:"base_url"`     // 交易所基础URL（默认测试网）
	APIKey    string `json:"api_key" yaml:"api_key"`       // 交易所API密钥
	SecretKey string `json:"secret_key" yaml:"secret_key"` // 交易所密钥
}

type TwapConfig struct {
	Slices   int     `json:"slices" yaml:"slices"`     // 默认切片数
	Interval float64 `json:"interval" yaml:"interval"` // 切片间隔（秒）
}

type AuditConfig struct {
	ConnStr string `json:"conn_str" yaml:"conn_str"` // 审计数据库连接字符串（可选）
}

// Load reads the YAML config file, then overrides credentials from the
// environment (a .env file is honored if present). Env always wins so secrets
// can stay out of config files.
func Load(path string) (*Config, error) {
	config := &Config{
		TwapConfig: TwapConfig{Slices: 5, Interval: 1.0},
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Missing .env is fine; exported variables still apply.
	_ = godotenv.Load()

	if v := os.Getenv("BINANCE_API_KEY"); v != "" {
		config.ExchangeConfig.APIKey = v
	}
	if v := os.Getenv("BINANCE_API_SECRET"); v != "" {
		config.ExchangeConfig.SecretKey = v
	}
	if v := os.Getenv("BINANCE_TESTNET_BASE"); v != "" {
		config.ExchangeConfig.BaseURL = v
	}

	return config, nil
}
