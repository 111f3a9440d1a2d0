package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultEnvPrefix 环境变量前缀，如 OTA_TRACING_ENDPOINT
const DefaultEnvPrefix = "OTA"

// LoadOptions 加载配置选项
type LoadOptions struct {
	ConfigPath    string // 配置文件目录，默认 "./configs"
	EnvPrefix     string // 环境变量前缀，用于 viper.AutomaticEnv
	AllowNoConfig bool   // 允许没有配置文件，纯环境变量配置
}

// Load 加载服务配置：.env -> configs/config_{env}.yaml -> OTA_* 环境变量 -> 默认值 -> secrets
func Load(opts ...LoadOptions) (*Config, error) {
	opt := LoadOptions{ConfigPath: "./configs", EnvPrefix: DefaultEnvPrefix, AllowNoConfig: true}
	if len(opts) > 0 {
		opt = opts[0]
	}

	cfg := &Config{}
	if err := LoadConfig(cfg, opt); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()

	if opt.EnvPrefix != "" {
		cfg.Kafka.Password = GetSecretOrEnv(opt.EnvPrefix+"_KAFKA_PASSWORD", cfg.Kafka.Password)
	}
	return cfg, nil
}

// LoadConfig 通用配置加载函数
// cfg 必须是指向配置结构体的指针
func LoadConfig(cfg interface{}, opts ...LoadOptions) error {
	opt := LoadOptions{ConfigPath: "./configs"}
	if len(opts) > 0 {
		opt = opts[0]
	}

	// 加载 .env 文件
	envFile := os.Getenv("ENV_FILE")
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("load %s failed: %w", envFile, err)
			}
		}
	} else {
		if err := godotenv.Load(); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("load .env failed: %w", err)
			}
		}
	}

	v := viper.New()
	v.SetConfigName(fmt.Sprintf("config_%s", GetEnv()))
	v.SetConfigType("yaml")
	v.AddConfigPath(opt.ConfigPath)
	setDefaults(v)

	// 配置环境变量支持
	if opt.EnvPrefix != "" {
		v.SetEnvPrefix(opt.EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}

	// 尝试读取配置文件
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) && opt.AllowNoConfig {
			// 允许没有配置文件，使用纯环境变量
		} else {
			return fmt.Errorf("read config failed: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unmarshal config failed: %w", err)
	}

	return nil
}

// setDefaults 注册所有键，AutomaticEnv 只对已知键生效
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", DefaultServiceName)
	v.SetDefault("app.env", "")
	v.SetDefault("app.port", DefaultPort)
	v.SetDefault("app.shutdown_timeout", 10)

	v.SetDefault("log.format", "text")
	v.SetDefault("log.report_caller", false)
	v.SetDefault("log.filter", "")
	v.SetDefault("log.otel_filter", "")
	v.SetDefault("log.file.enabled", false)
	v.SetDefault("log.file.dir", "./logs")
	v.SetDefault("log.file.filename", "")
	v.SetDefault("log.file.max_age_days", 7)
	v.SetDefault("log.file.rotation_days", 1)

	v.SetDefault("logs.exporter", "stdout")
	v.SetDefault("logs.endpoint", "")
	v.SetDefault("logs.compression", "zstd")

	v.SetDefault("tracing.exporter", "otlp")
	v.SetDefault("tracing.endpoint", DefaultOTLPEndpoint)
	v.SetDefault("tracing.compression", "zstd")
	v.SetDefault("tracing.sample_ratio", 1.0)

	v.SetDefault("firmware.path", "")
	v.SetDefault("firmware.filename", "firmware.bin")

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "ota.firmware.events")
	v.SetDefault("kafka.client_id", DefaultServiceName)
	v.SetDefault("kafka.username", "")
	v.SetDefault("kafka.password", "")
	v.SetDefault("kafka.sasl_mechanism", "")
	v.SetDefault("kafka.tls_enabled", false)
	v.SetDefault("kafka.required_acks", "all")
	v.SetDefault("kafka.max_attempts", 3)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// GetEnv 获取当前环境，默认为 "dev"
func GetEnv() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		return "dev"
	}
	return env
}
