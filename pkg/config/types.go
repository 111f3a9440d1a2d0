package config

// Config 服务完整配置
type Config struct {
	App      AppConfig       `yaml:"app" mapstructure:"app"`
	Log      LogConfig       `yaml:"log" mapstructure:"log"`
	Logs     LogExportConfig `yaml:"logs" mapstructure:"logs"`
	Tracing  TracingConfig   `yaml:"tracing" mapstructure:"tracing"`
	Firmware FirmwareConfig  `yaml:"firmware" mapstructure:"firmware"`
	Kafka    KafkaConfig     `yaml:"kafka" mapstructure:"kafka"`
	Metrics  MetricsConfig   `yaml:"metrics" mapstructure:"metrics"`
}

// ==================== 基础配置 ====================

// AppConfig 应用基础配置
type AppConfig struct {
	Name            string   `yaml:"name" mapstructure:"name"`
	Env             string   `yaml:"env" mapstructure:"env"`
	Port            int      `yaml:"port" mapstructure:"port"` // PORT 环境变量未设置时使用
	ShutdownTimeout Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// LogConfig 控制台日志配置
type LogConfig struct {
	Format       string        `yaml:"format" mapstructure:"format"`
	ReportCaller bool          `yaml:"report_caller" mapstructure:"report_caller"`
	Filter       string        `yaml:"filter" mapstructure:"filter"`           // 控制台过滤指令，如 "info,net/http=off"
	OTelFilter   string        `yaml:"otel_filter" mapstructure:"otel_filter"` // OTel 日志桥过滤指令
	File         LogFileConfig `yaml:"file" mapstructure:"file"`
}

// LogFileConfig 日志文件配置
type LogFileConfig struct {
	Enabled      bool   `yaml:"enabled" mapstructure:"enabled"`
	Dir          string `yaml:"dir" mapstructure:"dir"`
	Filename     string `yaml:"filename" mapstructure:"filename"`
	MaxAgeDays   int    `yaml:"max_age_days" mapstructure:"max_age_days"`
	RotationDays int    `yaml:"rotation_days" mapstructure:"rotation_days"`
}

// ==================== 可观测性配置 ====================

// LogExportConfig OTel 日志导出配置
type LogExportConfig struct {
	Exporter    string            `yaml:"exporter" mapstructure:"exporter"` // stdout | otlp
	Endpoint    string            `yaml:"endpoint" mapstructure:"endpoint"`
	Compression string            `yaml:"compression" mapstructure:"compression"`
	Headers     map[string]string `yaml:"headers" mapstructure:"headers"`
}

// TracingConfig 分布式追踪配置
type TracingConfig struct {
	Exporter     string            `yaml:"exporter" mapstructure:"exporter"` // otlp | stdout | disabled
	Endpoint     string            `yaml:"endpoint" mapstructure:"endpoint"`
	Compression  string            `yaml:"compression" mapstructure:"compression"` // zstd | gzip | none
	Headers      map[string]string `yaml:"headers" mapstructure:"headers"`
	SampleRatio  float64           `yaml:"sample_ratio" mapstructure:"sample_ratio"`
	ResourceTags map[string]string `yaml:"resource_tags" mapstructure:"resource_tags"`
}

// MetricsConfig 指标暴露配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// ==================== 业务配置 ====================

// FirmwareConfig 固件下发配置
type FirmwareConfig struct {
	Path     string `yaml:"path" mapstructure:"path"` // 为空时返回内置占位固件
	Filename string `yaml:"filename" mapstructure:"filename"`
}

// KafkaConfig Kafka 事件配置
type KafkaConfig struct {
	Enabled       bool     `yaml:"enabled" mapstructure:"enabled"`
	Brokers       []string `yaml:"brokers" mapstructure:"brokers"`
	Topic         string   `yaml:"topic" mapstructure:"topic"`
	ClientID      string   `yaml:"client_id" mapstructure:"client_id"`
	Username      string   `yaml:"username" mapstructure:"username"`
	Password      string   `yaml:"password" mapstructure:"password"`
	SASLMechanism string   `yaml:"sasl_mechanism" mapstructure:"sasl_mechanism"`
	TLSEnabled    bool     `yaml:"tls_enabled" mapstructure:"tls_enabled"`
	RequiredAcks  string   `yaml:"required_acks" mapstructure:"required_acks"`
	MaxAttempts   int      `yaml:"max_attempts" mapstructure:"max_attempts"`
}
