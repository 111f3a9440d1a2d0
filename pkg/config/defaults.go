package config

const (
	// DefaultPort is the listening port used when PORT is unset.
	DefaultPort = 3000
	// DefaultServiceName names the process in telemetry resources.
	DefaultServiceName = "ota-server"
	// DefaultOTLPEndpoint is the collector address for trace export.
	DefaultOTLPEndpoint = "http://localhost:4317"
)

// ApplyDefaults 应用全部默认值
func (c *Config) ApplyDefaults() {
	c.App.ApplyDefaults()
	c.Log.ApplyDefaults(c.App.Name)
	c.Logs.ApplyDefaults()
	c.Tracing.ApplyDefaults()
	c.Firmware.ApplyDefaults()
	c.Kafka.ApplyDefaults()
	c.Metrics.ApplyDefaults()
}

// ==================== AppConfig 默认值 ====================

// ApplyDefaults 应用 App 配置默认值
func (a *AppConfig) ApplyDefaults() {
	if a.Name == "" {
		a.Name = DefaultServiceName
	}
	if a.Env == "" {
		a.Env = GetEnv()
	}
	if a.Port <= 0 {
		a.Port = DefaultPort
	}
	if a.ShutdownTimeout <= 0 {
		a.ShutdownTimeout = 10
	}
}

// ==================== LogConfig 默认值 ====================

// ApplyDefaults 应用日志配置默认值
func (l *LogConfig) ApplyDefaults(serviceName string) {
	if l.Format == "" {
		l.Format = "text"
	}
	if l.File.Dir == "" {
		l.File.Dir = "./logs"
	}
	if l.File.Filename == "" {
		l.File.Filename = serviceName
	}
	if l.File.MaxAgeDays <= 0 {
		l.File.MaxAgeDays = 7
	}
	if l.File.RotationDays <= 0 {
		l.File.RotationDays = 1
	}
}

// ==================== LogExportConfig 默认值 ====================

// ApplyDefaults 应用日志导出配置默认值
func (l *LogExportConfig) ApplyDefaults() {
	if l.Exporter == "" {
		l.Exporter = "stdout"
	}
	if l.Exporter == "otlp" && l.Endpoint == "" {
		l.Endpoint = DefaultOTLPEndpoint
	}
	if l.Compression == "" {
		l.Compression = "zstd"
	}
}

// ==================== TracingConfig 默认值 ====================

// ApplyDefaults 应用 Tracing 配置默认值
func (t *TracingConfig) ApplyDefaults() {
	if t.Exporter == "" {
		t.Exporter = "otlp"
	}
	if t.Endpoint == "" {
		t.Endpoint = DefaultOTLPEndpoint
	}
	if t.Compression == "" {
		t.Compression = "zstd"
	}
	if t.SampleRatio <= 0 || t.SampleRatio > 1 {
		t.SampleRatio = 1.0
	}
}

// ==================== FirmwareConfig 默认值 ====================

// ApplyDefaults 应用固件配置默认值
func (f *FirmwareConfig) ApplyDefaults() {
	if f.Filename == "" {
		f.Filename = "firmware.bin"
	}
}

// ==================== KafkaConfig 默认值 ====================

// ApplyDefaults 应用 Kafka 配置默认值
func (k *KafkaConfig) ApplyDefaults() {
	if k.Topic == "" {
		k.Topic = "ota.firmware.events"
	}
	if k.ClientID == "" {
		k.ClientID = DefaultServiceName
	}
	if k.MaxAttempts <= 0 {
		k.MaxAttempts = 3
	}
}

// ==================== MetricsConfig 默认值 ====================

// ApplyDefaults 应用 Metrics 配置默认值
func (m *MetricsConfig) ApplyDefaults() {
	if m.Path == "" {
		m.Path = "/metrics"
	}
}
