package config

import "time"

// Duration 配置中的秒数，如 shutdown_timeout: 10
type Duration int64

// Duration 返回 time.Duration 值
func (d Duration) Duration() time.Duration {
	return time.Duration(d) * time.Second
}
