package bootstrap

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	log "github.com/sirupsen/logrus"

	"github.com/Goden-Gun/ota-server/pkg/config"
)

// ConsoleSink 控制台日志输出，附带进程标识 (pid, host)
type ConsoleSink struct {
	mu        sync.Mutex
	out       io.Writer
	formatter log.Formatter
	identity  log.Fields
}

// NewConsoleSink 根据日志配置创建控制台输出，按需同时写入轮转文件
func NewConsoleSink(cfg config.LogConfig) (*ConsoleSink, error) {
	var out io.Writer = os.Stdout
	if cfg.File.Enabled {
		writer, err := newFileWriter(cfg.File)
		if err != nil {
			return nil, err
		}
		out = io.MultiWriter(os.Stdout, writer)
	}
	return NewConsoleSinkWriter(out, newFormatter(cfg.Format)), nil
}

// NewConsoleSinkWriter 使用指定 writer 和 formatter 创建控制台输出
func NewConsoleSinkWriter(out io.Writer, formatter log.Formatter) *ConsoleSink {
	return &ConsoleSink{
		out:       out,
		formatter: formatter,
		identity: log.Fields{
			"pid":  os.Getpid(),
			"host": detectContainerID(),
		},
	}
}

// Emit formats a copy of entry so other layers never see the identity fields.
func (s *ConsoleSink) Emit(entry *log.Entry) error {
	e := entry.WithFields(s.identity)
	e.Time = entry.Time
	e.Level = entry.Level
	e.Message = entry.Message
	e.Caller = entry.Caller

	b, err := s.formatter.Format(e)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.out.Write(b)
	return err
}

// newFormatter 设置日志格式
func newFormatter(format string) log.Formatter {
	switch format {
	case "json":
		return &log.JSONFormatter{}
	default:
		return &log.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339Nano}
	}
}

// detectContainerID 检测容器ID
func detectContainerID() string {
	if hostname, err := os.Hostname(); err == nil && hostname != "" {
		return hostname
	}

	if data, err := os.ReadFile("/etc/hostname"); err == nil {
		hostname := strings.TrimSpace(string(data))
		if hostname != "" {
			return hostname
		}
	}

	return "unknown"
}

// newFileWriter 设置日志文件输出
func newFileWriter(fileCfg config.LogFileConfig) (io.Writer, error) {
	logDir := fileCfg.Dir
	if logDir == "" {
		logDir = "./logs"
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, err
	}

	filename := fileCfg.Filename
	if filename == "" {
		filename = "app"
	}

	maxAge := fileCfg.MaxAgeDays
	if maxAge <= 0 {
		maxAge = 7
	}

	rotationDays := fileCfg.RotationDays
	if rotationDays <= 0 {
		rotationDays = 1
	}

	return rotatelogs.New(
		filepath.Join(logDir, filename+".%Y%m%d.log"),
		rotatelogs.WithLinkName(filepath.Join(logDir, filename+".log")),
		rotatelogs.WithMaxAge(time.Duration(maxAge)*24*time.Hour),
		rotatelogs.WithRotationTime(time.Duration(rotationDays)*24*time.Hour),
	)
}
