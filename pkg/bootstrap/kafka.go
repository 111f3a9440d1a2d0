package bootstrap

import (
	"github.com/IBM/sarama"

	"github.com/Goden-Gun/ota-server/pkg/config"
	"github.com/Goden-Gun/ota-server/pkg/filter"
	"github.com/Goden-Gun/ota-server/pkg/kafka"
	"github.com/Goden-Gun/ota-server/pkg/logger"
)

// InitKafka 初始化固件事件的 Kafka 生产者；未启用或未配置 broker 时返回 nil
func InitKafka(cfg config.KafkaConfig) (*kafka.Manager, error) {
	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		return nil, nil
	}
	sarama.Logger = logger.Named(filter.SourceSarama)

	m, err := kafka.NewManager(kafka.Config{
		Brokers:       cfg.Brokers,
		Topic:         cfg.Topic,
		ClientID:      cfg.ClientID,
		Username:      cfg.Username,
		Password:      cfg.Password,
		SASLMechanism: cfg.SASLMechanism,
		TLSEnabled:    cfg.TLSEnabled,
		RequiredAcks:  cfg.RequiredAcks,
		MaxAttempts:   cfg.MaxAttempts,
	})
	if err != nil {
		return nil, err
	}
	logger.Named(logger.SourceEvents).WithFields(logger.Fields{
		"brokers": cfg.Brokers,
		"topic":   cfg.Topic,
	}).Info("kafka producer initialized")
	return m, nil
}
