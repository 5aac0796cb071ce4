package ingest

import (
	"context"
	"fmt"
	"strings"

	"vitalwatch/internal/mqtt"

	"go.uber.org/zap"
)

// Subscriber MQTT 订阅接口（mqtt.Client 实现）
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topics ...string) error
}

// MQTTConsumer 订阅 vitals/+/frame，帧交给 Processor
type MQTTConsumer struct {
	client    Subscriber
	topic     string
	qos       byte
	processor *Processor
	logger    *zap.Logger
	ctx       context.Context
}

func NewMQTTConsumer(client Subscriber, topic string, qos byte, processor *Processor, logger *zap.Logger) *MQTTConsumer {
	return &MQTTConsumer{
		client:    client,
		topic:     topic,
		qos:       qos,
		processor: processor,
		logger:    logger,
		ctx:       context.Background(),
	}
}

// Start 订阅主题；ctx 用于后续帧处理
func (c *MQTTConsumer) Start(ctx context.Context) error {
	c.ctx = ctx
	if err := c.client.Subscribe(c.topic, c.qos, c.handleMessage); err != nil {
		return err
	}
	c.logger.Info("MQTT consumer subscribed", zap.String("topic", c.topic))
	return nil
}

func (c *MQTTConsumer) Stop() error {
	return c.client.Unsubscribe(c.topic)
}

// handleMessage 主题格式: vitals/{device_id}/frame
func (c *MQTTConsumer) handleMessage(topic string, payload []byte) error {
	key, err := c.processor.HandleRaw(c.ctx, payload)
	if err != nil {
		return fmt.Errorf("frame from %s: %w", topic, err)
	}
	c.logger.Debug("MQTT frame stored",
		zap.String("device", deviceFromTopic(topic)),
		zap.String("key", key),
	)
	return nil
}

func deviceFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) < 3 {
		return ""
	}
	return parts[1]
}
