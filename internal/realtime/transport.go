package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Transport доставляет событие комнате или всем сессиям
type Transport interface {
	Emit(ctx context.Context, room, event string, payload any) error
}

// LocalTransport отдает кадры напрямую хабу этого процесса
type LocalTransport struct {
	hub *Hub
}

func NewLocalTransport(hub *Hub) *LocalTransport {
	return &LocalTransport{hub: hub}
}

func (t *LocalTransport) Emit(_ context.Context, room, event string, payload any) error {
	frame, err := EncodeFrame(event, payload)
	if err != nil {
		return err
	}
	t.hub.Deliver(room, frame)
	return nil
}

// envelope - формат сообщения в канале Redis между экземплярами
type envelope struct {
	Room  string          `json:"room"`
	Frame json.RawMessage `json:"frame"`
}

// RedisBridge публикует кадры в канал Redis; каждый экземпляр, включая
// отправителя, получает их через Run и раздает своему хабу
type RedisBridge struct {
	redisClient *redis.Client
	channel     string
	hub         *Hub
	logger      *logrus.Logger
}

func NewRedisBridge(client *redis.Client, channel string, hub *Hub, logger *logrus.Logger) *RedisBridge {
	return &RedisBridge{
		redisClient: client,
		channel:     channel,
		hub:         hub,
		logger:      logger,
	}
}

func (b *RedisBridge) Emit(ctx context.Context, room, event string, payload any) error {
	frame, err := EncodeFrame(event, payload)
	if err != nil {
		return err
	}
	msg, err := json.Marshal(envelope{Room: room, Frame: frame})
	if err != nil {
		return fmt.Errorf("failed to marshal realtime envelope: %w", err)
	}
	if err := b.redisClient.Publish(ctx, b.channel, msg).Err(); err != nil {
		return fmt.Errorf("failed to publish realtime event to Redis: %w", err)
	}
	return nil
}

// Run подписывается на канал и раздает входящие кадры до отмены ctx
func (b *RedisBridge) Run(ctx context.Context) error {
	sub := b.redisClient.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}
	b.logger.WithField("channel", b.channel).Info("Realtime bridge subscribed")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Stopping realtime bridge.")
			return nil
		case msg, ok := <-ch:
			if !ok {
				return errors.New("realtime bridge channel closed")
			}
			b.deliver(msg.Payload)
		}
	}
}

func (b *RedisBridge) deliver(payload string) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		b.logger.WithError(err).Error("Failed to unmarshal realtime envelope from Redis")
		return
	}
	b.hub.Deliver(env.Room, env.Frame)
}
