package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Dhoini/storefront-billing/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const (
	// Префикс ключей обработанных событий провайдера
	providerEventKeyPrefix = "stripe_event:"

	// TTL дедупликации: провайдер повторяет доставку в пределах суток
	eventDedupTTL = 24 * time.Hour
)

// EventStore отмечает обработанные события провайдера для дедупликации.
type EventStore interface {
	// MarkProcessed атомарно помечает событие обработанным.
	// Возвращает true, если событие видим впервые.
	MarkProcessed(ctx context.Context, eventID string) (bool, error)
	// Unmark снимает отметку, возвращая событию право на повторную доставку.
	Unmark(ctx context.Context, eventID string) error
	// Close закрывает соединение с хранилищем.
	Close() error
}

// RedisEventStore реализует EventStore поверх Redis (SETNX + TTL).
type RedisEventStore struct {
	client *redis.Client
	log    *logger.Logger
}

// NewRedisEventStore создает новый экземпляр хранилища событий.
func NewRedisEventStore(addr, password string, db int, log *logger.Logger) (*RedisEventStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Проверяем соединение с Redis
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Errorw("Failed to connect to Redis", "error", err)
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Infow("Connected to Redis successfully", "addr", addr)
	return &RedisEventStore{
		client: client,
		log:    log,
	}, nil
}

// MarkProcessed помечает событие обработанным через SETNX c TTL.
func (r *RedisEventStore) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	key := providerEventKeyPrefix + eventID

	first, err := r.client.SetNX(ctx, key, time.Now().Format(time.RFC3339), eventDedupTTL).Result()
	if err != nil {
		r.log.Errorw("Failed to mark provider event as processed", "eventID", eventID, "error", err)
		return false, fmt.Errorf("failed to mark event processed: %w", err)
	}

	if !first {
		r.log.Debugw("Provider event already processed, skipping", "eventID", eventID)
	}
	return first, nil
}

// Unmark удаляет отметку обработки, чтобы повторная доставка
// события не была отброшена дедупликацией.
func (r *RedisEventStore) Unmark(ctx context.Context, eventID string) error {
	key := providerEventKeyPrefix + eventID

	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.log.Errorw("Failed to unmark provider event", "eventID", eventID, "error", err)
		return fmt.Errorf("failed to unmark event: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis.
func (r *RedisEventStore) Close() error {
	return r.client.Close()
}
