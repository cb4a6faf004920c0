package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"

	"github.com/jhoicas/Buceo-api/internal/application/ports"
	"github.com/jhoicas/Buceo-api/pkg/config"
)

var _ ports.EventPublisher = (*RedisStreamPublisher)(nil)

// NewRedisClient crea el cliente Redis a partir de la configuración.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// RedisStreamPublisher publica eventos en un Redis Stream con XADD.
type RedisStreamPublisher struct {
	client *redis.Client
	stream string
}

// NewRedisStreamPublisher construye el publicador.
func NewRedisStreamPublisher(client *redis.Client, stream string) *RedisStreamPublisher {
	return &RedisStreamPublisher{client: client, stream: stream}
}

// Publish agrega el evento al stream. Los campos planos permiten filtrar por tipo sin decodificar data.
func (p *RedisStreamPublisher) Publish(ctx context.Context, evt ports.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"id":          evt.ID,
			"type":        evt.Type,
			"company_id":  evt.CompanyID,
			"resource_id": evt.ResourceID,
			"data":        string(data),
			"timestamp":   strconv.FormatInt(evt.OccurredAt.Unix(), 10),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	return nil
}
