package quote

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"studiobook/models"

	"github.com/go-redis/redis/v8"
)

const quotePrefix = "quote:"

var ErrQuoteNotFound = errors.New("quote not found or expired")

// Store keeps in-progress quotes between calculator requests.
type Store interface {
	Get(ctx context.Context, id string) (models.Quote, error)
	Save(ctx context.Context, q models.Quote) error
	Delete(ctx context.Context, id string) error
}

// RedisStore holds quotes as JSON with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, id string) (models.Quote, error) {
	data, err := s.client.Get(ctx, quotePrefix+id).Bytes()
	if err == redis.Nil {
		return models.Quote{}, ErrQuoteNotFound
	}
	if err != nil {
		return models.Quote{}, err
	}
	var q models.Quote
	if err := json.Unmarshal(data, &q); err != nil {
		return models.Quote{}, err
	}
	if q.Selections == nil {
		q.Selections = make(map[string]models.SelectedService)
	}
	return q, nil
}

func (s *RedisStore) Save(ctx context.Context, q models.Quote) error {
	b, err := json.Marshal(q)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, quotePrefix+q.ID, b, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, quotePrefix+id).Err()
}
