package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	redisKeyPrefix   = "savetube:"
	redisChangeChan  = "savetube:changes"
	redisDialTimeout = 3 * time.Second
)

// Redis is the go-redis-backed store. Collections are JSON values under
// prefixed keys; change notification rides Pub/Sub, which delivers to all
// subscribed processes, the publisher included.
type Redis struct {
	rdb    *redis.Client
	log    zerolog.Logger
	pubsub *redis.PubSub
	cancel context.CancelFunc

	mu      sync.Mutex
	nextSub int
	subs    map[int]ChangeHandler
}

// OpenRedis connects, verifies the connection, and starts the Pub/Sub
// reader.
func OpenRedis(ctx context.Context, redisURL string, logger zerolog.Logger) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, redisDialTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	readCtx, stop := context.WithCancel(context.Background())
	r := &Redis{
		rdb:    rdb,
		log:    logger,
		pubsub: rdb.Subscribe(readCtx, redisChangeChan),
		cancel: stop,
		subs:   make(map[int]ChangeHandler),
	}
	go r.read(readCtx)

	logger.Info().Msg("redis connected")
	return r, nil
}

// Client exposes the underlying client for health checks.
func (r *Redis) Client() *redis.Client { return r.rdb }

// Get reads a snapshot of the named collections. Missing keys read as
// empty collections.
func (r *Redis) Get(ctx context.Context, keys ...string) (Data, error) {
	var out Data
	for _, key := range keys {
		data, err := r.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return Data{}, err
		}
		switch key {
		case KeyVideos:
			if err := json.Unmarshal(data, &out.Videos); err != nil {
				return Data{}, fmt.Errorf("decode %s: %w", key, err)
			}
		case KeyPlaylists:
			if err := json.Unmarshal(data, &out.Playlists); err != nil {
				return Data{}, fmt.Errorf("decode %s: %w", key, err)
			}
		}
	}
	return out, nil
}

// Set writes the named collections in one pipeline, then publishes the
// changed keys.
func (r *Redis) Set(ctx context.Context, u Update) error {
	keys := u.Keys()
	if len(keys) == 0 {
		return nil
	}

	pipe := r.rdb.Pipeline()
	if u.Videos != nil {
		b, err := json.Marshal(emptyIfNilVideos(*u.Videos))
		if err != nil {
			return fmt.Errorf("encode %s: %w", KeyVideos, err)
		}
		pipe.Set(ctx, redisKeyPrefix+KeyVideos, b, 0)
	}
	if u.Playlists != nil {
		b, err := json.Marshal(emptyIfNilPlaylists(*u.Playlists))
		if err != nil {
			return fmt.Errorf("encode %s: %w", KeyPlaylists, err)
		}
		pipe.Set(ctx, redisKeyPrefix+KeyPlaylists, b, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	return r.rdb.Publish(ctx, redisChangeChan, strings.Join(keys, ",")).Err()
}

// Subscribe registers a change handler fed from the Pub/Sub reader.
func (r *Redis) Subscribe(h ChangeHandler) (func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextSub
	r.nextSub++
	r.subs[id] = h

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.subs, id)
	}, nil
}

// Close stops the Pub/Sub reader and the client.
func (r *Redis) Close() error {
	r.cancel()
	r.pubsub.Close()
	return r.rdb.Close()
}

func (r *Redis) read(ctx context.Context) {
	ch := r.pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if msg.Payload == "" {
				continue
			}
			r.dispatch(strings.Split(msg.Payload, ","))
		case <-ctx.Done():
			return
		}
	}
}

func (r *Redis) dispatch(keys []string) {
	r.mu.Lock()
	handlers := make([]ChangeHandler, 0, len(r.subs))
	for _, h := range r.subs {
		handlers = append(handlers, h)
	}
	r.mu.Unlock()

	for _, h := range handlers {
		h(keys)
	}
}
