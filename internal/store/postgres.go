package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/asadsehto/savetube/internal/model"
)

const (
	pgMaxRetries    = 5
	pgRetryInterval = 2 * time.Second

	// notifyChannel carries comma-joined changed keys; NOTIFY fires on
	// commit, so subscribers only ever see committed writes.
	notifyChannel = "savetube_changes"

	pgSchema = `
		CREATE TABLE IF NOT EXISTS savetube_kv (
			key        TEXT PRIMARY KEY,
			value      JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`
)

// Postgres is the pgx-backed store. Collections live as JSONB values in a
// two-row key/value table; change notification rides LISTEN/NOTIFY so
// every connected process, the writer included, observes commits.
type Postgres struct {
	pool   *pgxpool.Pool
	log    zerolog.Logger
	cancel context.CancelFunc

	mu      sync.Mutex
	nextSub int
	subs    map[int]ChangeHandler
}

// OpenPostgres connects with retries, ensures the schema, and starts the
// notification listener.
func OpenPostgres(ctx context.Context, databaseURL string, logger zerolog.Logger) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = time.Minute

	var pool *pgxpool.Pool
	for attempt := 1; attempt <= pgMaxRetries; attempt++ {
		pool, err = pgxpool.NewWithConfig(ctx, config)
		if err == nil {
			if pingErr := pool.Ping(ctx); pingErr == nil {
				break
			} else {
				pool.Close()
				pool = nil
				err = pingErr
			}
		}

		logger.Warn().Int("attempt", attempt).Int("max", pgMaxRetries).Err(err).
			Msg("database connection attempt failed")
		if attempt < pgMaxRetries {
			select {
			case <-time.After(pgRetryInterval):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	if pool == nil {
		return nil, fmt.Errorf("database connection failed after %d attempts: %w", pgMaxRetries, err)
	}

	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	listenCtx, cancel := context.WithCancel(context.Background())
	p := &Postgres{
		pool:   pool,
		log:    logger,
		cancel: cancel,
		subs:   make(map[int]ChangeHandler),
	}
	go p.listen(listenCtx)

	logger.Info().Msg("database connected")
	return p, nil
}

// Pool exposes the underlying pool for health checks and metrics gauges.
func (p *Postgres) Pool() *pgxpool.Pool { return p.pool }

// Get reads a snapshot of the named collections. Missing rows read as
// empty collections.
func (p *Postgres) Get(ctx context.Context, keys ...string) (Data, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT key, value FROM savetube_kv WHERE key = ANY($1)`, keys)
	if err != nil {
		return Data{}, err
	}
	defer rows.Close()

	var out Data
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return Data{}, err
		}
		switch key {
		case KeyVideos:
			if err := json.Unmarshal(value, &out.Videos); err != nil {
				return Data{}, fmt.Errorf("decode %s: %w", key, err)
			}
		case KeyPlaylists:
			if err := json.Unmarshal(value, &out.Playlists); err != nil {
				return Data{}, fmt.Errorf("decode %s: %w", key, err)
			}
		}
	}
	return out, rows.Err()
}

// Set upserts the named collections in one transaction and notifies on
// commit.
func (p *Postgres) Set(ctx context.Context, u Update) error {
	keys := u.Keys()
	if len(keys) == 0 {
		return nil
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	upsert := func(key string, v any) error {
		value, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO savetube_kv (key, value, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
			key, value)
		return err
	}

	if u.Videos != nil {
		if err := upsert(KeyVideos, emptyIfNilVideos(*u.Videos)); err != nil {
			return err
		}
	}
	if u.Playlists != nil {
		if err := upsert(KeyPlaylists, emptyIfNilPlaylists(*u.Playlists)); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`,
		notifyChannel, strings.Join(keys, ",")); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Subscribe registers a change handler fed from the LISTEN loop.
func (p *Postgres) Subscribe(h ChangeHandler) (func(), error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextSub
	p.nextSub++
	p.subs[id] = h

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}, nil
}

// Close stops the listener and releases the pool.
func (p *Postgres) Close() error {
	p.cancel()
	p.pool.Close()
	return nil
}

// listen holds a dedicated connection on the notification channel and
// dispatches payloads to subscribers, reconnecting with backoff on error.
func (p *Postgres) listen(ctx context.Context) {
	for {
		if err := p.listenOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			p.log.Warn().Err(err).Msg("notification listener error, reconnecting in 5s")
			select {
			case <-time.After(5 * time.Second):
			case <-ctx.Done():
				return
			}
		}
	}
}

func (p *Postgres) listenOnce(ctx context.Context) error {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		return err
	}

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		if notification.Payload == "" {
			continue
		}
		p.dispatch(strings.Split(notification.Payload, ","))
	}
}

func (p *Postgres) dispatch(keys []string) {
	p.mu.Lock()
	handlers := make([]ChangeHandler, 0, len(p.subs))
	for _, h := range p.subs {
		handlers = append(handlers, h)
	}
	p.mu.Unlock()

	for _, h := range handlers {
		h(keys)
	}
}

func emptyIfNilVideos(v []model.VideoRecord) []model.VideoRecord {
	if v == nil {
		return []model.VideoRecord{}
	}
	return v
}

func emptyIfNilPlaylists(v []model.Playlist) []model.Playlist {
	if v == nil {
		return []model.Playlist{}
	}
	return v
}
