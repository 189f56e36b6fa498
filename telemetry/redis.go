// SPDX-License-Identifier: EPL-2.0

package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ik5/beatmix/session"
)

var ErrPublisherClosed = errors.New("redis publisher closed")

// RedisConfig contains Redis connection and publishing configuration.
type RedisConfig struct {
	// Addr empty disables publishing.
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`

	// Prefix namespaces keys and channels: {prefix}:current:{session} and
	// {prefix}:events.
	Prefix string `yaml:"prefix"`
	// NowPlayingGrace is added to the track duration for the now-playing TTL.
	NowPlayingGrace time.Duration `yaml:"now_playing_grace"`
	// Buffer is how many events may wait for Redis before new ones are dropped.
	Buffer int `yaml:"buffer"`

	DialTimeout  time.Duration `yaml:"dial_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Prefix:          "beatmix",
		NowPlayingGrace: 30 * time.Second,
		Buffer:          256,
		DialTimeout:     5 * time.Second,
		WriteTimeout:    3 * time.Second,
	}
}

func (c RedisConfig) Enabled() bool { return c.Addr != "" }

var ErrInvalidRedisConfig = errors.New("invalid redis config")

// Validate checks publishing settings. A disabled config is always valid.
func (c RedisConfig) Validate() error {
	if !c.Enabled() {
		return nil
	}

	switch {
	case c.Prefix == "":
		return fmt.Errorf("%w: empty prefix", ErrInvalidRedisConfig)
	case c.Buffer < 1:
		return fmt.Errorf("%w: buffer must be at least 1", ErrInvalidRedisConfig)
	case c.DialTimeout <= 0 || c.WriteTimeout <= 0:
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidRedisConfig)
	case c.NowPlayingGrace < 0:
		return fmt.Errorf("%w: negative now playing grace", ErrInvalidRedisConfig)
	}
	return nil
}

// redisClient is the part of *redis.Client the publisher uses.
type redisClient interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
	Close() error
}

// NowPlaying is the value stored under the now-playing key.
type NowPlaying struct {
	SessionID string        `json:"session_id"`
	TrackID   string        `json:"track_id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// RedisPublisher mirrors session events to Redis from a background
// goroutine: every event is published on the events channel and the
// now-playing key follows track starts.
type RedisPublisher struct {
	client  redisClient
	cfg     RedisConfig
	logger  zerolog.Logger
	events  chan session.Event
	dropped atomic.Uint64

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewRedisPublisher connects to cfg.Addr and starts publishing.
func NewRedisPublisher(ctx context.Context, cfg RedisConfig, logger zerolog.Logger) (*RedisPublisher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}

	logger.Info().Str("addr", cfg.Addr).Str("prefix", cfg.Prefix).Msg("redis publisher initialized")
	return newRedisPublisher(client, cfg, logger), nil
}

func newRedisPublisher(client redisClient, cfg RedisConfig, logger zerolog.Logger) *RedisPublisher {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultRedisConfig().WriteTimeout
	}

	p := &RedisPublisher{
		client: client,
		cfg:    cfg,
		logger: logger.With().Str("component", "redis").Logger(),
		events: make(chan session.Event, max(1, cfg.Buffer)),
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

// Emit queues ev for publishing and drops it when the queue is full.
func (p *RedisPublisher) Emit(ev session.Event) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		p.dropped.Add(1)
		return
	}

	select {
	case p.events <- ev:
	default:
		p.dropped.Add(1)
	}
}

// Dropped is the number of events that never reached Redis.
func (p *RedisPublisher) Dropped() uint64 { return p.dropped.Load() }

// Close publishes what is queued, then closes the client.
func (p *RedisPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPublisherClosed
	}
	p.closed = true
	close(p.events)
	p.mu.Unlock()

	<-p.done
	return p.client.Close()
}

func (p *RedisPublisher) CurrentKey(sessionID string) string {
	return p.cfg.Prefix + ":current:" + sessionID
}

func (p *RedisPublisher) EventsChannel() string {
	return p.cfg.Prefix + ":events"
}

func (p *RedisPublisher) run() {
	defer close(p.done)

	for ev := range p.events {
		if err := p.publish(ev); err != nil {
			p.logger.Warn().Err(err).Str("event", string(ev.Type)).Msg("redis publish failed")
		}
	}
}

func (p *RedisPublisher) publish(ev session.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.WriteTimeout)
	defer cancel()

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := p.client.Publish(ctx, p.EventsChannel(), payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}

	switch ev.Type {
	case session.EventTrackStarted:
		now, err := json.Marshal(NowPlaying{
			SessionID: ev.SessionID,
			TrackID:   ev.TrackID,
			StartedAt: ev.Time,
			Duration:  ev.Duration,
		})
		if err != nil {
			return fmt.Errorf("encode now playing: %w", err)
		}
		ttl := ev.Duration + p.cfg.NowPlayingGrace
		if err := p.client.Set(ctx, p.CurrentKey(ev.SessionID), now, ttl).Err(); err != nil {
			return fmt.Errorf("set now playing: %w", err)
		}
	case session.EventSessionStopped:
		if err := p.client.Del(ctx, p.CurrentKey(ev.SessionID)).Err(); err != nil {
			return fmt.Errorf("clear now playing: %w", err)
		}
	}

	return nil
}
