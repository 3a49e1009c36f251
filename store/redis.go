package store

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"time"

	"github.com/garyburd/redigo/redis"
	"github.com/kostiamol/spinparams/cfg"
	"github.com/kostiamol/spinparams/log"
	"github.com/pkg/errors"
)

const partialDocKey = "doc:"

type (
	// RedisCfg is used to initialize an instance of Redis.
	RedisCfg struct {
		Addr             cfg.Addr
		Password         string
		MaxIdlePoolConns uint32
		IdleTimeout      time.Duration
		Log              log.Logger
	}

	// Redis keeps every document as a single string key.
	Redis struct {
		pool *redis.Pool
		log  log.Logger
	}

	redisWriter struct {
		r   *Redis
		key string
		buf bytes.Buffer
	}
)

// NewRedis creates a new instance of Redis and checks the connection.
func NewRedis(c *RedisCfg) (*Redis, error) {
	if c.Addr.Host == "" {
		return nil, errors.New("store: redis: host is empty")
	} else if c.Addr.Port == 0 {
		return nil, errors.New("store: redis: port is empty")
	}

	addr := fmt.Sprintf("%s:%d", c.Addr.Host, c.Addr.Port)
	r := newRedis(&redis.Pool{
		MaxIdle:     int(c.MaxIdlePoolConns),
		IdleTimeout: c.IdleTimeout,
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", addr, redis.DialPassword(c.Password))
		},
	}, c.Log)

	if err := r.Check(); err != nil {
		return nil, err
	}
	r.log.With("event", log.EventStoreInit).Infof("redis at %s", addr)

	return r, nil
}

func newRedis(p *redis.Pool, l log.Logger) *Redis {
	return &Redis{
		pool: p,
		log:  l.With("component", "store", "type", "redis"),
	}
}

// Check issues PING Redis command to check if Redis is ok.
func (r *Redis) Check() error {
	conn := r.pool.Get()
	defer conn.Close() // nolint

	if _, err := conn.Do("PING"); err != nil {
		return errors.Wrap(err, "store: redis: func PING")
	}
	return nil
}

// Close releases the pool.
func (r *Redis) Close() error {
	return r.pool.Close()
}

// Open .
func (r *Redis) Open(name string) (io.ReadCloser, error) {
	conn := r.pool.Get()
	defer conn.Close() // nolint

	b, err := redis.Bytes(conn.Do("GET", key(name)))
	if err == redis.ErrNil {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, errors.Wrapf(err, "store: redis: func GET %s", name)
	}
	return ioutil.NopCloser(bytes.NewReader(b)), nil
}

// Create checks that Redis is reachable and returns a writer that stores the document on Close.
func (r *Redis) Create(name string) (io.WriteCloser, error) {
	if err := r.Check(); err != nil {
		return nil, err
	}
	return &redisWriter{r: r, key: key(name)}, nil
}

// Remove .
func (r *Redis) Remove(name string) error {
	conn := r.pool.Get()
	defer conn.Close() // nolint

	if _, err := conn.Do("DEL", key(name)); err != nil {
		return errors.Wrapf(err, "store: redis: func DEL %s", name)
	}
	return nil
}

func (w *redisWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *redisWriter) Close() error {
	conn := w.r.pool.Get()
	defer conn.Close() // nolint

	if _, err := conn.Do("SET", w.key, w.buf.Bytes()); err != nil {
		return errors.Wrapf(err, "store: redis: func SET %s", w.key)
	}
	return nil
}

func key(name string) string {
	return partialDocKey + clean(name)
}
