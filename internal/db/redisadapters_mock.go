package db

import (
	"context"
	"encoding"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Implements the LimitedRedis client struct
// Only suitable for testing
// The value set for the IntCmd or similar results is always 1 regardless of how many records were affected
// Contexts are completely ignored
type MockRedisClient struct {
	lock        sync.Mutex
	store       map[string]map[string]any
	expirations map[string]time.Time
}

func NewMockRedisClient() *MockRedisClient {
	return &MockRedisClient{store: map[string]map[string]any{}, expirations: map[string]time.Time{}}
}

func NewMockRedisAdapter(options ...RedisAdapterOption) RedisAdapter {
	db := RedisAdapter{rdb: NewMockRedisClient()}
	for _, opt := range options {
		err := opt(&db)
		if err != nil {
			panic(err)
		}
	}
	return db
}

func convertValuesToMap(values ...any) (map[string]any, error) {
	if len(values)%2 != 0 {
		return map[string]any{}, fmt.Errorf("number of provided values must be even")
	}
	output := map[string]any{}
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			return map[string]any{}, fmt.Errorf("hash fields must be strings")
		}
		output[key] = values[i+1]
	}
	return output, nil
}

func stringify(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case encoding.TextMarshaler:
		raw, err := val.MarshalText()
		if err != nil {
			return "", err
		}
		return string(raw), nil
	default:
		return fmt.Sprint(val), nil
	}
}

func (m *MockRedisClient) HSet(_ context.Context, key string, values ...any) *redis.IntCmd {
	m.lock.Lock()
	defer m.lock.Unlock()
	res := redis.IntCmd{}
	val, err := convertValuesToMap(values...)
	if err != nil {
		res.SetErr(err)
		return &res
	}
	hash, found := m.store[key]
	if !found {
		hash = map[string]any{}
		m.store[key] = hash
	}
	for k, v := range val {
		hash[k] = v
	}
	res.SetVal(1)
	return &res
}

func (m *MockRedisClient) HGet(_ context.Context, key, field string) *redis.StringCmd {
	m.lock.Lock()
	defer m.lock.Unlock()
	res := redis.StringCmd{}
	val, found := m.store[key][field]
	if !found {
		res.SetErr(redis.Nil)
		return &res
	}
	str, err := stringify(val)
	if err != nil {
		res.SetErr(err)
		return &res
	}
	res.SetVal(str)
	return &res
}

func (m *MockRedisClient) HDel(_ context.Context, key string, fields ...string) *redis.IntCmd {
	m.lock.Lock()
	defer m.lock.Unlock()
	res := redis.IntCmd{}
	hash, found := m.store[key]
	if !found {
		res.SetVal(0)
		return &res
	}
	for _, field := range fields {
		delete(hash, field)
	}
	// redis drops a hash once its last field is gone
	if len(hash) == 0 {
		delete(m.store, key)
		delete(m.expirations, key)
	}
	res.SetVal(1)
	return &res
}

func (m *MockRedisClient) Del(_ context.Context, keys ...string) *redis.IntCmd {
	m.lock.Lock()
	defer m.lock.Unlock()
	for _, k := range keys {
		delete(m.store, k)
		delete(m.expirations, k)
	}
	res := redis.IntCmd{}
	res.SetVal(1)
	return &res
}

func (m *MockRedisClient) ExpireAt(_ context.Context, key string, tm time.Time) *redis.BoolCmd {
	m.lock.Lock()
	defer m.lock.Unlock()
	res := redis.BoolCmd{}
	if _, found := m.store[key]; !found {
		res.SetVal(false)
		return &res
	}
	m.expirations[key] = tm
	res.SetVal(true)
	return &res
}

func (m *MockRedisClient) HGetAll(_ context.Context, key string) *redis.MapStringStringCmd {
	m.lock.Lock()
	defer m.lock.Unlock()
	res := redis.MapStringStringCmd{}
	res.SetVal(map[string]string{})
	hash, found := m.store[key]
	if !found {
		return &res
	}
	output := map[string]string{}
	for k, v := range hash {
		str, err := stringify(v)
		if err != nil {
			res.SetErr(err)
			return &res
		}
		output[k] = str
	}
	res.SetVal(output)
	return &res
}

// expiration returns the EXPIREAT time recorded for key.
func (m *MockRedisClient) expiration(key string) (time.Time, bool) {
	m.lock.Lock()
	defer m.lock.Unlock()
	tm, found := m.expirations[key]
	return tm, found
}
