package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/kochabx/webpush/core/crypto/vapid"
)

// KeyStore 基于 Redis 字符串的 VAPID 密钥存储，键为 {prefix}:vapid:<name>
type KeyStore struct {
	client *Client
}

var _ vapid.KeyStore = (*KeyStore)(nil)

// NewKeyStore 创建密钥存储
func NewKeyStore(client *Client) *KeyStore {
	return &KeyStore{client: client}
}

func (s *KeyStore) Load(ctx context.Context, name string) (*vapid.KeyPair, error) {
	data, err := s.client.UniversalClient().Get(ctx, s.client.key("vapid", name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, vapid.ErrKeysNotFound
	}
	if err != nil {
		return nil, err
	}

	kp := new(vapid.KeyPair)
	if err := json.Unmarshal(data, kp); err != nil {
		return nil, err
	}
	return kp, nil
}

// Create 通过 SETNX 保证只有一个写入者生效，失败方读回已存在的密钥
func (s *KeyStore) Create(ctx context.Context, name string, kp *vapid.KeyPair) (*vapid.KeyPair, error) {
	data, err := json.Marshal(kp)
	if err != nil {
		return nil, err
	}

	ok, err := s.client.UniversalClient().SetNX(ctx, s.client.key("vapid", name), data, 0).Result()
	if err != nil {
		return nil, err
	}
	if ok {
		return kp, nil
	}
	return s.Load(ctx, name)
}

func (s *KeyStore) Replace(ctx context.Context, name string, kp *vapid.KeyPair) error {
	data, err := json.Marshal(kp)
	if err != nil {
		return err
	}
	return s.client.UniversalClient().Set(ctx, s.client.key("vapid", name), data, 0).Err()
}
