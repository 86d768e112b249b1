package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/kochabx/webpush/core/push"
)

// SubscriptionStore 基于 Redis 哈希的订阅存储
// {prefix}:subscriptions:<owner> 保存 endpoint -> 订阅 JSON
// {prefix}:subscription-owners 保存 endpoint -> owner 索引
type SubscriptionStore struct {
	client *Client
}

var _ push.SubscriptionStore = (*SubscriptionStore)(nil)

// NewSubscriptionStore 创建订阅存储
func NewSubscriptionStore(client *Client) *SubscriptionStore {
	return &SubscriptionStore{client: client}
}

func (s *SubscriptionStore) ownerKey(owner string) string {
	return s.client.key("subscriptions", owner)
}

func (s *SubscriptionStore) indexKey() string {
	return s.client.key("subscription-owners")
}

// Save 保存订阅，同一 endpoint 归属最后一次保存它的 owner
func (s *SubscriptionStore) Save(ctx context.Context, owner string, sub *push.Subscription) error {
	if owner == "" || sub == nil {
		return push.ErrInvalidArgument
	}
	data, err := json.Marshal(sub)
	if err != nil {
		return err
	}

	rdb := s.client.UniversalClient()
	endpoint := sub.Endpoint()

	prev, err := rdb.HGet(ctx, s.indexKey(), endpoint).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	_, err = rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if prev != "" && prev != owner {
			pipe.HDel(ctx, s.ownerKey(prev), endpoint)
		}
		pipe.HSet(ctx, s.ownerKey(owner), endpoint, data)
		pipe.HSet(ctx, s.indexKey(), endpoint, owner)
		return nil
	})
	return err
}

// List 返回 owner 的全部订阅，按 endpoint 排序
func (s *SubscriptionStore) List(ctx context.Context, owner string) ([]*push.Subscription, error) {
	records, err := s.client.UniversalClient().HGetAll(ctx, s.ownerKey(owner)).Result()
	if err != nil {
		return nil, err
	}

	subs := make([]*push.Subscription, 0, len(records))
	for endpoint, data := range records {
		sub, err := push.ParseSubscription([]byte(data))
		if err != nil {
			return nil, fmt.Errorf("redis: stored subscription %s: %w", endpoint, err)
		}
		subs = append(subs, sub)
	}
	slices.SortFunc(subs, func(a, b *push.Subscription) int {
		return strings.Compare(a.Endpoint(), b.Endpoint())
	})
	return subs, nil
}

// Delete 删除 endpoint 对应的订阅，不存在时不报错
func (s *SubscriptionStore) Delete(ctx context.Context, endpoint string) error {
	rdb := s.client.UniversalClient()

	owner, err := rdb.HGet(ctx, s.indexKey(), endpoint).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}

	_, err = rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, s.ownerKey(owner), endpoint)
		pipe.HDel(ctx, s.indexKey(), endpoint)
		return nil
	})
	return err
}
