package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kochabx/webpush/core/push"
)

// subscriptionDocument 以 endpoint 作为主键，同一 endpoint 只属于一个 owner
type subscriptionDocument struct {
	Endpoint        string         `bson:"_id"`
	Owner           string         `bson:"owner"`
	Keys            *push.KeysJSON `bson:"keys,omitempty"`
	ContentEncoding string         `bson:"contentEncoding"`
	UpdatedAt       time.Time      `bson:"updatedAt"`
}

// SubscriptionStore 基于集合的订阅存储
type SubscriptionStore struct {
	coll *mongo.Collection
}

var _ push.SubscriptionStore = (*SubscriptionStore)(nil)

// NewSubscriptionStore 创建订阅存储并确保 owner 索引存在
func NewSubscriptionStore(ctx context.Context, client *Client) (*SubscriptionStore, error) {
	coll := client.Collection()
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "owner", Value: 1}},
		Options: options.Index().SetName("owner"),
	})
	if err != nil {
		return nil, err
	}
	return &SubscriptionStore{coll: coll}, nil
}

// Save 按 endpoint upsert
func (s *SubscriptionStore) Save(ctx context.Context, owner string, sub *push.Subscription) error {
	if owner == "" || sub == nil {
		return push.ErrInvalidArgument
	}

	w := sub.JSON()
	doc := subscriptionDocument{
		Endpoint:        w.Endpoint,
		Owner:           owner,
		Keys:            w.Keys,
		ContentEncoding: w.ContentEncoding,
		UpdatedAt:       time.Now().UTC(),
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": doc.Endpoint}, doc, options.Replace().SetUpsert(true))
	return err
}

// List 返回 owner 的订阅，按 endpoint 排序
func (s *SubscriptionStore) List(ctx context.Context, owner string) ([]*push.Subscription, error) {
	cur, err := s.coll.Find(ctx, bson.M{"owner": owner}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}

	var docs []subscriptionDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	subs := make([]*push.Subscription, 0, len(docs))
	for _, doc := range docs {
		w := push.SubscriptionJSON{Endpoint: doc.Endpoint, Keys: doc.Keys, ContentEncoding: doc.ContentEncoding}
		sub, err := w.Subscription()
		if err != nil {
			return nil, fmt.Errorf("mongo: stored subscription %s: %w", doc.Endpoint, err)
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

// Delete 删除 endpoint 对应的订阅，不存在时不报错
func (s *SubscriptionStore) Delete(ctx context.Context, endpoint string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": endpoint})
	return err
}
