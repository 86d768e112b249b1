package db

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kochabx/webpush/core/push"
)

// Subscription 订阅表模型，endpoint 为主键
type Subscription struct {
	Endpoint        string `gorm:"primaryKey;size:512"`
	Owner           string `gorm:"size:255;not null;index"`
	P256dh          string `gorm:"size:128"`
	Auth            string `gorm:"size:64"`
	ContentEncoding string `gorm:"size:16;not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName 表名
func (Subscription) TableName() string {
	return "webpush_subscriptions"
}

// SubscriptionStore 基于 GORM 的订阅存储
type SubscriptionStore struct {
	db *gorm.DB
}

var _ push.SubscriptionStore = (*SubscriptionStore)(nil)

// NewSubscriptionStore 创建订阅存储并自动迁移表结构
func NewSubscriptionStore(ctx context.Context, client *Client) (*SubscriptionStore, error) {
	db := client.DB().WithContext(ctx)
	if err := db.AutoMigrate(&Subscription{}); err != nil {
		return nil, err
	}
	return &SubscriptionStore{db: client.DB()}, nil
}

// Save 按 endpoint upsert，owner 随之转移
func (s *SubscriptionStore) Save(ctx context.Context, owner string, sub *push.Subscription) error {
	if owner == "" || sub == nil {
		return push.ErrInvalidArgument
	}

	w := sub.JSON()
	row := Subscription{
		Endpoint:        w.Endpoint,
		Owner:           owner,
		ContentEncoding: w.ContentEncoding,
	}
	if w.Keys != nil {
		row.P256dh = w.Keys.P256dh
		row.Auth = w.Keys.Auth
	}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"owner", "p256dh", "auth", "content_encoding", "updated_at"}),
	}).Create(&row).Error
}

// List 返回 owner 的订阅，按 endpoint 排序
func (s *SubscriptionStore) List(ctx context.Context, owner string) ([]*push.Subscription, error) {
	var rows []Subscription
	if err := s.db.WithContext(ctx).Where("owner = ?", owner).Order("endpoint").Find(&rows).Error; err != nil {
		return nil, err
	}

	subs := make([]*push.Subscription, 0, len(rows))
	for _, row := range rows {
		w := push.SubscriptionJSON{Endpoint: row.Endpoint, ContentEncoding: row.ContentEncoding}
		if row.P256dh != "" {
			w.Keys = &push.KeysJSON{P256dh: row.P256dh, Auth: row.Auth}
		}
		sub, err := w.Subscription()
		if err != nil {
			return nil, fmt.Errorf("db: stored subscription %s: %w", row.Endpoint, err)
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

// Delete 删除 endpoint 对应的订阅，不存在时不报错
func (s *SubscriptionStore) Delete(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Where("endpoint = ?", endpoint).Delete(&Subscription{}).Error
}
