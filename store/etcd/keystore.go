package etcd

import (
	"context"
	"encoding/json"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/kochabx/webpush/core/crypto/vapid"
)

// KeyStore 基于 etcd 的 VAPID 密钥存储，键为 <prefix>/vapid/<name>
type KeyStore struct {
	etcd *Etcd
}

var _ vapid.KeyStore = (*KeyStore)(nil)

// NewKeyStore 创建密钥存储
func NewKeyStore(e *Etcd) *KeyStore {
	return &KeyStore{etcd: e}
}

func (s *KeyStore) Load(ctx context.Context, name string) (*vapid.KeyPair, error) {
	resp, err := s.etcd.client.Get(ctx, s.etcd.key("vapid", name))
	if err != nil {
		return nil, err
	}
	if len(resp.Kvs) == 0 {
		return nil, vapid.ErrKeysNotFound
	}
	return decodeKeyPair(resp.Kvs[0].Value)
}

// Create 仅在键不存在时写入，竞争失败时返回胜出者写入的密钥
func (s *KeyStore) Create(ctx context.Context, name string, kp *vapid.KeyPair) (*vapid.KeyPair, error) {
	data, err := json.Marshal(kp)
	if err != nil {
		return nil, err
	}

	key := s.etcd.key("vapid", name)
	resp, err := s.etcd.client.Txn(ctx).
		If(clientv3.Compare(clientv3.CreateRevision(key), "=", 0)).
		Then(clientv3.OpPut(key, string(data))).
		Else(clientv3.OpGet(key)).
		Commit()
	if err != nil {
		return nil, err
	}
	if resp.Succeeded {
		return kp, nil
	}

	kvs := resp.Responses[0].GetResponseRange().Kvs
	if len(kvs) == 0 {
		return nil, vapid.ErrKeysNotFound
	}
	return decodeKeyPair(kvs[0].Value)
}

func (s *KeyStore) Replace(ctx context.Context, name string, kp *vapid.KeyPair) error {
	data, err := json.Marshal(kp)
	if err != nil {
		return err
	}
	_, err = s.etcd.client.Put(ctx, s.etcd.key("vapid", name), string(data))
	return err
}

// Rotate 在集群范围的锁内重新生成身份密钥，同一时刻只有一个进程能轮换
func (s *KeyStore) Rotate(ctx context.Context, id *vapid.Identity) (*vapid.KeyPair, error) {
	lock := s.etcd.NewLock(s.etcd.key("vapid", id.Name(), "lock"), s.etcd.config.LockTTL)
	if err := lock.TryLock(ctx); err != nil {
		return nil, err
	}
	defer lock.Unlock(context.WithoutCancel(ctx))

	kp, err := id.Regenerate(ctx, s)
	if err != nil {
		return nil, err
	}
	s.etcd.logger.Warn().Str("identity", id.Name()).Str("publicKey", kp.PublicKeyString()).Msg("vapid keys rotated")
	return kp, nil
}

// Watch 把其他进程写入的密钥整体替换到 id 中，直到 ctx 结束
func (s *KeyStore) Watch(ctx context.Context, id *vapid.Identity) {
	for resp := range s.etcd.client.Watch(ctx, s.etcd.key("vapid", id.Name())) {
		for _, ev := range resp.Events {
			if ev.Type != clientv3.EventTypePut {
				continue
			}
			kp, err := decodeKeyPair(ev.Kv.Value)
			if err != nil {
				s.etcd.logger.Error().Err(err).Str("identity", id.Name()).Msg("ignoring undecodable vapid keys")
				continue
			}
			if !kp.Equal(id.Keys()) {
				id.Swap(kp)
				s.etcd.logger.Info().Str("identity", id.Name()).Msg("vapid keys reloaded")
			}
		}
	}
}

func decodeKeyPair(data []byte) (*vapid.KeyPair, error) {
	kp := new(vapid.KeyPair)
	if err := json.Unmarshal(data, kp); err != nil {
		return nil, err
	}
	return kp, nil
}
