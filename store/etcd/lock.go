package etcd

import (
	"context"
	"errors"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// ErrLocked 锁已被其他持有者占用
var ErrLocked = errors.New("etcd: lock is held")

// Lock 基于租约的非阻塞互斥锁，持有期间自动续约
type Lock struct {
	etcd    *Etcd
	key     string
	ttl     int64
	leaseID clientv3.LeaseID
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewLock 创建锁，ttl 为租约秒数
func (e *Etcd) NewLock(key string, ttl int64) *Lock {
	return &Lock{etcd: e, key: key, ttl: ttl}
}

// TryLock 尝试获取锁，已被占用时返回 ErrLocked
func (l *Lock) TryLock(ctx context.Context) error {
	client := l.etcd.client
	if client == nil {
		return ErrEtcdNotInitialized
	}

	lease, err := client.Grant(ctx, l.ttl)
	if err != nil {
		return err
	}

	resp, err := client.Txn(ctx).
		If(clientv3.Compare(clientv3.CreateRevision(l.key), "=", 0)).
		Then(clientv3.OpPut(l.key, "locked", clientv3.WithLease(lease.ID))).
		Commit()
	if err != nil || !resp.Succeeded {
		_, _ = client.Revoke(context.WithoutCancel(ctx), lease.ID)
		if err != nil {
			return err
		}
		return ErrLocked
	}

	keepCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	ch, err := client.KeepAlive(keepCtx, lease.ID)
	if err != nil {
		cancel()
		_, _ = client.Revoke(context.WithoutCancel(ctx), lease.ID)
		return err
	}

	l.leaseID = lease.ID
	l.cancel = cancel
	l.done = make(chan struct{})
	go func() {
		defer close(l.done)
		for range ch {
		}
	}()
	return nil
}

// Unlock 停止续约并撤销租约，锁键随之删除
func (l *Lock) Unlock(ctx context.Context) error {
	if l.cancel == nil {
		return nil
	}
	l.cancel()
	<-l.done
	l.cancel = nil

	_, err := l.etcd.client.Revoke(ctx, l.leaseID)
	return err
}
