package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/webpush/core/crypto/vapid"
	"github.com/kochabx/webpush/core/push/pushtest"
)

func TestRunUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(context.Background(), nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "usage: webpush")

	stderr.Reset()
	assert.Equal(t, 2, run(context.Background(), []string{"nope"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), `unknown command "nope"`)
}

func TestKeygen(t *testing.T) {
	var stdout bytes.Buffer
	require.NoError(t, runKeygen(context.Background(), nil, &stdout))

	kp := new(vapid.KeyPair)
	require.NoError(t, json.Unmarshal(stdout.Bytes(), kp))
	assert.NotEmpty(t, kp.PublicKeyString())

	path := filepath.Join(t.TempDir(), "vapid.json")
	stdout.Reset()
	require.NoError(t, runKeygen(context.Background(), []string{"-o", path}, &stdout))

	stored, err := readKeyPair(path)
	require.NoError(t, err)
	assert.Equal(t, stored.PublicKeyString()+"\n", stdout.String())
	assert.NotContains(t, stdout.String(), stored.PrivateKeyString())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSend(t *testing.T) {
	dir := t.TempDir()
	service := pushtest.NewService(t, nil)
	subscriber := pushtest.NewSubscriber(t)

	keysPath := filepath.Join(dir, "vapid.json")
	require.NoError(t, runKeygen(context.Background(), []string{"-o", keysPath}, &bytes.Buffer{}))

	p256dh, auth := subscriber.Keys()
	subPath := filepath.Join(dir, "subscription.json")
	data, err := json.Marshal(map[string]any{
		"endpoint": service.Endpoint("abc"),
		"keys":     map[string]string{"p256dh": p256dh, "auth": auth},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(subPath, data, 0o600))

	var stdout bytes.Buffer
	err = runSend(context.Background(), []string{
		"--keys", keysPath,
		"--subject", "mailto:ops@example.com",
		"--subscription", subPath,
		"--title", "Hello",
		"--body", "World",
		"--ttl", "1m",
		"--urgency", "high",
	}, &stdout)
	require.NoError(t, err)

	var report struct {
		Success  bool   `json:"success"`
		Endpoint string `json:"endpoint"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
	assert.True(t, report.Success)
	assert.Equal(t, service.Endpoint("abc"), report.Endpoint)

	reqs := service.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "60", reqs[0].Header.Get("TTL"))
	assert.Equal(t, "high", reqs[0].Header.Get("Urgency"))
	assert.True(t, strings.HasPrefix(reqs[0].Header.Get("Authorization"), "vapid t="))

	var msg struct {
		Title   string `json:"title"`
		Options struct {
			Body string `json:"body"`
		} `json:"options"`
	}
	require.NoError(t, json.Unmarshal(subscriber.Decrypt(t, reqs[0].Body), &msg))
	assert.Equal(t, "Hello", msg.Title)
	assert.Equal(t, "World", msg.Options.Body)
}

func TestSendExpired(t *testing.T) {
	dir := t.TempDir()
	service := pushtest.NewService(t, func(string, int) int { return 410 })

	keysPath := filepath.Join(dir, "vapid.json")
	require.NoError(t, runKeygen(context.Background(), []string{"-o", keysPath}, &bytes.Buffer{}))

	subPath := filepath.Join(dir, "subscription.json")
	require.NoError(t, os.WriteFile(subPath, []byte(`{"endpoint":"`+service.Endpoint("gone")+`"}`), 0o600))

	var stdout bytes.Buffer
	err := runSend(context.Background(), []string{
		"-k", keysPath,
		"--subject", "mailto:ops@example.com",
		"-s", subPath,
	}, &stdout)
	require.Error(t, err)
	assert.Contains(t, stdout.String(), `"expired":true`)
	// expired subscriptions are never retried
	assert.Equal(t, 1, service.Attempts("/push/gone"))
}

func TestSendRequiresKeys(t *testing.T) {
	subPath := filepath.Join(t.TempDir(), "subscription.json")
	require.NoError(t, os.WriteFile(subPath, []byte(`{"endpoint":"https://push.example.com/a"}`), 0o600))

	err := runSend(context.Background(), []string{"--subject", "mailto:ops@example.com", "-s", subPath}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "no VAPID keys")

	err = runSend(context.Background(), []string{"-s", subPath}, &bytes.Buffer{})
	assert.Error(t, err, "subject is required")
}

func TestToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "webpush.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
vapid:
  subject: mailto:ops@example.com
http:
  jwt_secret: 0123456789abcdef0123456789abcdef
`), 0o600))

	var stdout bytes.Buffer
	require.NoError(t, runToken(context.Background(), []string{"-c", path, "--owner", "alice"}, &stdout))
	assert.Equal(t, 3, len(strings.Split(strings.TrimSpace(stdout.String()), ".")))

	assert.Error(t, runToken(context.Background(), []string{"-c", path}, &bytes.Buffer{}))
}
