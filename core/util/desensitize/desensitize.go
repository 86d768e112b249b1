package desensitize

import (
	"net/url"
	"strings"
)

// Email 邮箱脱敏，保留前3位和@后的内容，支持 mailto: 前缀
// 例如：mailto:admin@example.com -> mailto:adm****@example.com
func Email(email string) string {
	prefix := ""
	if rest, ok := strings.CutPrefix(email, "mailto:"); ok {
		prefix, email = "mailto:", rest
	}
	index := strings.IndexByte(email, '@')
	if index == -1 || index < 4 {
		return prefix + email
	}
	return prefix + email[:3] + "****" + email[index:]
}

// Endpoint 推送地址脱敏，保留 origin 和路径末尾 keep 位
// 路径中的订阅标识可以直接用于推送，不应完整出现在日志中
// 例如：https://fcm.googleapis.com/fcm/send/abcdefgh -> https://fcm.googleapis.com/****efgh
func Endpoint(endpoint string, keep int) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return Custom(endpoint, keep)
	}
	origin := u.Scheme + "://" + u.Host
	rest := strings.TrimPrefix(endpoint, origin)
	if rest == "" {
		return origin
	}
	if len(rest) <= keep {
		return origin + "/****"
	}
	return origin + "/****" + rest[len(rest)-keep:]
}

// Key 密钥脱敏，保留前 keep 位
func Key(key string, keep int) string {
	if len(key) <= keep {
		return strings.Repeat("*", len(key))
	}
	return key[:keep] + "****"
}

// Custom 自定义脱敏，保留前 keep 位和后 keep 位
func Custom(s string, keep int) string {
	length := len(s)
	if length <= keep*2 {
		return s
	}
	return s[:keep] + strings.Repeat("*", length-keep*2) + s[length-keep:]
}
