package desensitize

const mask = "******"

var (
	// PrivateKeyRule VAPID 私钥字段脱敏规则（{"privateKey":"..."}）
	PrivateKeyRule = MustNewFieldRule(
		"private_key",
		"privateKey",
		`.+`,
		mask,
	)

	// AuthSecretRule 订阅 auth 密钥字段脱敏规则（{"auth":"..."}）
	AuthSecretRule = MustNewFieldRule(
		"auth_secret",
		"auth",
		`.+`,
		mask,
	)

	// JWTSecretRule 服务端签名密钥字段脱敏规则
	JWTSecretRule = MustNewFieldRule(
		"jwt_secret",
		"jwtSecret",
		`.+`,
		mask,
	)

	// VAPIDTokenRule VAPID 授权头脱敏规则 (vapid t=eyJ..., k=BP... -> vapid t=******, k=BP...)
	VAPIDTokenRule = MustNewContentRule(
		"vapid_token",
		`(vapid t=)[A-Za-z0-9_\-.]+`,
		"${1}"+mask,
	)

	// WebPushTokenRule 旧版 WebPush 授权头脱敏规则
	WebPushTokenRule = MustNewContentRule(
		"webpush_token",
		`(WebPush )[A-Za-z0-9_\-.]+`,
		"${1}"+mask,
	)

	// BearerRule Bearer Token 脱敏规则
	BearerRule = MustNewContentRule(
		"bearer",
		`(Bearer )[A-Za-z0-9_\-.]+`,
		"${1}"+mask,
	)

	// EmailRule 邮箱脱敏规则 (user@example.com -> u***r@e***.com)
	EmailRule = MustNewContentRule(
		"email",
		`\b([A-Za-z0-9])[A-Za-z0-9._%+-]*([A-Za-z0-9])@([A-Za-z0-9])[A-Za-z0-9.-]*\.([A-Za-z]{2,})\b`,
		"$1***$2@$3***.$4",
	)
)

// BuiltinRules 返回推送服务默认启用的规则
// 邮箱规则不在其中：VAPID subject 需要原样出现在日志中便于排查
func BuiltinRules() []Rule {
	return []Rule{
		PrivateKeyRule,
		AuthSecretRule,
		JWTSecretRule,
		VAPIDTokenRule,
		WebPushTokenRule,
		BearerRule,
	}
}
