package push

import (
	"github.com/go-playground/validator/v10"

	"github.com/kochabx/webpush/core/crypto/ecc"
	"github.com/kochabx/webpush/core/crypto/ece"
	kv "github.com/kochabx/webpush/core/validator"
)

// Subscription wire rules, registered on the shared validator.
var rules = []kv.Rule{
	{
		Tag: "content_encoding",
		Func: func(fl validator.FieldLevel) bool {
			_, err := ece.ParseEncoding(fl.Field().String())
			return err == nil
		},
		Messages: map[string]string{
			"en": "{0} must be aesgcm or aes128gcm",
			"zh": "{0}必须为aesgcm或aes128gcm",
		},
	},
	{
		Tag: "b64key",
		Func: func(fl validator.FieldLevel) bool {
			raw, err := decodeBase64(fl.Field().String())
			if err != nil {
				return false
			}
			_, err = ecc.ParsePublicKey(raw)
			return err == nil
		},
		Messages: map[string]string{
			"en": "{0} must be a base64 encoded P-256 public key",
			"zh": "{0}必须为base64编码的P-256公钥",
		},
	},
	{
		Tag: "b64auth",
		Func: func(fl validator.FieldLevel) bool {
			raw, err := decodeBase64(fl.Field().String())
			return err == nil && len(raw) >= ece.AuthSecretSize
		},
		Messages: map[string]string{
			"en": "{0} must be a base64 encoded secret of at least 16 bytes",
			"zh": "{0}必须为至少16字节的base64编码密钥",
		},
	},
}

// RegisterRules installs the subscription rules on v. The shared validator
// gets them at init.
func RegisterRules(v kv.Validator) error {
	for _, rule := range rules {
		if err := v.RegisterRule(rule); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	if err := RegisterRules(kv.Validate); err != nil {
		panic(err)
	}
}
