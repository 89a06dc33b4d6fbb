package stdlib

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"iron/internal/runtime"
)

// CodecModule is std::codec: digests and text encodings over strings.
// Digests are returned hex encoded.
func CodecModule[T any]() *runtime.Module[T] {
	return runtime.NewModule[T]().
		MustRegister("md5", func(s string) string {
			sum := md5.Sum([]byte(s))
			return hex.EncodeToString(sum[:])
		}).
		MustRegister("sha256", func(s string) string {
			sum := sha256.Sum256([]byte(s))
			return hex.EncodeToString(sum[:])
		}).
		MustRegister("sha512", func(s string) string {
			sum := sha512.Sum512([]byte(s))
			return hex.EncodeToString(sum[:])
		}).
		MustRegister("hmac_sha256", func(message, secret string) string {
			h := hmac.New(sha256.New, []byte(secret))
			h.Write([]byte(message))
			return hex.EncodeToString(h.Sum(nil))
		}).
		MustRegister("base64_encode", func(s string) string {
			return base64.StdEncoding.EncodeToString([]byte(s))
		}).
		MustRegister("base64_decode", func(s string) (string, error) {
			b, err := base64.StdEncoding.DecodeString(s)
			if err != nil {
				return "", fmt.Errorf("base64_decode: %w", err)
			}
			return string(b), nil
		}).
		MustRegister("hex_encode", func(s string) string {
			return hex.EncodeToString([]byte(s))
		}).
		MustRegister("hex_decode", func(s string) (string, error) {
			b, err := hex.DecodeString(s)
			if err != nil {
				return "", fmt.Errorf("hex_decode: %w", err)
			}
			return string(b), nil
		})
}
