package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// HeaderHmac заголовок с подписью вебхука
const HeaderHmac = "X-Shopify-Hmac-Sha256"

// VerifyWebhook сравнивает base64(HMAC-SHA256(body)) с подписью из заголовка
func VerifyWebhook(body []byte, signature string, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

// SignWebhook вычисляет подпись тела вебхука
func SignWebhook(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
