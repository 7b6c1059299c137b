package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/patrickmn/go-cache"
)

var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrExpiredToken = errors.New("session token expired")
	ErrInvalidShop  = errors.New("session token has no valid shop")
)

// SessionConfig параметры приложения для проверки токенов сессии
type SessionConfig struct {
	APIKey    string        // Client ID приложения, ожидаемый в aud
	APISecret string        // Секрет приложения, которым подписан токен
	Leeway    time.Duration // Допуск расхождения часов
}

// SessionClaims claims токена сессии встроенного приложения
type SessionClaims struct {
	jwt.RegisteredClaims
	Dest string `json:"dest"`
	Sid  string `json:"sid,omitempty"`
}

// Shop возвращает домен магазина из claim dest
func (c *SessionClaims) Shop() (string, error) {
	u, err := url.Parse(c.Dest)
	if err != nil || u.Host == "" {
		return "", ErrInvalidShop
	}

	host := strings.ToLower(u.Host)
	if !strings.HasSuffix(host, ".myshopify.com") {
		return "", ErrInvalidShop
	}

	return host, nil
}

// SessionVerifier проверяет токены сессии и кэширует результат до истечения срока
type SessionVerifier struct {
	apiKey     string
	secret     []byte
	parser     *jwt.Parser
	tokenCache *cache.Cache
}

// NewSessionVerifier создает новый верификатор токенов сессии
func NewSessionVerifier(cfg SessionConfig) (*SessionVerifier, error) {
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("api key and api secret are required")
	}

	leeway := cfg.Leeway
	if leeway == 0 {
		leeway = 5 * time.Second
	}

	return &SessionVerifier{
		apiKey: cfg.APIKey,
		secret: []byte(cfg.APISecret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithAudience(cfg.APIKey),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(leeway),
		),
		tokenCache: cache.New(time.Minute, 5*time.Minute),
	}, nil
}

// Verify проверяет подпись, аудиторию и срок действия токена
func (v *SessionVerifier) Verify(tokenString string) (*SessionClaims, error) {
	if cached, found := v.tokenCache.Get(tokenString); found {
		return cached.(*SessionClaims), nil
	}

	var claims SessionClaims
	_, err := v.parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if _, err := claims.Shop(); err != nil {
		return nil, err
	}

	if claims.ExpiresAt != nil {
		if ttl := time.Until(claims.ExpiresAt.Time); ttl > 0 {
			v.tokenCache.Set(tokenString, &claims, ttl)
		}
	}

	return &claims, nil
}

// ValidateToken реализует interfaces.AuthPort
func (v *SessionVerifier) ValidateToken(_ context.Context, tokenString string) (string, error) {
	claims, err := v.Verify(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Shop()
}
