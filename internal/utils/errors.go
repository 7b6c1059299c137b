package utils

import "errors"

// ----------------- storage ------------------
var (
	ErrStorageEmptyHostName       = errors.New("postgres: host is required")
	ErrStorageInvalidPortNumber   = errors.New("postgres: port must be in 1..65535")
	ErrStorageEmptyUsername       = errors.New("postgres: user is required")
	ErrStorageEmptyPassword       = errors.New("postgres: password is required")
	ErrStorageInvalidDatabaseName = errors.New("postgres: database name is required")
	ErrStorageInvalidSslMode      = errors.New("postgres: unsupported sslmode")
	ErrStorageInvalidPoolSize     = errors.New("postgres: pool size must not be negative")
	ErrStorageInvalidTimeout      = errors.New("postgres: connect timeout must not be negative")
)

// ----------------- shopify ------------------
var (
	ErrInvalidShopDomain = errors.New("invalid shop domain")
)
