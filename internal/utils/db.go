package utils

import (
	"strconv"
	"strings"
	"time"
)

// PostgresDSN параметры подключения к хранилищу ключей и подписок
type PostgresDSN struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	PoolSize        int
	ConnectTimeout  time.Duration
	ApplicationName string
}

var sslModes = map[string]struct{}{
	"disable":     {},
	"allow":       {},
	"prefer":      {},
	"require":     {},
	"verify-ca":   {},
	"verify-full": {},
}

// ConnectionString собирает keyword/value строку, которую принимает pgxpool.ParseConfig.
// Размер пула передается через pool_max_conns
func (d PostgresDSN) ConnectionString() (string, error) {
	if err := d.validate(); err != nil {
		return "", err
	}

	pairs := [][2]string{
		{"host", d.Host},
		{"port", strconv.Itoa(d.Port)},
		{"user", d.User},
		{"password", d.Password},
		{"dbname", d.DBName},
		{"sslmode", d.SSLMode},
	}
	if d.ConnectTimeout > 0 {
		pairs = append(pairs, [2]string{"connect_timeout", strconv.Itoa(int(d.ConnectTimeout.Seconds()))})
	}
	if d.ApplicationName != "" {
		pairs = append(pairs, [2]string{"application_name", d.ApplicationName})
	}
	if d.PoolSize > 0 {
		pairs = append(pairs, [2]string{"pool_max_conns", strconv.Itoa(d.PoolSize)})
	}

	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p[0]+"="+quoteDSNValue(p[1]))
	}
	return strings.Join(parts, " "), nil
}

func (d PostgresDSN) validate() error {
	switch {
	case d.Host == "":
		return ErrStorageEmptyHostName
	case d.Port <= 0 || d.Port > 65535:
		return ErrStorageInvalidPortNumber
	case d.User == "":
		return ErrStorageEmptyUsername
	case d.Password == "":
		return ErrStorageEmptyPassword
	case d.DBName == "":
		return ErrStorageInvalidDatabaseName
	case d.ConnectTimeout < 0:
		return ErrStorageInvalidTimeout
	case d.PoolSize < 0:
		return ErrStorageInvalidPoolSize
	}
	if _, ok := sslModes[d.SSLMode]; !ok {
		return ErrStorageInvalidSslMode
	}
	return nil
}

// quoteDSNValue экранирует значение по правилам libpq: пробелы и пустая строка в кавычках
func quoteDSNValue(v string) string {
	if v != "" && !strings.ContainsAny(v, " '\\") {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}
