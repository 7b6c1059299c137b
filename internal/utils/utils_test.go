package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresDSN_ConnectionString(t *testing.T) {
	dsn := PostgresDSN{
		Host: "db", Port: 5432, User: "u", Password: "p", DBName: "catalog", SSLMode: "disable",
		PoolSize: 10, ConnectTimeout: 5 * time.Second, ApplicationName: "catalog-sync",
	}

	s, err := dsn.ConnectionString()
	require.NoError(t, err)
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=catalog sslmode=disable connect_timeout=5 application_name=catalog-sync pool_max_conns=10", s)
}

func TestPostgresDSN_QuotesValues(t *testing.T) {
	dsn := PostgresDSN{Host: "db", Port: 5432, User: "u", Password: `it's a \secret`, DBName: "catalog", SSLMode: "require"}

	s, err := dsn.ConnectionString()
	require.NoError(t, err)
	assert.Equal(t, `host=db port=5432 user=u password='it\'s a \\secret' dbname=catalog sslmode=require`, s)
}

func TestPostgresDSN_Validation(t *testing.T) {
	valid := PostgresDSN{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "catalog", SSLMode: "disable"}

	cases := []struct {
		name   string
		modify func(d *PostgresDSN)
		want   error
	}{
		{"empty host", func(d *PostgresDSN) { d.Host = "" }, ErrStorageEmptyHostName},
		{"port too big", func(d *PostgresDSN) { d.Port = 70000 }, ErrStorageInvalidPortNumber},
		{"zero port", func(d *PostgresDSN) { d.Port = 0 }, ErrStorageInvalidPortNumber},
		{"empty user", func(d *PostgresDSN) { d.User = "" }, ErrStorageEmptyUsername},
		{"empty password", func(d *PostgresDSN) { d.Password = "" }, ErrStorageEmptyPassword},
		{"empty database", func(d *PostgresDSN) { d.DBName = "" }, ErrStorageInvalidDatabaseName},
		{"unknown sslmode", func(d *PostgresDSN) { d.SSLMode = "on" }, ErrStorageInvalidSslMode},
		{"negative pool", func(d *PostgresDSN) { d.PoolSize = -1 }, ErrStorageInvalidPoolSize},
		{"negative timeout", func(d *PostgresDSN) { d.ConnectTimeout = -time.Second }, ErrStorageInvalidTimeout},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := valid
			tc.modify(&d)
			_, err := d.ConnectionString()
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestNormalizeShopDomain(t *testing.T) {
	shop, err := NormalizeShopDomain(" https://Demo-Store.myshopify.com/ ")
	require.NoError(t, err)
	assert.Equal(t, "demo-store.myshopify.com", shop)

	for _, bad := range []string{"", "example.com", "evil.com/.myshopify.com", "-x.myshopify.com"} {
		_, err := NormalizeShopDomain(bad)
		assert.ErrorIs(t, err, ErrInvalidShopDomain, bad)
	}
}
