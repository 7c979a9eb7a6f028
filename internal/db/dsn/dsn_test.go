package dsn

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		DB: config.DB{
			Host:     "db.local",
			Port:     3306,
			User:     "blog",
			Password: "pw",
			Name:     "blog",
			Extras:   "parseTime=True",
		},
	}
}

func TestCreate(t *testing.T) {
	assert.Equal(t, "blog:pw@tcp(db.local:3306)/blog?parseTime=True", Create(testConfig()))
}

func TestPostgres(t *testing.T) {
	cfg := testConfig()
	cfg.DB.Port = 5432
	cfg.DB.Extras = "sslmode=disable"

	assert.Equal(t, "host=db.local port=5432 user=blog password=pw dbname=blog sslmode=disable", Postgres(cfg))
	assert.Equal(t, "postgres://blog:pw@db.local:5432/blog", PostgresURI(cfg))
}

func TestSQLite(t *testing.T) {
	cfg := testConfig()
	assert.Equal(t, ":memory:", SQLite(cfg))

	cfg.DB.Path = "blog.db"
	assert.Equal(t, "blog.db", SQLite(cfg))
}
