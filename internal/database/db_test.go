package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/photo-feed/internal/config"
)

func TestDSN(t *testing.T) {
	t.Parallel()

	dsn := DSN(config.Config{DBUser: "isuconp", DBPass: "pw", DBHost: "db", DBPort: "3306", DBName: "isuconp"})
	assert.Contains(t, dsn, "isuconp:pw@tcp(db:3306)/isuconp?")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "interpolateParams=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}
