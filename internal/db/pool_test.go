package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnString(t *testing.T) {
	assert.Equal(t,
		"postgres://postgres@localhost:5432/gym_app",
		ConnString(NewDBPoolParams{DBHost: "localhost", DBPort: "5432", DBName: "gym_app"}),
	)
	assert.Equal(t,
		"postgres://coach:s3cr%40t@db:6543/gym_app",
		ConnString(NewDBPoolParams{DBHost: "db", DBPort: "6543", DBName: "gym_app", DBUser: "coach", DBPassword: "s3cr@t"}),
	)
}

func TestSchemaSQL_CoversTables(t *testing.T) {
	for _, table := range MusclestatsTables {
		assert.True(t, strings.Contains(SchemaSQL, "public."+table+"\n"), table)
	}
}
