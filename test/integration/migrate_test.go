package integration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jobboard_backend/database"
)

// TestMigrate_ReturnsError - миграции возвращают ошибку вызывающему,
// а не роняют процесс: повторный прогон на живой схеме идемпотентен
// и завершается nil, ошибки доходят до t.Fatalf в хелперах.
func TestMigrate_ReturnsError(t *testing.T) {
	ts := GetTestServer(t)

	assert.NoError(t, database.Migrate(ts.DB), "Повторная миграция на готовой схеме должна быть no-op")
}
