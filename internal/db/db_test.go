package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseName(t *testing.T) {
	name, err := DatabaseName("mongodb://localhost:27017/cards", "onecard")
	require.NoError(t, err)
	assert.Equal(t, "cards", name)

	name, err = DatabaseName("mongodb://localhost:27017", "onecard")
	require.NoError(t, err)
	assert.Equal(t, "onecard", name)

	_, err = DatabaseName("mongodb://%zz", "onecard")
	assert.Error(t, err)
}
