package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializableIntText(t *testing.T) {
	var a SerializableInt = 10
	data, err := a.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "10", string(data))
	var b SerializableInt
	err = b.UnmarshalText(data)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSerializableIntInvalidText(t *testing.T) {
	var b SerializableInt
	err := b.UnmarshalText([]byte("ten"))
	assert.Error(t, err)
}
