package db

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisGet(t *testing.T) {
	client, mock := redismock.NewClientMock()
	kv := NewRedisKV(client, "memo:")

	mock.ExpectGet("memo:theme").SetVal("dark")

	val, ok, err := kv.Get(context.Background(), KeyTheme)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", val)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisGetMissing(t *testing.T) {
	client, mock := redismock.NewClientMock()
	kv := NewRedisKV(client, "memo:")

	mock.ExpectGet("memo:transcriptionHistory").RedisNil()

	_, ok, err := kv.Get(context.Background(), KeyHistory)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisSet(t *testing.T) {
	client, mock := redismock.NewClientMock()
	kv := NewRedisKV(client, "memo:")

	mock.ExpectSet("memo:theme", "light", 0).SetVal("OK")

	require.NoError(t, kv.Set(context.Background(), KeyTheme, "light"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisErrorsAreWrapped(t *testing.T) {
	client, mock := redismock.NewClientMock()
	kv := NewRedisKV(client, "memo:")

	boom := errors.New("connection reset")
	mock.ExpectGet("memo:theme").SetErr(boom)

	_, _, err := kv.Get(context.Background(), KeyTheme)
	assert.ErrorIs(t, err, boom)
}
