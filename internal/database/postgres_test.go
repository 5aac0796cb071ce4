package database

import (
	"context"
	"testing"

	"vitalwatch/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestNewPostgresDB_Unreachable(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host:     "127.0.0.1",
		Port:     1,
		User:     "postgres",
		Password: "postgres",
		Database: "vitalwatch",
		SSLMode:  "disable",
		MaxConns: 2,
	}

	db, err := NewPostgresDB(context.Background(), cfg)
	assert.Nil(t, db)
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "failed to ping database")
	}
}

func TestClose_Nil(t *testing.T) {
	assert.NoError(t, Close(nil))
}
