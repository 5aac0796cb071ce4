package store

import (
	"context"
	"errors"
	"testing"

	"vitalwatch/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestUnavailable(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	var st Store = NewUnavailable(cause)
	ctx := context.Background()

	sub, err := st.SubscribeLive(ctx, func(*models.Reading) {}, func(error) {})
	assert.Nil(t, sub)
	assert.ErrorIs(t, err, cause)

	_, err = st.LatestLog(ctx)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotFound)

	_, err = st.RecentLogs(ctx, 50)
	assert.ErrorIs(t, err, cause)

	assert.ErrorIs(t, st.SetLive(ctx, models.Reading{}), cause)
	assert.ErrorIs(t, st.AppendLog(ctx, "k", models.Reading{}), cause)
	assert.NoError(t, st.Close())
}
