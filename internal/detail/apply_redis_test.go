package detail_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careerpage/portal-service/internal/detail"
)

func TestRedisSubmitter_PublishesApplication(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := rdb.Subscribe(ctx, "applications")
	t.Cleanup(func() { sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	app, err := validForm().Validate("x1")
	require.NoError(t, err)
	require.NoError(t, detail.NewRedisSubmitter(rdb, "applications").Submit(ctx, *app))

	var msg *redis.Message
	select {
	case msg = <-sub.Channel():
	case <-ctx.Done():
		t.Fatal("no application event published")
	}

	var event struct {
		Type        string             `json:"type"`
		Application detail.Application `json:"application"`
	}
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
	assert.Equal(t, "applications", msg.Channel)
	assert.Equal(t, "EVENT_APPLICATION_SUBMITTED", event.Type)
	assert.Equal(t, "x1", event.Application.JobID)
	assert.Equal(t, app.Email, event.Application.Email)
	assert.Equal(t, app.Resume.Filename, event.Application.Resume.Filename)
}

func TestRedisSubmitter_ReportsPublishFailure(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { rdb.Close() })
	mr.Close()

	app, err := validForm().Validate("x1")
	require.NoError(t, err)
	err = detail.NewRedisSubmitter(rdb, "applications").Submit(context.Background(), *app)
	assert.ErrorContains(t, err, "publish applications")
}
