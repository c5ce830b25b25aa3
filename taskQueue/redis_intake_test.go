package taskqueue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"renditionmaker/models"
)

// fakePopper replays canned BRPOP replies and cancels the intake when they run out.
type fakePopper struct {
	replies []*redis.StringSliceCmd
	cancel  context.CancelFunc
	keys    []string
}

func (f *fakePopper) BRPop(ctx context.Context, _ time.Duration, keys ...string) *redis.StringSliceCmd {
	f.keys = keys
	if len(f.replies) == 0 {
		f.cancel()
		return redis.NewStringSliceResult(nil, context.Canceled)
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r
}

func TestRedisIntakeSubmitsDecodedItems(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fake := &fakePopper{cancel: cancel, replies: []*redis.StringSliceCmd{
		redis.NewStringSliceResult(nil, redis.Nil),
		redis.NewStringSliceResult([]string{"q", `{"payload":"/content/a.jpg","process_args":"dimensions:10:10","user_id":"bob"}`}, nil),
		redis.NewStringSliceResult([]string{"q", `{"payload":""}`}, nil),
		redis.NewStringSliceResult([]string{"q", `garbage`}, nil),
		redis.NewStringSliceResult([]string{"q", `{"payload":"/content/b.png"}`}, nil),
	}}
	intake := &RedisIntake{client: fake, queue: "q"}

	var got []models.WorkItem
	done := make(chan struct{})
	go func() {
		intake.Run(ctx, func(item models.WorkItem) error {
			got = append(got, item)
			return errors.New("ignored")
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("intake did not stop")
	}

	require.Len(t, got, 2)
	assert.Equal(t, "/content/a.jpg", got[0].PayloadPath)
	assert.Equal(t, "bob", got[0].UserID)
	assert.Equal(t, "/content/b.png", got[1].PayloadPath)
	assert.Equal(t, []string{"q"}, fake.keys)
}

func TestDecodeWorkItemRequiresPayload(t *testing.T) {
	_, err := decodeWorkItem(`{"process_args":"dimensions:1:1"}`)
	assert.Error(t, err)
}
