package job

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"renditionmaker/models"
)

func TestPrepareWorkItem(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	item := models.WorkItem{PayloadPath: "  /content/a.jpg ", UserID: "alice", CallbackURL: "https://hooks.example.com/done"}
	require.NoError(t, PrepareWorkItem(&item, now))
	assert.Equal(t, "/content/a.jpg", item.PayloadPath)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, now, item.SubmittedAt)

	kept := models.WorkItem{ID: "fixed", PayloadPath: "/x", UserID: "u"}
	require.NoError(t, PrepareWorkItem(&kept, now))
	assert.Equal(t, "fixed", kept.ID)
}

func TestPrepareWorkItemRejects(t *testing.T) {
	tests := map[string]models.WorkItem{
		"no payload":        {UserID: "u"},
		"no user":           {PayloadPath: "/x"},
		"relative callback": {PayloadPath: "/x", UserID: "u", CallbackURL: "/done"},
		"ftp callback":      {PayloadPath: "/x", UserID: "u", CallbackURL: "ftp://host/done"},
	}
	for name, item := range tests {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, PrepareWorkItem(&item, time.Now()), ErrInvalidWorkItem)
		})
	}
}
