package profiles

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salin-system/internal/database/models"
)

func quietService() *Service {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewService(nil, log)
}

func TestUpsertRejectsMissingUserID(t *testing.T) {
	err := quietService().Upsert(context.Background(), models.UserProfile{})
	assert.Error(t, err)
}

// A background write that fails still surfaces its error to an awaiting caller.
func TestUpsertAsyncReportsFailure(t *testing.T) {
	task := quietService().UpsertAsync(context.Background(), models.UserProfile{})

	select {
	case err := <-task.Done():
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("task never completed")
	}
}

func TestTaskErrAwaitsCompletion(t *testing.T) {
	task := quietService().UpsertAsync(context.Background(), models.UserProfile{})
	require.Error(t, task.Err())
}
