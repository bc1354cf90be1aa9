package mongodb

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/ogurasousui/hr-records/internal/core/apperr"
	"github.com/ogurasousui/hr-records/internal/core/review"
)

func newTestRepository(mt *mtest.T) *ReviewRepository {
	return NewReviewRepository(mt.Coll, time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func namespace(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func TestReviewRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create assigns object id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		created, err := newTestRepository(mt).Create(context.Background(), &review.Review{
			EmployeeID:    1,
			ReviewDate:    time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			ReviewerName:  "Grace",
			OverallRating: 4,
		})
		require.NoError(mt, err)
		assert.Len(mt, created.ID, 24)
		assert.Equal(mt, int64(1), created.EmployeeID)
	})

	mt.Run("list by employee sorts by date desc", func(mt *mtest.T) {
		first := mtest.CreateCursorResponse(1, namespace(mt), mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "a"},
				{Key: "employee_id", Value: int64(1)},
				{Key: "review_date", Value: "2024-06-01"},
				{Key: "reviewer_name", Value: "Grace"},
				{Key: "overall_rating", Value: 3.0},
			},
			bson.D{
				{Key: "_id", Value: "b"},
				{Key: "employee_id", Value: "1"},
				{Key: "review_date", Value: "2025-06-01"},
				{Key: "reviewer_name", Value: "Alan"},
				{Key: "overall_rating", Value: "5"},
			},
		)
		end := mtest.CreateCursorResponse(0, namespace(mt), mtest.NextBatch)
		mt.AddMockResponses(first, end)

		reviews, err := newTestRepository(mt).ListByEmployee(context.Background(), 1)
		require.NoError(mt, err)
		require.Len(mt, reviews, 2)
		assert.Equal(mt, "b", reviews[0].ID)
		assert.Equal(mt, 5.0, reviews[0].OverallRating)
		assert.Equal(mt, "a", reviews[1].ID)
	})

	mt.Run("list all skips malformed documents", func(mt *mtest.T) {
		first := mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "ok"},
				{Key: "employee_id", Value: int32(2)},
				{Key: "review_date", Value: "2025-01-01"},
				{Key: "overall_rating", Value: 4.0},
			},
			bson.D{
				{Key: "_id", Value: "broken"},
				{Key: "review_date", Value: "2025-01-01"},
			},
		)
		mt.AddMockResponses(first)

		reviews, err := newTestRepository(mt).ListAll(context.Background())
		require.NoError(mt, err)
		require.Len(mt, reviews, 1)
		assert.Equal(mt, "ok", reviews[0].ID)
	})

	mt.Run("delete by employee reports count", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(2)}))

		n, err := newTestRepository(mt).DeleteByEmployee(context.Background(), 1)
		require.NoError(mt, err)
		assert.Equal(mt, 2, n)
	})

	mt.Run("command failure is not unavailable", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad value",
		}))

		_, err := newTestRepository(mt).DeleteByEmployee(context.Background(), 1)
		require.Error(mt, err)
		assert.False(mt, errors.Is(err, apperr.ErrStoreUnavailable))
	})
}

func TestTranslateMongoError(t *testing.T) {
	t.Parallel()

	assert.NoError(t, translateMongoError("find", nil))

	err := translateMongoError("find", context.DeadlineExceeded)
	assert.ErrorIs(t, err, review.ErrUnavailable)
	assert.ErrorIs(t, err, apperr.ErrStoreUnavailable)
	assert.True(t, apperr.Retryable(err))

	err = translateMongoError("insert", mongo.ErrClientDisconnected)
	assert.ErrorIs(t, err, apperr.ErrStoreUnavailable)

	plain := errors.New("duplicate")
	err = translateMongoError("insert", plain)
	assert.ErrorIs(t, err, plain)
	assert.NotErrorIs(t, err, apperr.ErrStoreUnavailable)
}
