package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"

	"github.com/ogurasousui/hr-records/internal/core/review"
)

// ReviewRepository は MongoDB を利用した評価ドキュメント永続化の実装です。
type ReviewRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
	logger  *slog.Logger
}

// NewReviewRepository は ReviewRepository を生成します。timeout は操作ごとの待ち時間の上限です。
func NewReviewRepository(coll *mongo.Collection, timeout time.Duration, logger *slog.Logger) *ReviewRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewRepository{coll: coll, timeout: timeout, logger: logger}
}

// Create は評価を保存し、採番された ID を設定して返します。
func (r *ReviewRepository) Create(ctx context.Context, rv *review.Review) (*review.Review, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, toDocument(rv))
	if err != nil {
		return nil, translateMongoError("insert", err)
	}

	created := *rv
	created.ID = decodeID(res.InsertedID)
	return &created, nil
}

// ListByEmployee は社員の評価を評価日の降順で返します。
func (r *ReviewRepository) ListByEmployee(ctx context.Context, employeeID int64) ([]*review.Review, error) {
	reviews, err := r.find(ctx, employeeFilter(employeeID))
	if err != nil {
		return nil, err
	}
	review.SortByDateDesc(reviews)
	return reviews, nil
}

// ListAll はすべての評価を返します。
func (r *ReviewRepository) ListAll(ctx context.Context) ([]*review.Review, error) {
	return r.find(ctx, bson.M{})
}

// Count は評価の総数を返します。
func (r *ReviewRepository) Count(ctx context.Context) (int, error) {
	return r.count(ctx, bson.M{})
}

// CountByEmployee は社員の評価数を返します。
func (r *ReviewRepository) CountByEmployee(ctx context.Context, employeeID int64) (int, error) {
	return r.count(ctx, employeeFilter(employeeID))
}

// DeleteByEmployee は社員の評価をすべて削除します。
func (r *ReviewRepository) DeleteByEmployee(ctx context.Context, employeeID int64) (int, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.coll.DeleteMany(ctx, employeeFilter(employeeID))
	if err != nil {
		return 0, translateMongoError("delete", err)
	}
	return int(res.DeletedCount), nil
}

// Ping はドキュメントストアへの疎通を確認します。
func (r *ReviewRepository) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.coll.Database().Client().Ping(ctx, readpref.Primary()); err != nil {
		return translateMongoError("ping", err)
	}
	return nil
}

func (r *ReviewRepository) find(ctx context.Context, filter bson.M) ([]*review.Review, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, translateMongoError("find", err)
	}
	defer cursor.Close(ctx)

	reviews := make([]*review.Review, 0)
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, translateMongoError("decode", err)
		}

		rv, dropped, err := decodeReview(doc)
		if err != nil {
			r.logger.WarnContext(ctx, "skipping malformed review document", slog.Any("error", err))
			continue
		}
		if len(dropped) > 0 {
			r.logger.WarnContext(ctx, "dropping unknown review fields",
				slog.String("review_id", rv.ID),
				slog.Any("fields", dropped),
			)
		}
		reviews = append(reviews, rv)
	}
	if err := cursor.Err(); err != nil {
		return nil, translateMongoError("find", err)
	}

	return reviews, nil
}

func (r *ReviewRepository) count(ctx context.Context, filter bson.M) (int, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, translateMongoError("count", err)
	}
	return int(n), nil
}

func (r *ReviewRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func translateMongoError(op string, err error) error {
	if err == nil {
		return nil
	}
	if isUnavailable(err) {
		return fmt.Errorf("mongodb: %s: %w: %w", op, review.ErrUnavailable, err)
	}
	return fmt.Errorf("mongodb: %s: %w", op, err)
}

func isUnavailable(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, mongo.ErrClientDisconnected) ||
		mongo.IsTimeout(err) ||
		mongo.IsNetworkError(err) ||
		isServerSelectionError(err)
}

func isServerSelectionError(err error) bool {
	var selectionErr topology.ServerSelectionError
	return errors.As(err, &selectionErr)
}
