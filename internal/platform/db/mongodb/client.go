package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/ogurasousui/hr-records/internal/platform/config"
)

const connectTimeout = 10 * time.Second

// Connect は MongoDB クライアントを生成し疎通確認を行います。
func Connect(ctx context.Context, cfg config.DocumentsConfig) (*mongo.Client, error) {
	if strings.TrimSpace(cfg.URI) == "" {
		return nil, errors.New("mongodb: uri is required")
	}

	// URI に指定されたタイムアウトは既定値より優先されます。
	opts := options.Client().
		SetConnectTimeout(connectTimeout).
		SetServerSelectionTimeout(connectTimeout).
		SetSocketTimeout(connectTimeout).
		ApplyURI(cfg.URI)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb: ping: %w", err)
	}

	return client, nil
}

// Collection は設定された評価コレクションを返します。
func Collection(client *mongo.Client, cfg config.DocumentsConfig) *mongo.Collection {
	return client.Database(cfg.Database).Collection(cfg.Collection)
}

// IndexModels は評価コレクションに必要なインデックス定義を返します。
func IndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "employee_id", Value: 1}},
			Options: options.Index().SetName("employee_id_1"),
		},
		{
			Keys:    bson.D{{Key: "review_date", Value: -1}},
			Options: options.Index().SetName("review_date_-1"),
		},
	}
}

// EnsureIndexes は評価コレクションのインデックスを作成します。既存のインデックスはそのまま残ります。
func EnsureIndexes(ctx context.Context, coll *mongo.Collection) error {
	if _, err := coll.Indexes().CreateMany(ctx, IndexModels()); err != nil {
		return fmt.Errorf("mongodb: create indexes: %w", err)
	}
	return nil
}

// Disconnect は timeout 以内にクライアントを切断します。
func Disconnect(client *mongo.Client, timeout time.Duration) error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return client.Disconnect(ctx)
}
