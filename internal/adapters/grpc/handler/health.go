package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/ogurasousui/hr-records/internal/app"
)

// ヘルスチェックで指定できるサービス名です。空文字列は全ストアを対象とします。
const (
	ServiceOverall    = ""
	ServiceRelational = "relational"
	ServiceReviews    = "reviews"
)

// StoreChecker はストアの疎通確認を提供します。
type StoreChecker interface {
	CheckRelational(ctx context.Context) app.StoreCheck
	CheckReviews(ctx context.Context) app.StoreCheck
}

// HealthHandler は問い合わせのたびにストアへ疎通確認を行う gRPC ヘルスサービスです。
type HealthHandler struct {
	healthpb.UnimplementedHealthServer

	checker StoreChecker
}

// NewHealthHandler は HealthHandler を生成します。
func NewHealthHandler(checker StoreChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// Check は指定サービスの状態を返します。
func (h *HealthHandler) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	var ok bool
	switch req.GetService() {
	case ServiceOverall:
		ok = h.checker.CheckRelational(ctx).Available && h.checker.CheckReviews(ctx).Available
	case ServiceRelational:
		ok = h.checker.CheckRelational(ctx).Available
	case ServiceReviews:
		ok = h.checker.CheckReviews(ctx).Available
	default:
		return nil, status.Errorf(codes.NotFound, "unknown service %q", req.GetService())
	}

	if ok {
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
	}
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
}
