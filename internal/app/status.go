package app

import (
	"context"
	"log/slog"
)

// StoreCheck は一つのストアの疎通結果です。
type StoreCheck struct {
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}

// StoreStatus はストアごとの接続状態です。
type StoreStatus struct {
	RelationalDriver string     `json:"relational_driver,omitempty"`
	Relational       StoreCheck `json:"relational"`
	Reviews          StoreCheck `json:"reviews"`
	ReviewsDegraded  bool       `json:"reviews_degraded"`
}

// Healthy は両ストアが永続ストアとして利用可能かを返します。縮退運転中は false です。
func (s StoreStatus) Healthy() bool {
	return s.Relational.Available && s.Reviews.Available && !s.ReviewsDegraded
}

// StoreStatus は各ストアへ疎通確認を行います。
func (a *App) StoreStatus(ctx context.Context) StoreStatus {
	status := StoreStatus{
		RelationalDriver: a.driver,
		Relational:       a.CheckRelational(ctx),
		Reviews:          a.CheckReviews(ctx),
		ReviewsDegraded:  a.stores.ReviewsDegraded,
	}
	if !status.Healthy() {
		a.logger.WarnContext(ctx, "store check failed",
			slog.String("relational_error", status.Relational.Error),
			slog.String("reviews_error", status.Reviews.Error),
		)
	}
	return status
}

// CheckRelational はリレーショナルストアの疎通を確認します。
func (a *App) CheckRelational(ctx context.Context) StoreCheck {
	if a.stores.RelationalPing == nil {
		return StoreCheck{Available: true}
	}
	return checkResult(a.stores.RelationalPing(ctx))
}

// CheckReviews はドキュメントストアの疎通を確認します。インメモリで代替中は利用不可として扱います。
func (a *App) CheckReviews(ctx context.Context) StoreCheck {
	if a.stores.Reviews == nil {
		return StoreCheck{Error: "review store not configured"}
	}
	if a.stores.ReviewsDegraded {
		return StoreCheck{Error: "review store degraded to in-memory fallback"}
	}
	return checkResult(a.stores.Reviews.Ping(ctx))
}

func checkResult(err error) StoreCheck {
	if err != nil {
		return StoreCheck{Error: err.Error()}
	}
	return StoreCheck{Available: true}
}
