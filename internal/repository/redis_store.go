package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fairwaylabs/swinglab/pkg/models"
)

// RedisReportCache implements ReportCache on Redis.
type RedisReportCache struct {
	client *redis.Client
}

// NewRedisReportCache creates a cache over an existing client.
func NewRedisReportCache(client *redis.Client) *RedisReportCache {
	return &RedisReportCache{client: client}
}

func reportKey(analysisID string) string {
	return fmt.Sprintf("report:%s", analysisID)
}

func (r *RedisReportCache) SetReport(ctx context.Context, report *models.SwingAnalysisReport, ttl time.Duration) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	return r.client.Set(ctx, reportKey(report.AnalysisID), data, ttl).Err()
}

func (r *RedisReportCache) GetReport(ctx context.Context, analysisID string) (*models.SwingAnalysisReport, error) {
	data, err := r.client.Get(ctx, reportKey(analysisID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, models.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var report models.SwingAnalysisReport
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &report, nil
}

func (r *RedisReportCache) DeleteReport(ctx context.Context, analysisID string) error {
	// DEL of a missing key succeeds with count 0; callers need to know
	// whether anything was actually removed.
	deleted, err := r.client.Del(ctx, reportKey(analysisID)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	if deleted == 0 {
		return models.ErrReportNotFound
	}
	return nil
}

func (r *RedisReportCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
