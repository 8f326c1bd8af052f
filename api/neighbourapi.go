// Package api cung cấp facade public để tương tác với engine tìm neighbour
package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/thep200/star-neighbours/cfg"
	githubapi "github.com/thep200/star-neighbours/internal/github_api"
	"github.com/thep200/star-neighbours/internal/model"
	"github.com/thep200/star-neighbours/internal/neighbour"
	"github.com/thep200/star-neighbours/pkg/db"
	"github.com/thep200/star-neighbours/pkg/kafka"
	"github.com/thep200/star-neighbours/pkg/log"
)

// DiscoveryStats chứa thống kê về các lần discover đã phục vụ
type DiscoveryStats struct {
	TotalRequests    int       `json:"totalRequests"`
	DegradedRequests int       `json:"degradedRequests"`
	FailedRequests   int       `json:"failedRequests"`
	LastTarget       string    `json:"lastTarget"`
	LastDuration     string    `json:"lastDuration"`
	LastRunAt        time.Time `json:"lastRunAt"`
	LastError        string    `json:"lastError"`
}

// NeighbourAPI cung cấp các API để tìm neighbour repository
type NeighbourAPI struct {
	config      *cfg.Config
	logger      log.Logger
	mysql       *db.Mysql
	finder      *neighbour.Finder
	userMd      *model.User
	discoveryMd *model.Discovery
	producer    *kafka.Producer
	statsMu     sync.RWMutex
	stats       *DiscoveryStats
}

// NewNeighbourAPI tạo một instance mới của NeighbourAPI
func NewNeighbourAPI() *NeighbourAPI {
	return &NeighbourAPI{
		stats: &DiscoveryStats{},
	}
}

// Initialize khởi tạo các thành phần cần thiết cho engine
func (a *NeighbourAPI) Initialize(ctx context.Context) error {
	var err error

	// Load configuration
	viperLoader, _ := cfg.NewViperLoader()
	loader, _ := cfg.NewLoader(viperLoader)
	a.config, err = loader.Load()
	if err != nil {
		a.logger, _ = log.NewCslLogger()
		a.logger.Error(ctx, "Failed to load configuration: %v", err)
		return err
	}

	// Set up logger
	a.logger, err = log.NewCslLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	// Set up database
	a.mysql, err = db.NewMysql(a.config)
	if err != nil {
		a.logger.Error(ctx, "Failed to connect to database: %v", err)
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Models
	a.userMd, err = model.NewUser(a.config, a.logger, a.mysql)
	if err != nil {
		return fmt.Errorf("failed to create user model: %w", err)
	}
	a.discoveryMd, err = model.NewDiscovery(a.config, a.logger, a.mysql)
	if err != nil {
		return fmt.Errorf("failed to create discovery model: %w", err)
	}

	// Fetcher + engine
	caller, err := githubapi.NewCaller(a.logger, a.config)
	if err != nil {
		return fmt.Errorf("failed to create github api caller: %w", err)
	}
	a.finder, err = neighbour.NewFinder(a.logger, a.config, caller)
	if err != nil {
		return fmt.Errorf("failed to create finder: %w", err)
	}

	// Kafka producer cho discovery event, bỏ qua nếu không cấu hình broker
	if len(a.config.Kafka.Brokers) > 0 {
		a.producer = kafka.NewProducer(a.config, a.logger, a.config.Kafka.Producer.TopicDiscovery)
	}

	// Migrate database tables
	return a.mysql.Migrate(a.userMd, a.discoveryMd)
}

// Discover tìm các neighbour repository của một repository đích
func (a *NeighbourAPI) Discover(ctx context.Context, owner, repo string) (*neighbour.Result, error) {
	target := neighbour.RepoRef{Owner: owner, Name: repo}
	startTime := time.Now()

	result, err := a.finder.Discover(ctx, target)
	duration := time.Since(startTime)

	a.updateStats(func(stats *DiscoveryStats) {
		stats.TotalRequests++
		stats.LastTarget = target.String()
		stats.LastDuration = duration.Round(time.Millisecond).String()
		stats.LastRunAt = time.Now()
		if err != nil {
			stats.FailedRequests++
			stats.LastError = err.Error()
			return
		}
		stats.LastError = ""
		if result.Degraded {
			stats.DegradedRequests++
		}
	})

	if err != nil {
		return nil, err
	}

	// Publish discovery event, lỗi publish không làm hỏng kết quả
	if a.producer != nil {
		msg := model.DiscoveryMessage{
			Owner:          owner,
			Name:           repo,
			NeighbourCount: len(result.Neighbours),
			Degraded:       result.Degraded,
			FailedCount:    len(result.FailedStargazers),
			DurationMs:     duration.Milliseconds(),
		}
		if err := a.producer.Publish(ctx, "discovery", msg); err != nil {
			a.logger.Warn(ctx, "Failed to publish discovery event for %s: %v", target, err)
		}
	}

	return result, nil
}

// Config trả về cấu hình đã load trong Initialize
func (a *NeighbourAPI) Config() *cfg.Config {
	return a.config
}

// VerifyApiKey tra cứu và kiểm tra hạn của một api key
func (a *NeighbourAPI) VerifyApiKey(key string) (*model.User, error) {
	return a.userMd.VerifyKey(key)
}

// Stats trả về bản sao thống kê hiện tại
func (a *NeighbourAPI) Stats() DiscoveryStats {
	a.statsMu.RLock()
	defer a.statsMu.RUnlock()
	return *a.stats
}

// Ping kiểm tra kết nối database
func (a *NeighbourAPI) Ping() error {
	return a.mysql.Ping()
}

// Close giải phóng các tài nguyên đang mở
func (a *NeighbourAPI) Close() error {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			return err
		}
	}
	return a.mysql.Close()
}

func (a *NeighbourAPI) updateStats(update func(*DiscoveryStats)) {
	a.statsMu.Lock()
	defer a.statsMu.Unlock()
	update(a.stats)
}
