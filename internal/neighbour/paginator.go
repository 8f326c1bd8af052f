// Pagination driver: chạy Fetcher qua tất cả các trang của một relation
// cho đến khi hết dữ liệu hoặc chạm page cap. Chính sách retry với backoff
// được tập trung tại đây để mọi relation fetch được xử lý giống nhau.

package neighbour

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/thep200/star-neighbours/pkg/log"
)

type paginator struct {
	logger      log.Logger
	fetcher     Fetcher
	maxPages    int
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

// relationResult là kết quả tích lũy của một relation fetch.
// Khi có lỗi, caller vẫn nhận được phần đã tích lũy trước đó.
type relationResult struct {
	stargazers []Stargazer
	repos      []RepoRef
	truncated  bool
}

func newPaginator(logger log.Logger, fetcher Fetcher, maxPages, maxAttempts int, baseDelay, maxDelay time.Duration) *paginator {
	if maxPages <= 0 {
		maxPages = 10
	}
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	if maxDelay < baseDelay {
		maxDelay = baseDelay
	}
	return &paginator{
		logger:      logger,
		fetcher:     fetcher,
		maxPages:    maxPages,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		maxDelay:    maxDelay,
	}
}

// fetchRelation tích lũy entity qua các trang theo thứ tự cursor.
// Trả về kết quả tích lũy cùng lỗi terminal nếu một trang không fetch được
// sau khi đã hết ngân sách retry.
func (p *paginator) fetchRelation(ctx context.Context, relation Relation, subject string) (*relationResult, error) {
	result := &relationResult{}
	cursor := ""

	for pageNum := 1; ; pageNum++ {
		if pageNum > p.maxPages {
			// Chạm page cap trong khi upstream vẫn còn dữ liệu
			result.truncated = true
			p.logger.Warn(ctx, "Relation %s của %s bị cắt tại page cap %d", relation, subject, p.maxPages)
			return result, nil
		}

		page, err := p.fetchPageWithRetry(ctx, relation, subject, cursor)
		if err != nil {
			return result, err
		}

		result.stargazers = append(result.stargazers, page.Stargazers...)
		result.repos = append(result.repos, page.Repos...)

		if page.NextCursor == "" {
			return result, nil
		}
		cursor = page.NextCursor
	}
}

// fetchPageWithRetry thử lại cùng một trang với exponential backoff.
// RetryAfter từ upstream được dùng làm sàn cho thời gian chờ.
func (p *paginator) fetchPageWithRetry(ctx context.Context, relation Relation, subject string, cursor string) (*Page, error) {
	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		page, err := p.fetcher.FetchPage(ctx, relation, subject, cursor)
		if err == nil {
			return page, nil
		}
		lastErr = err

		if !isRetryable(err) || errors.Is(ctx.Err(), context.Canceled) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, err
		}
		if attempt == p.maxAttempts {
			break
		}

		delay := p.backoffDelay(attempt, retryAfterHint(err))
		p.logger.Warn(ctx, "Fetch %s của %s lỗi (lần %d/%d), chờ %v: %v",
			relation, subject, attempt, p.maxAttempts, delay.Round(time.Millisecond), err)
		if err := sleepCtx(ctx, delay); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// backoffDelay: base * 2^(attempt-1) với jitter ±50%, chặn trên bởi maxDelay,
// chặn dưới bởi retryAfter nếu upstream có gợi ý
func (p *paginator) backoffDelay(attempt int, retryAfter time.Duration) time.Duration {
	delay := p.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= p.maxDelay {
			delay = p.maxDelay
			break
		}
	}

	// jitter trong khoảng [delay/2, delay*3/2)
	delay = delay/2 + time.Duration(rand.Int63n(int64(delay)))
	if delay > p.maxDelay {
		delay = p.maxDelay
	}
	if retryAfter > delay {
		delay = retryAfter
	}
	return delay
}

func retryAfterHint(err error) time.Duration {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl.RetryAfter
	}
	return 0
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
