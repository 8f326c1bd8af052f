package neighbour

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Relation là một trong hai collection phân trang mà engine tiêu thụ
type Relation int

const (
	// RelationStargazers: danh sách stargazer của một repository,
	// subject có dạng "owner/name"
	RelationStargazers Relation = iota
	// RelationStarred: danh sách repository mà một user đã star,
	// subject là username
	RelationStarred
)

func (r Relation) String() string {
	switch r {
	case RelationStargazers:
		return "stargazers"
	case RelationStarred:
		return "starred"
	default:
		return "unknown"
	}
}

// Page là một trang kết quả từ upstream. NextCursor rỗng nghĩa là hết dữ liệu.
// Stargazers được dùng cho RelationStargazers, Repos cho RelationStarred.
type Page struct {
	Stargazers []Stargazer
	Repos      []RepoRef
	NextCursor string
}

// Fetcher là capability duy nhất engine dùng để nói chuyện với upstream.
// Cursor là chuỗi opaque, rỗng ở lần gọi đầu tiên.
type Fetcher interface {
	FetchPage(ctx context.Context, relation Relation, subject string, cursor string) (*Page, error)
}

// Lỗi không retry được từ upstream
var (
	ErrNotFound     = errors.New("subject not found upstream")
	ErrUnauthorized = errors.New("upstream credential rejected")
)

// RateLimitError báo hiệu upstream đang throttle. RetryAfter là sàn
// thời gian chờ trước lần thử tiếp theo.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("upstream rate limited, retry after %v", e.RetryAfter)
}

// TransientError bao các lỗi mạng/5xx có thể retry
type TransientError struct {
	Cause error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient upstream error: %v", e.Cause)
}

func (e *TransientError) Unwrap() error {
	return e.Cause
}

// isRetryable: chỉ rate-limit và lỗi transient được retry với backoff
func isRetryable(err error) bool {
	var rl *RateLimitError
	var tr *TransientError
	return errors.As(err, &rl) || errors.As(err, &tr)
}

// failureReason chuẩn hóa một lỗi fetch thành reason ghi vào tracker
func failureReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ReasonDeadline
	case errors.Is(err, ErrNotFound):
		return ReasonNotFound
	default:
	}
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return ReasonRateLimited
	}
	return ReasonTransient
}
