// Finder là facade của engine: một lời gọi Discover cho một repository đích.
// Luồng xử lý: lấy toàn bộ stargazer của repo đích -> fan-out fetch starred
// repos của từng stargazer -> fold vào reverse index -> rank thành kết quả.

package neighbour

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/thep200/star-neighbours/cfg"
	"github.com/thep200/star-neighbours/pkg/log"
)

// Các lỗi terminal của một lần discover
var (
	ErrTargetNotFound           = errors.New("target repository not found")
	ErrUpstreamUnauthorized     = errors.New("upstream credential rejected, check access token")
	ErrStargazerListUnavailable = errors.New("stargazer list of target repository unavailable")
)

type Finder struct {
	Logger  log.Logger
	Config  *cfg.Config
	Fetcher Fetcher
}

func NewFinder(logger log.Logger, config *cfg.Config, fetcher Fetcher) (*Finder, error) {
	if fetcher == nil {
		return nil, errors.New("finder requires a fetcher")
	}
	return &Finder{
		Logger:  logger,
		Config:  config,
		Fetcher: fetcher,
	}, nil
}

// Discover trả về danh sách neighbour đã xếp hạng của repository đích.
// Kết quả degraded là một đường thành công, không phải lỗi: engine hứa
// "best-effort có đánh dấu rõ ràng" thay vì "được ăn cả ngã về không".
func (f *Finder) Discover(ctx context.Context, target RepoRef) (*Result, error) {
	startTime := time.Now()

	// Deadline của caller được ưu tiên, nếu không có thì áp deadline cấu hình
	if _, ok := ctx.Deadline(); !ok && f.Config.Neighbour.RequestDeadlineSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(f.Config.Neighbour.RequestDeadlineSec)*time.Second)
		defer cancel()
	}

	pager := f.newPaginator()

	// Bước 1: danh sách stargazer của repo đích là nền tảng,
	// không lấy được thì fail cả request
	listRes, err := pager.fetchRelation(ctx, RelationStargazers, target.String())
	if err != nil {
		return nil, f.stargazerListError(ctx, target, err)
	}

	stargazers := dedupeStargazers(listRes.stargazers)
	f.Logger.Info(ctx, "Repo %s có %d stargazer, bắt đầu fan-out với %d worker",
		target, len(stargazers), f.maxWorkers())

	if len(stargazers) == 0 {
		return &Result{
			Neighbours:       []NeighbourEdge{},
			Degraded:         listRes.truncated,
			FailedStargazers: []Stargazer{},
		}, nil
	}

	// Bước 2 + 3: fan-out và fold. Goroutine hiện tại là chủ sở hữu duy nhất
	// của reverse index, đọc từ completion channel.
	out := make(chan completion)
	go f.fanOut(ctx, pager, stargazers, out)

	agg := newAggregator(target)
	for c := range out {
		agg.fold(c.stargazer, c.outcome)
	}

	result := agg.assemble()
	if listRes.truncated {
		// Danh sách stargazer bị cắt bởi page cap: kết quả chắc chắn undercount
		result.Degraded = true
	}

	f.Logger.Info(ctx, "Discover %s xong sau %v: %d neighbour, degraded=%v, %d stargazer lỗi",
		target, time.Since(startTime).Round(time.Millisecond),
		len(result.Neighbours), result.Degraded, len(result.FailedStargazers))

	return result, nil
}

func (f *Finder) newPaginator() *paginator {
	nb := f.Config.Neighbour
	return newPaginator(
		f.Logger,
		f.Fetcher,
		nb.MaxPagesPerRelation,
		nb.RetryMaxAttempts,
		time.Duration(nb.RetryBaseDelayMs)*time.Millisecond,
		time.Duration(nb.RetryMaxDelayMs)*time.Millisecond,
	)
}

// stargazerListError map lỗi fetch danh sách stargazer thành lỗi terminal
func (f *Finder) stargazerListError(ctx context.Context, target RepoRef, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fmt.Errorf("%w: %s", ErrTargetNotFound, target)
	case errors.Is(err, ErrUnauthorized):
		return ErrUpstreamUnauthorized
	default:
		f.Logger.Error(ctx, "Không lấy được danh sách stargazer của %s: %v", target, err)
		return fmt.Errorf("%w: %v", ErrStargazerListUnavailable, err)
	}
}

// dedupeStargazers loại trùng lặp, giữ nguyên thứ tự xuất hiện đầu tiên
func dedupeStargazers(in []Stargazer) []Stargazer {
	seen := make(map[Stargazer]struct{}, len(in))
	out := make([]Stargazer, 0, len(in))
	for _, sg := range in {
		if _, ok := seen[sg]; ok {
			continue
		}
		seen[sg] = struct{}{}
		out = append(out, sg)
	}
	return out
}
