// Concurrency controller: fan-out bị chặn bởi semaphore channel,
// mỗi stargazer một fetch, tối đa MaxConcurrentFetches chạy đồng thời.

package neighbour

import (
	"context"
	"sync"
)

// completion là một kết quả fetch hoàn thành, đẩy về điểm aggregation duy nhất
type completion struct {
	stargazer Stargazer
	outcome   FetchOutcome
}

// fanOut dispatch fetch cho từng stargazer khi có slot trống. Khi deadline
// hết, các stargazer chưa dispatch được ghi nhận Failed(deadline) thay vì
// bị bỏ qua trong im lặng. Channel out được đóng khi mọi fetch đã settle.
func (f *Finder) fanOut(ctx context.Context, pager *paginator, stargazers []Stargazer, out chan<- completion) {
	workers := make(chan struct{}, f.maxWorkers())
	var wg sync.WaitGroup

	for i, sg := range stargazers {
		select {
		case <-ctx.Done():
			for _, rest := range stargazers[i:] {
				out <- completion{
					stargazer: rest,
					outcome:   FetchOutcome{Kind: OutcomeFailed, Reason: ReasonDeadline},
				}
			}
			wg.Wait()
			close(out)
			return
		case workers <- struct{}{}:
			wg.Add(1)
			go func(sg Stargazer) {
				defer wg.Done()
				defer func() { <-workers }()
				out <- completion{stargazer: sg, outcome: f.fetchUserStars(ctx, pager, sg)}
			}(sg)
		}
	}

	wg.Wait()
	close(out)
}

func (f *Finder) maxWorkers() int {
	w := f.Config.Neighbour.MaxConcurrentFetches
	if w <= 0 {
		w = 10
	}
	return w
}

// fetchUserStars fetch toàn bộ starred repos của một stargazer.
// Dữ liệu partial của một user không được phép làm hỏng cả aggregation:
// lỗi giữa chừng trở thành Partial với phần đã tích lũy.
func (f *Finder) fetchUserStars(ctx context.Context, pager *paginator, sg Stargazer) FetchOutcome {
	res, err := pager.fetchRelation(ctx, RelationStarred, string(sg))
	if err != nil {
		reason := failureReason(err)
		if len(res.repos) > 0 {
			return FetchOutcome{
				Kind:   OutcomePartial,
				Stars:  UserStarSet{Repos: res.repos, Incomplete: true},
				Reason: reason,
			}
		}
		return FetchOutcome{Kind: OutcomeFailed, Reason: reason}
	}

	if res.truncated {
		return FetchOutcome{
			Kind:   OutcomePartial,
			Stars:  UserStarSet{Repos: res.repos, Incomplete: true},
			Reason: ReasonTruncated,
		}
	}

	return FetchOutcome{Kind: OutcomeComplete, Stars: UserStarSet{Repos: res.repos}}
}
