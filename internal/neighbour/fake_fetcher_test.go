package neighbour

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// fakeFetcher mô phỏng upstream bằng dữ liệu tĩnh trong bộ nhớ,
// hỗ trợ phân trang, lỗi theo kịch bản và đo đếm số fetch đồng thời
type fakeFetcher struct {
	mu         sync.Mutex
	stargazers map[string][]Stargazer
	starred    map[string][]RepoRef
	perPage    int

	// failAlways: subject luôn lỗi với error cho trước
	failAlways map[string]error
	// failTimes: subject lỗi transient N lần đầu rồi thành công
	failTimes map[string]int
	// starredDelay: độ trễ cho mỗi lần fetch relation starred
	starredDelay time.Duration

	starredInFlight    int32
	maxStarredInFlight int32
	totalCalls         int32
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		stargazers: make(map[string][]Stargazer),
		starred:    make(map[string][]RepoRef),
		perPage:    100,
		failAlways: make(map[string]error),
		failTimes:  make(map[string]int),
	}
}

func (f *fakeFetcher) FetchPage(ctx context.Context, relation Relation, subject string, cursor string) (*Page, error) {
	atomic.AddInt32(&f.totalCalls, 1)

	if relation == RelationStarred {
		cur := atomic.AddInt32(&f.starredInFlight, 1)
		defer atomic.AddInt32(&f.starredInFlight, -1)
		for {
			max := atomic.LoadInt32(&f.maxStarredInFlight)
			if cur <= max || atomic.CompareAndSwapInt32(&f.maxStarredInFlight, max, cur) {
				break
			}
		}
		if f.starredDelay > 0 {
			timer := time.NewTimer(f.starredDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, &TransientError{Cause: ctx.Err()}
			case <-timer.C:
			}
		}
	}

	f.mu.Lock()
	if n := f.failTimes[subject]; n > 0 {
		f.failTimes[subject] = n - 1
		f.mu.Unlock()
		return nil, &TransientError{Cause: errors.New("simulated transient failure")}
	}
	err := f.failAlways[subject]
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var page *Page
	switch relation {
	case RelationStargazers:
		entities, ok := f.stargazers[subject]
		if !ok {
			return nil, ErrNotFound
		}
		from, to, next := f.window(cursor, len(entities))
		page = &Page{Stargazers: entities[from:to], NextCursor: next}
	case RelationStarred:
		entities, ok := f.starred[subject]
		if !ok {
			return nil, ErrNotFound
		}
		from, to, next := f.window(cursor, len(entities))
		page = &Page{Repos: entities[from:to], NextCursor: next}
	}
	return page, nil
}

func (f *fakeFetcher) window(cursor string, total int) (from, to int, next string) {
	pageNum := 1
	if cursor != "" {
		pageNum, _ = strconv.Atoi(cursor)
	}
	from = (pageNum - 1) * f.perPage
	if from > total {
		from = total
	}
	to = from + f.perPage
	if to >= total {
		return from, total, ""
	}
	return from, to, strconv.Itoa(pageNum + 1)
}
