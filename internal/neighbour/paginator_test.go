package neighbour

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thep200/star-neighbours/pkg/log"
)

func newTestPaginator(fetcher Fetcher, maxPages, maxAttempts int) *paginator {
	logger, _ := log.NewCslLogger()
	return newPaginator(logger, fetcher, maxPages, maxAttempts, time.Millisecond, 5*time.Millisecond)
}

func TestFetchRelationAccumulatesAllPages(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.perPage = 2
	fetcher.starred["u1"] = []RepoRef{
		{Owner: "a", Name: "r1"},
		{Owner: "a", Name: "r2"},
		{Owner: "a", Name: "r3"},
		{Owner: "a", Name: "r4"},
		{Owner: "a", Name: "r5"},
	}

	pager := newTestPaginator(fetcher, 10, 3)
	result, err := pager.fetchRelation(context.Background(), RelationStarred, "u1")

	require.NoError(t, err)
	assert.Len(t, result.repos, 5)
	assert.False(t, result.truncated)
}

func TestFetchRelationPageCapTruncates(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.perPage = 2
	fetcher.starred["u1"] = []RepoRef{
		{Owner: "a", Name: "r1"},
		{Owner: "a", Name: "r2"},
		{Owner: "a", Name: "r3"},
		{Owner: "a", Name: "r4"},
		{Owner: "a", Name: "r5"},
	}

	pager := newTestPaginator(fetcher, 2, 3)
	result, err := pager.fetchRelation(context.Background(), RelationStarred, "u1")

	require.NoError(t, err)
	assert.Len(t, result.repos, 4)
	assert.True(t, result.truncated)
}

func TestFetchRelationRetriesTransientThenSucceeds(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.starred["u1"] = []RepoRef{{Owner: "a", Name: "r1"}}
	fetcher.failTimes["u1"] = 2 // lỗi 2 lần, budget là 3

	pager := newTestPaginator(fetcher, 10, 3)
	result, err := pager.fetchRelation(context.Background(), RelationStarred, "u1")

	require.NoError(t, err)
	assert.Len(t, result.repos, 1)
}

func TestFetchRelationRetryBudgetExhausted(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.starred["u1"] = []RepoRef{{Owner: "a", Name: "r1"}}
	fetcher.failTimes["u1"] = 3 // bằng budget, không bao giờ thành công

	pager := newTestPaginator(fetcher, 10, 3)
	done := make(chan struct{})
	var result *relationResult
	var err error
	go func() {
		result, err = pager.fetchRelation(context.Background(), RelationStarred, "u1")
		close(done)
	}()

	// Hết budget phải trả về lỗi, không treo vô hạn
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("fetchRelation did not return after retry budget exhausted")
	}
	require.Error(t, err)
	var tr *TransientError
	assert.ErrorAs(t, err, &tr)
	assert.Empty(t, result.repos)
}

func TestFetchRelationNonRetryableFailsFast(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.failAlways["u1"] = ErrNotFound

	pager := newTestPaginator(fetcher, 10, 5)
	_, err := pager.fetchRelation(context.Background(), RelationStarred, "u1")

	assert.ErrorIs(t, err, ErrNotFound)
	// Lỗi không retry được chỉ tốn đúng một lần gọi
	assert.Equal(t, int32(1), fetcher.totalCalls)
}

func TestBackoffDelayRespectsRetryAfterFloor(t *testing.T) {
	pager := newTestPaginator(newFakeFetcher(), 10, 3)

	retryAfter := 50 * time.Millisecond
	delay := pager.backoffDelay(1, retryAfter)
	assert.GreaterOrEqual(t, delay, retryAfter)
}

func TestBackoffDelayBoundedByMaxDelay(t *testing.T) {
	logger, _ := log.NewCslLogger()
	pager := newPaginator(logger, newFakeFetcher(), 10, 10, 10*time.Millisecond, 40*time.Millisecond)

	for attempt := 1; attempt <= 10; attempt++ {
		delay := pager.backoffDelay(attempt, 0)
		assert.LessOrEqual(t, delay, 40*time.Millisecond)
		assert.Positive(t, delay)
	}
}

func TestFailureReasonMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		reason string
	}{
		{"deadline", context.DeadlineExceeded, ReasonDeadline},
		{"wrapped deadline", &TransientError{Cause: context.DeadlineExceeded}, ReasonDeadline},
		{"not found", ErrNotFound, ReasonNotFound},
		{"rate limited", &RateLimitError{RetryAfter: time.Second}, ReasonRateLimited},
		{"transient", &TransientError{Cause: errors.New("boom")}, ReasonTransient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.reason, failureReason(tt.err))
		})
	}
}
