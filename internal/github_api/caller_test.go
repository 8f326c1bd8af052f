package githubapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thep200/star-neighbours/cfg"
	"github.com/thep200/star-neighbours/internal/neighbour"
	"github.com/thep200/star-neighbours/pkg/log"
)

func newTestCaller(t *testing.T, serverUrl string) *Caller {
	t.Helper()
	loader, _ := cfg.NewMockLoader()
	config, err := loader.Load()
	require.NoError(t, err)

	config.GithubApi.StargazersApiUrl = serverUrl + "/repos/{user}/{repo}/stargazers"
	config.GithubApi.StarredApiUrl = serverUrl + "/users/{user}/starred"
	config.GithubApi.AccessToken = "test-token"
	config.GithubApi.PerPage = 2
	config.GithubApi.RequestsPerSecond = 1000
	config.GithubApi.ThrottleDelay = 1

	logger, _ := log.NewCslLogger()
	caller, err := NewCaller(logger, config)
	require.NoError(t, err)
	return caller
}

func TestFetchPageStargazers(t *testing.T) {
	var gotAuth, gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Link", fmt.Sprintf(`<%s/repos/acme/widget/stargazers?per_page=2&page=2>; rel="next"`, "http://"+r.Host))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"login":"u1","id":1},{"login":"u2","id":2}]`)
	}))
	defer server.Close()

	caller := newTestCaller(t, server.URL)
	page, err := caller.FetchPage(context.Background(), neighbour.RelationStargazers, "acme/widget", "")

	require.NoError(t, err)
	assert.Equal(t, "token test-token", gotAuth)
	assert.Equal(t, "/repos/acme/widget/stargazers", gotPath)
	assert.Equal(t, "per_page=2&page=1", gotQuery)
	assert.Equal(t, []neighbour.Stargazer{"u1", "u2"}, page.Stargazers)
	assert.Equal(t, "2", page.NextCursor)
}

func TestFetchPageStarredLastPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/u1/starred", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("page"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"id":7,"name":"widget","full_name":"acme/widget","owner":{"login":"acme","id":3}}]`)
	}))
	defer server.Close()

	caller := newTestCaller(t, server.URL)
	page, err := caller.FetchPage(context.Background(), neighbour.RelationStarred, "u1", "3")

	require.NoError(t, err)
	assert.Equal(t, []neighbour.RepoRef{{Owner: "acme", Name: "widget"}}, page.Repos)
	// Không có header Link nghĩa là đã hết dữ liệu
	assert.Equal(t, "", page.NextCursor)
}

func TestFetchPageStatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		headers map[string]string
		check   func(t *testing.T, err error)
	}{
		{
			name:   "not found",
			status: http.StatusNotFound,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, neighbour.ErrNotFound)
			},
		},
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, neighbour.ErrUnauthorized)
			},
		},
		{
			name:    "rate limited with retry after",
			status:  http.StatusForbidden,
			headers: map[string]string{"Retry-After": "30", "X-RateLimit-Remaining": "0"},
			check: func(t *testing.T, err error) {
				var rl *neighbour.RateLimitError
				require.ErrorAs(t, err, &rl)
				assert.Equal(t, float64(30), rl.RetryAfter.Seconds())
			},
		},
		{
			name:    "secondary rate limit",
			status:  http.StatusTooManyRequests,
			headers: map[string]string{"Retry-After": "5"},
			check: func(t *testing.T, err error) {
				var rl *neighbour.RateLimitError
				assert.ErrorAs(t, err, &rl)
			},
		},
		{
			name:   "forbidden without rate limit info",
			status: http.StatusForbidden,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, neighbour.ErrUnauthorized)
			},
		},
		{
			name:   "server error",
			status: http.StatusBadGateway,
			check: func(t *testing.T, err error) {
				var tr *neighbour.TransientError
				assert.ErrorAs(t, err, &tr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.headers {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			caller := newTestCaller(t, server.URL)
			_, err := caller.FetchPage(context.Background(), neighbour.RelationStargazers, "acme/widget", "")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestFetchPageInvalidSubjectAndCursor(t *testing.T) {
	caller := newTestCaller(t, "http://127.0.0.1:0")

	_, err := caller.FetchPage(context.Background(), neighbour.RelationStargazers, "no-slash", "")
	assert.Error(t, err)

	_, err = caller.FetchPage(context.Background(), neighbour.RelationStarred, "u1", "abc")
	assert.Error(t, err)
}

func TestNextPageCursor(t *testing.T) {
	link := `<https://api.github.com/repositories/1/stargazers?per_page=100&page=4>; rel="next", ` +
		`<https://api.github.com/repositories/1/stargazers?per_page=100&page=9>; rel="last"`
	assert.Equal(t, "4", nextPageCursor(link))

	lastOnly := `<https://api.github.com/repositories/1/stargazers?per_page=100&page=9>; rel="last"`
	assert.Equal(t, "", nextPageCursor(lastOnly))

	assert.Equal(t, "", nextPageCursor(""))
}
