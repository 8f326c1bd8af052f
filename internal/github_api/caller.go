// Gói githubapi cung cấp một caller cho GitHub REST API, hiện thực
// capability Fetcher của engine neighbour. Caller chịu trách nhiệm thực hiện
// yêu cầu API, xác thực bằng access token nếu được cung cấp, và dịch
// phản hồi HTTP thành taxonomy lỗi của engine.

package githubapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/thep200/star-neighbours/cfg"
	"github.com/thep200/star-neighbours/internal/limiter"
	"github.com/thep200/star-neighbours/internal/neighbour"
	"github.com/thep200/star-neighbours/pkg/log"
)

type Caller struct {
	Logger      log.Logger
	Config      *cfg.Config
	rateLimiter *limiter.RateLimiter
	client      *http.Client
}

func NewCaller(logger log.Logger, config *cfg.Config) (*Caller, error) {
	return &Caller{
		Logger:      logger,
		Config:      config,
		rateLimiter: limiter.NewRateLimiter(config.GithubApi.RequestsPerSecond),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// FetchPage lấy một trang của một relation. Cursor là số trang GitHub
// được bọc trong chuỗi opaque, rỗng nghĩa là trang đầu tiên.
func (c *Caller) FetchPage(ctx context.Context, relation neighbour.Relation, subject string, cursor string) (*neighbour.Page, error) {
	// Áp rate limit phía client trước mỗi request
	throttle := time.Duration(c.Config.GithubApi.ThrottleDelay) * time.Millisecond
	if err := c.rateLimiter.Wait(ctx, throttle); err != nil {
		return nil, &neighbour.TransientError{Cause: err}
	}

	fullUrl, err := c.buildUrl(relation, subject, cursor)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullUrl, nil)
	if err != nil {
		return nil, &neighbour.TransientError{Cause: err}
	}

	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.Config.GithubApi.AccessToken != "" {
		req.Header.Set("Authorization", fmt.Sprintf("token %s", c.Config.GithubApi.AccessToken))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &neighbour.TransientError{Cause: err}
	}
	defer resp.Body.Close()

	if err := c.checkStatus(ctx, resp); err != nil {
		return nil, err
	}

	page := &neighbour.Page{NextCursor: nextPageCursor(resp.Header.Get("Link"))}
	switch relation {
	case neighbour.RelationStargazers:
		var stargazers []StargazerResponse
		if err := json.NewDecoder(resp.Body).Decode(&stargazers); err != nil {
			return nil, &neighbour.TransientError{Cause: err}
		}
		for _, sg := range stargazers {
			page.Stargazers = append(page.Stargazers, neighbour.Stargazer(sg.Login))
		}
	case neighbour.RelationStarred:
		var repos []StarredRepoResponse
		if err := json.NewDecoder(resp.Body).Decode(&repos); err != nil {
			return nil, &neighbour.TransientError{Cause: err}
		}
		for _, repo := range repos {
			page.Repos = append(page.Repos, neighbour.RepoRef{Owner: repo.Owner.Login, Name: repo.Name})
		}
	default:
		return nil, fmt.Errorf("unsupported relation: %v", relation)
	}

	return page, nil
}

func (c *Caller) buildUrl(relation neighbour.Relation, subject string, cursor string) (string, error) {
	var baseUrl string
	switch relation {
	case neighbour.RelationStargazers:
		// Subject của relation stargazers có dạng "owner/name"
		parts := strings.SplitN(subject, "/", 2)
		if len(parts) != 2 {
			return "", fmt.Errorf("invalid stargazers subject: %q", subject)
		}
		baseUrl = strings.ReplaceAll(c.Config.GithubApi.StargazersApiUrl, "{user}", parts[0])
		baseUrl = strings.ReplaceAll(baseUrl, "{repo}", parts[1])
	case neighbour.RelationStarred:
		baseUrl = strings.ReplaceAll(c.Config.GithubApi.StarredApiUrl, "{user}", subject)
	default:
		return "", fmt.Errorf("unsupported relation: %v", relation)
	}

	page := 1
	if cursor != "" {
		parsed, err := strconv.Atoi(cursor)
		if err != nil || parsed < 1 {
			return "", fmt.Errorf("invalid pagination cursor: %q", cursor)
		}
		page = parsed
	}

	perPage := c.Config.GithubApi.PerPage
	if perPage <= 0 {
		perPage = 100
	}

	sep := "?"
	if strings.Contains(baseUrl, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%sper_page=%d&page=%d", baseUrl, sep, perPage, page), nil
}

// checkStatus dịch status code thành taxonomy lỗi của engine
func (c *Caller) checkStatus(ctx context.Context, resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return neighbour.ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized:
		return neighbour.ErrUnauthorized
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		if resp.Header.Get("Retry-After") != "" || resp.Header.Get("X-RateLimit-Remaining") == "0" {
			retryAfter := c.retryAfter(resp)
			c.Logger.Warn(ctx, "Rate limit hit! GitHub API đạt ngưỡng, cần chờ %v để tiếp tục", retryAfter.Round(time.Second))
			return &neighbour.RateLimitError{RetryAfter: retryAfter}
		}
		// 403 không kèm thông tin rate limit là do credential bị từ chối
		return neighbour.ErrUnauthorized
	case resp.StatusCode >= 500:
		return &neighbour.TransientError{Cause: fmt.Errorf("upstream responded %s", resp.Status)}
	default:
		return &neighbour.TransientError{Cause: fmt.Errorf("unexpected response status %s", resp.Status)}
	}
}

// retryAfter tính thời gian chờ từ header Retry-After hoặc X-RateLimit-Reset.
// Không parse được thì dùng cấu hình mặc định.
func (c *Caller) retryAfter(resp *http.Response) time.Duration {
	if retryAfterStr := resp.Header.Get("Retry-After"); retryAfterStr != "" {
		if seconds, err := strconv.Atoi(retryAfterStr); err == nil && seconds >= 0 {
			return time.Duration(seconds) * time.Second
		}
	}

	if resetTimeStr := resp.Header.Get("X-RateLimit-Reset"); resetTimeStr != "" {
		if resetTimeInt, err := strconv.ParseInt(resetTimeStr, 10, 64); err == nil {
			waitTime := time.Until(time.Unix(resetTimeInt, 0))
			if waitTime > 0 {
				return waitTime
			}
		}
	}

	return time.Duration(c.Config.GithubApi.RateLimitResetMin) * time.Minute
}

// nextPageCursor lấy số trang tiếp theo từ header Link (rel="next").
// Trả về chuỗi rỗng khi đã hết dữ liệu.
func nextPageCursor(linkHeader string) string {
	if linkHeader == "" {
		return ""
	}
	for _, part := range strings.Split(linkHeader, ",") {
		sections := strings.Split(part, ";")
		if len(sections) < 2 {
			continue
		}
		isNext := false
		for _, section := range sections[1:] {
			if strings.TrimSpace(section) == `rel="next"` {
				isNext = true
				break
			}
		}
		if !isNext {
			continue
		}
		rawUrl := strings.Trim(strings.TrimSpace(sections[0]), "<>")
		parsed, err := url.Parse(rawUrl)
		if err != nil {
			return ""
		}
		return parsed.Query().Get("page")
	}
	return ""
}
