// Gói dto ánh xạ phản hồi GitHub REST API thành cấu trúc Go

package githubapi

type Owner struct {
	Login string `json:"login"`
	ID    int64  `json:"id"`
}

// StargazerResponse là một phần tử của GET /repos/{user}/{repo}/stargazers
type StargazerResponse struct {
	Login string `json:"login"`
	ID    int64  `json:"id"`
}

// StarredRepoResponse là một phần tử của GET /users/{user}/starred
type StarredRepoResponse struct {
	Id       int64  `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Owner    Owner  `json:"owner"`
	// Có thể thêm nhiều trường tại đây
}
