// Gói neighbour chứa engine tìm kiếm các neighbour repository:
// các repository có chung stargazer với repository đích.
// Engine chỉ nói chuyện với bên ngoài thông qua interface Fetcher.

package neighbour

import "strings"

// RepoRef định danh một repository theo owner và name.
// So sánh không phân biệt hoa thường, lưu trữ giữ nguyên hoa thường.
type RepoRef struct {
	Owner string
	Name  string
}

// Key trả về khóa chuẩn hóa dùng để so sánh và làm key aggregation
func (r RepoRef) Key() string {
	return strings.ToLower(r.Owner) + "/" + strings.ToLower(r.Name)
}

func (r RepoRef) String() string {
	return r.Owner + "/" + r.Name
}

func (r RepoRef) Equal(other RepoRef) bool {
	return r.Key() == other.Key()
}

// lessRepoRef so sánh thứ tự từ điển (owner trước, name sau) để tie-break
func lessRepoRef(a, b RepoRef) bool {
	ao, bo := strings.ToLower(a.Owner), strings.ToLower(b.Owner)
	if ao != bo {
		return ao < bo
	}
	return strings.ToLower(a.Name) < strings.ToLower(b.Name)
}

// Stargazer là username của một user đã star repository
type Stargazer string

// UserStarSet là tập các repository mà một stargazer đã star.
// Incomplete đánh dấu fetch bị lỗi giữa chừng hoặc bị cắt bởi page cap.
type UserStarSet struct {
	Repos      []RepoRef
	Incomplete bool
}

type OutcomeKind int

const (
	OutcomeComplete OutcomeKind = iota
	OutcomePartial
	OutcomeFailed
)

// FetchOutcome là kết quả fetch starred repos của một stargazer
type FetchOutcome struct {
	Kind   OutcomeKind
	Stars  UserStarSet
	Reason string
}

// NeighbourEdge là một neighbour cùng tập stargazer chung với repo đích
type NeighbourEdge struct {
	Repo       RepoRef     `json:"repo"`
	Stargazers []Stargazer `json:"stargazers"`
}

// Result là kết quả cuối cùng của một lần discover
type Result struct {
	Neighbours       []NeighbourEdge `json:"neighbours"`
	Degraded         bool            `json:"degraded"`
	FailedStargazers []Stargazer     `json:"failed_stargazers"`
}

// Các reason chuẩn ghi vào failure tracker
const (
	ReasonDeadline    = "deadline"
	ReasonTruncated   = "truncated"
	ReasonRateLimited = "rate_limited"
	ReasonNotFound    = "not_found"
	ReasonTransient   = "transient"
)
