// Ranker/assembler: chuyển reverse index thành danh sách neighbour có thứ tự

package neighbour

import "sort"

// assemble tạo Result cuối cùng: sắp xếp theo số stargazer chung giảm dần,
// tie-break theo (owner, name) tăng dần để kết quả deterministic.
// Entry không có stargazer chung nào bị loại bỏ.
func (a *aggregator) assemble() *Result {
	edges := make([]NeighbourEdge, 0, len(a.index))
	for _, entry := range a.index {
		if len(entry.stargazers) == 0 {
			continue
		}
		stargazers := make([]Stargazer, 0, len(entry.stargazers))
		for sg := range entry.stargazers {
			stargazers = append(stargazers, sg)
		}
		sort.Slice(stargazers, func(i, j int) bool { return stargazers[i] < stargazers[j] })
		edges = append(edges, NeighbourEdge{Repo: entry.repo, Stargazers: stargazers})
	}

	sort.Slice(edges, func(i, j int) bool {
		if len(edges[i].Stargazers) != len(edges[j].Stargazers) {
			return len(edges[i].Stargazers) > len(edges[j].Stargazers)
		}
		return lessRepoRef(edges[i].Repo, edges[j].Repo)
	})

	failed := make([]Stargazer, 0, len(a.failures))
	for sg := range a.failures {
		failed = append(failed, sg)
	}
	sort.Slice(failed, func(i, j int) bool { return failed[i] < failed[j] })

	return &Result{
		Neighbours:       edges,
		Degraded:         a.degraded(),
		FailedStargazers: failed,
	}
}
