// Aggregator: fold (stargazer, outcome) thành reverse index repo -> stargazers.
// Index chỉ được ghi bởi một goroutine duy nhất đọc từ completion channel,
// nên không cần lock. Failure tracker là tập monotonic (stargazer, reason).

package neighbour

type indexEntry struct {
	repo       RepoRef
	stargazers map[Stargazer]struct{}
}

type aggregator struct {
	target   RepoRef
	index    map[string]*indexEntry
	failures map[Stargazer]string
}

func newAggregator(target RepoRef) *aggregator {
	return &aggregator{
		target:   target,
		index:    make(map[string]*indexEntry),
		failures: make(map[Stargazer]string),
	}
}

// fold cộng dồn một outcome vào index. Phép fold có tính giao hoán và
// kết hợp: thứ tự hoàn thành của các fetch không ảnh hưởng kết quả.
func (a *aggregator) fold(sg Stargazer, outcome FetchOutcome) {
	switch outcome.Kind {
	case OutcomeFailed:
		a.failures[sg] = outcome.Reason
		return
	case OutcomePartial:
		a.failures[sg] = outcome.Reason
	case OutcomeComplete:
	}

	for _, repo := range outcome.Stars.Repos {
		if repo.Equal(a.target) {
			// repo đích không bao giờ là neighbour của chính nó
			continue
		}
		key := repo.Key()
		entry, ok := a.index[key]
		if !ok {
			entry = &indexEntry{repo: repo, stargazers: make(map[Stargazer]struct{})}
			a.index[key] = entry
		}
		entry.stargazers[sg] = struct{}{}
	}
}

func (a *aggregator) degraded() bool {
	return len(a.failures) > 0
}
