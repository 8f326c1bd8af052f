package model

// DiscoveryMessage là cấu trúc dữ liệu một lần discover gửi tới Kafka
type DiscoveryMessage struct {
	Owner          string `json:"owner"`
	Name           string `json:"name"`
	NeighbourCount int    `json:"neighbour_count"`
	Degraded       bool   `json:"degraded"`
	FailedCount    int    `json:"failed_count"`
	DurationMs     int64  `json:"duration_ms"`
}
