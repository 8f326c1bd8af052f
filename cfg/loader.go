package cfg

import (
	"sync"
)

var (
	loader     Loader
	loaderOnce sync.Once
)

// Loader đọc cấu hình từ một nguồn bất kỳ
type Loader interface {
	Load() (*Config, error)
}

// NewLoader giữ lại loader đầu tiên được đăng ký làm loader của process
func NewLoader(l Loader) (Loader, error) {
	loaderOnce.Do(func() {
		loader = l
	})
	return loader, nil
}
