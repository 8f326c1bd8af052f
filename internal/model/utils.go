package model

// TruncateString cắt chuỗi xuống độ dài tối đa trước khi lưu,
// tránh vượt giới hạn cột varchar
func TruncateString(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
