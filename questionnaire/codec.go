package questionnaire

import "strings"

const (
	otherPrefix = "other("
	otherSuffix = ")"
	// Separator nối các lựa chọn của câu hỏi nhiều lựa chọn.
	Separator = ","
)

// EncodeOther bọc văn bản tự do theo quy ước other(<text>).
func EncodeOther(text string) string {
	return otherPrefix + text + otherSuffix
}

// DecodeOther trả về phần văn bản bên trong nếu segment có dạng other(<text>).
// Một câu trả lời tự do mà bản thân bắt đầu bằng "other(" cũng khớp; quy ước
// này vốn mơ hồ và được giữ nguyên để tương thích dữ liệu cũ.
func DecodeOther(segment string) (string, bool) {
	if len(segment) < len(otherPrefix)+len(otherSuffix) ||
		!strings.HasPrefix(segment, otherPrefix) ||
		!strings.HasSuffix(segment, otherSuffix) {
		return "", false
	}
	return segment[len(otherPrefix) : len(segment)-len(otherSuffix)], true
}

// SplitAnswer tách câu trả lời nhiều lựa chọn thành từng segment.
func SplitAnswer(answer string) []string {
	if answer == "" {
		return nil
	}
	return strings.Split(answer, Separator)
}

// IsNegative: "no" hoặc "non" (không phân biệt hoa thường).
func IsNegative(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "no", "non":
		return true
	}
	return false
}
