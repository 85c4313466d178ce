package llm

import (
	"fmt"
	"strings"

	"github.com/jian131/agent-bds/internal/core/port"
)

// buildIntentPrompt writes the extraction instruction. The vocabulary
// is inlined so the model picks from names the pipeline knows instead
// of inventing spellings.
func buildIntentPrompt(query string, vocab port.IntentVocabulary) string {
	var b strings.Builder

	b.WriteString("Bạn là bộ phân tích truy vấn tìm kiếm bất động sản Việt Nam.\n")
	b.WriteString("Phân tích truy vấn sau và trả về DUY NHẤT một đối tượng JSON, không giải thích gì thêm.\n\n")

	b.WriteString("Các trường JSON (bỏ qua trường không xác định được, dùng null):\n")
	b.WriteString(`{
  "city": "thành phố, chọn từ danh sách bên dưới",
  "district": "quận/huyện, chọn từ danh sách bên dưới",
  "ward": "phường/xã nếu có",
  "price_min": "giá tối thiểu bằng số VND, ví dụ 2000000000",
  "price_max": "giá tối đa bằng số VND",
  "area_min": "diện tích tối thiểu m2, bằng số",
  "area_max": "diện tích tối đa m2, bằng số",
  "property_type": "một trong: ` + strings.Join(vocab.PropertyTypes, ", ") + `",
  "bedrooms": "số phòng ngủ, bằng số",
  "purpose": "buy hoặc rent",
  "keywords": ["từ khóa quan trọng còn lại"]
}` + "\n\n")

	b.WriteString("Thành phố hợp lệ: " + strings.Join(vocab.Cities, ", ") + "\n")
	for _, city := range vocab.Cities {
		if districts, ok := vocab.Districts[city]; ok {
			fmt.Fprintf(&b, "Quận/huyện của %s: %s\n", city, strings.Join(districts, ", "))
		}
	}

	b.WriteString("\nQuy tắc:\n")
	b.WriteString("- Giá luôn đổi về VND: \"2 tỷ\" = 2000000000, \"15 triệu\" = 15000000.\n")
	b.WriteString("- \"khoảng X\" hoặc một mức giá đơn: đặt cả price_min và price_max bằng đúng X.\n")
	b.WriteString("- \"thuê\", \"cho thuê\" nghĩa là purpose rent; mặc định là buy.\n")
	b.WriteString("- Không bịa giá trị không có trong truy vấn.\n\n")

	fmt.Fprintf(&b, "Truy vấn: %q\n", query)
	return b.String()
}
