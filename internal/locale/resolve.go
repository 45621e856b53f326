// Package locale 集中管理多语言翻译记录的回退策略：
// 请求语言 -> 默认语言 -> 列表中的第一条记录。
package locale

// Record 是带语言标记的翻译记录
type Record interface {
	GetLocale() string
}

// FieldRecord 可以按字段名（json 名，例如 "meta_title"）读取文本
type FieldRecord interface {
	Record
	Field(name string) (string, bool)
}

// Lookup 按回退顺序查找记录，返回下标；空列表返回 -1
func Lookup[T Record](records []T, requested, defaultLocale string) int {
	if len(records) == 0 {
		return -1
	}
	fallback := -1
	for i, r := range records {
		loc := r.GetLocale()
		if loc == requested {
			return i
		}
		if fallback < 0 && loc == defaultLocale {
			fallback = i
		}
	}
	if fallback >= 0 {
		return fallback
	}
	return 0
}

// Resolve 返回最合适的翻译记录。列表为空时返回调用方提供的 empty，不报错。
func Resolve[T Record](records []T, requested, defaultLocale string, empty T) T {
	if i := Lookup(records, requested, defaultLocale); i >= 0 {
		return records[i]
	}
	return empty
}

// ResolveField 先解析记录，再读取字段；记录缺失或字段为空时返回 fallback
func ResolveField[T FieldRecord](records []T, requested, defaultLocale, field, fallback string) string {
	i := Lookup(records, requested, defaultLocale)
	if i < 0 {
		return fallback
	}
	if v, ok := records[i].Field(field); ok && v != "" {
		return v
	}
	return fallback
}

// Resolution 描述一次解析的结果，用于页面标注实际展示的语言
type Resolution struct {
	Requested    string `json:"requested_locale"`
	Resolved     string `json:"resolved_locale"`
	FallbackUsed bool   `json:"fallback_used"`
}

// Describe 返回解析元信息；列表为空时 Resolved 为空串
func Describe[T Record](records []T, requested, defaultLocale string) Resolution {
	res := Resolution{Requested: requested}
	if i := Lookup(records, requested, defaultLocale); i >= 0 {
		res.Resolved = records[i].GetLocale()
	}
	res.FallbackUsed = res.Resolved != requested
	return res
}
