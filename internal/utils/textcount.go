package utils

import "unicode"

// SEO 字段的宽度上限（CJK/全角字符计 2，ASCII 计 1）
const (
	MetaTitleLimit       = 60
	MetaDescriptionLimit = 160
	KeywordsLimit        = 200
)

// cjkIdeographs 覆盖 CJK 统一表意文字及其扩展、兼容表意文字
var cjkIdeographs = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x3400, Hi: 0x4DBF, Stride: 1}, // Extension A
		{Lo: 0x4E00, Hi: 0x9FFF, Stride: 1}, // CJK Unified Ideographs
		{Lo: 0xF900, Hi: 0xFAFF, Stride: 1}, // CJK Compatibility Ideographs
	},
	R32: []unicode.Range32{
		{Lo: 0x20000, Hi: 0x2A6DF, Stride: 1}, // Extension B
		{Lo: 0x2A700, Hi: 0x2B73F, Stride: 1}, // Extension C
		{Lo: 0x2B740, Hi: 0x2B81F, Stride: 1}, // Extension D
		{Lo: 0x2B820, Hi: 0x2CEAF, Stride: 1}, // Extension E
		{Lo: 0x2F800, Hi: 0x2FA1F, Stride: 1}, // Compatibility Ideographs Supplement
	},
}

// IsCJK 判断字符是否属于 CJK 表意文字区段
func IsCJK(r rune) bool {
	return unicode.Is(cjkIdeographs, r)
}

// runeWidth 单个码点的计数宽度。
// 注意：任何非 ASCII 字符（包括 é 这类窄字符）都按 2 计算，
// 已入库内容的长度校验依赖这个规则，不要改成 UAX #11 的东亚宽度。
func runeWidth(r rune) int {
	if IsCJK(r) || r > 0x7F {
		return 2
	}
	return 1
}

// CountWidth 按码点统计字符串的"字符成本"
func CountWidth(text string) int {
	n := 0
	for _, r := range text {
		n += runeWidth(r)
	}
	return n
}

// IsOverLimit 字符成本是否超过上限
func IsOverLimit(text string, limit int) bool {
	return CountWidth(text) > limit
}

// TruncateWidth 在码点边界截断，保证结果宽度不超过 limit
func TruncateWidth(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	n := 0
	for i, r := range text {
		w := runeWidth(r)
		if n+w > limit {
			return text[:i]
		}
		n += w
	}
	return text
}
