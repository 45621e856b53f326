package locale

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Matcher 根据 Accept-Language 在站点支持的语言中挑选一个
type Matcher struct {
	supported     []string
	defaultLocale string
	matcher       language.Matcher
}

// NewMatcher 创建匹配器。defaultLocale 总是被放在候选列表首位，
// 作为 x/text 匹配失败时的结果。
func NewMatcher(supported []string, defaultLocale string) *Matcher {
	defaultLocale = Normalize(defaultLocale)
	list := []string{defaultLocale}
	for _, s := range supported {
		s = Normalize(s)
		if s == "" || s == defaultLocale {
			continue
		}
		list = append(list, s)
	}

	tags := make([]language.Tag, 0, len(list))
	for _, s := range list {
		tags = append(tags, language.Make(s))
	}

	return &Matcher{
		supported:     list,
		defaultLocale: defaultLocale,
		matcher:       language.NewMatcher(tags),
	}
}

// Default 默认语言
func (m *Matcher) Default() string { return m.defaultLocale }

// Supported 支持的语言（默认语言在首位）
func (m *Matcher) Supported() []string {
	out := make([]string, len(m.supported))
	copy(out, m.supported)
	return out
}

// IsSupported 判断语言代码是否在支持列表中
func (m *Matcher) IsSupported(code string) bool {
	code = Normalize(code)
	for _, s := range m.supported {
		if s == code {
			return true
		}
	}
	return false
}

// Match 解析 Accept-Language 头，返回最合适的支持语言
func (m *Matcher) Match(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return m.defaultLocale
	}
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return m.defaultLocale
	}
	_, index, confidence := m.matcher.Match(prefs...)
	if confidence == language.No {
		return m.defaultLocale
	}
	return m.supported[index]
}

// Normalize 把 "zh-CN"、"EN_us" 之类的写法收敛成站点使用的基础语言代码
func Normalize(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	tag, err := language.Parse(strings.ReplaceAll(code, "_", "-"))
	if err != nil {
		return strings.ToLower(code)
	}
	base, _ := tag.Base()
	return base.String()
}

// DisplayName 语言的自称，例如 "zh" -> "中文"，用于语言切换菜单
func DisplayName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.Self.Name(tag); name != "" {
		return name
	}
	return code
}
