package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"playhub/internal/services"

	"github.com/gin-gonic/gin"
)

// UnknownAddress 无法确定客户端地址时的占位值，不能用于投票
const UnknownAddress = "unknown"

const VoterKey = "voter_key"

// 按顺序尝试的请求头。这些头由客户端可伪造，反向代理必须覆盖它们。
var clientAddressHeaders = []string{
	"X-Forwarded-For",
	"X-Real-IP",
	"CF-Connecting-IP",
	"True-Client-IP",
}

// ClientAddress 从代理头中取客户端地址。X-Forwarded-For 取第一段；
// 值不是合法 IP 的头会被跳过。都没有时返回 UnknownAddress。
func ClientAddress(h http.Header) string {
	for _, name := range clientAddressHeaders {
		v := h.Get(name)
		if name == "X-Forwarded-For" {
			v, _, _ = strings.Cut(v, ",")
		}
		if addr, ok := parseAddress(v); ok {
			return addr
		}
	}
	return UnknownAddress
}

func parseAddress(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	if addr, err := netip.ParseAddr(v); err == nil {
		return addr.Unmap().String(), true
	}
	// 带端口的写法，例如 1.2.3.4:5678 或 [::1]:80
	if host, _, err := net.SplitHostPort(v); err == nil {
		if addr, err := netip.ParseAddr(host); err == nil {
			return addr.Unmap().String(), true
		}
	}
	return "", false
}

// VoterIdentity 由客户端地址派生加盐哈希后的投票者标识，放进 context。
// 地址未知时标识为空，投票服务会拒绝。
func VoterIdentity(salt string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := ""
		if addr := ClientAddress(c.Request.Header); addr != UnknownAddress {
			key = services.HashVoterKey(salt, addr)
		}
		c.Set(VoterKey, key)
		c.Next()
	}
}

// CurrentVoter 读取 VoterIdentity 设置的投票者标识
func CurrentVoter(c *gin.Context) string {
	return c.GetString(VoterKey)
}
