package core

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// TrustedProxy пропускает только запросы от доверенных прокси (CIDR или одиночный IP)
// и выставляет схему по X-Forwarded-Proto (OWASP A05).
// Пустой список — middleware ничего не проверяет.
func TrustedProxy(trusted []string) func(http.Handler) http.Handler {
	prefixes := make([]netip.Prefix, 0, len(trusted))
	for _, s := range trusted {
		if p, err := netip.ParsePrefix(s); err == nil {
			prefixes = append(prefixes, p.Masked())
			continue
		}
		if a, err := netip.ParseAddr(s); err == nil {
			prefixes = append(prefixes, netip.PrefixFrom(a, a.BitLen()))
			continue
		}
		LogWarn("Некорректный адрес доверенного прокси", map[string]interface{}{"value": s})
	}

	return func(next http.Handler) http.Handler {
		if len(prefixes) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			addr, err := netip.ParseAddr(host)
			if err != nil {
				Fail(w, r, &AppError{Code: "bad_request", Status: http.StatusBadRequest, Message: "неверный адрес клиента"})
				return
			}
			addr = addr.Unmap()

			ok := false
			for _, p := range prefixes {
				if p.Contains(addr) {
					ok = true
					break
				}
			}
			if !ok {
				Fail(w, r, Forbidden("недоверенный прокси"))
				return
			}

			if strings.EqualFold(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")), "https") {
				r.URL.Scheme = "https"
			} else {
				r.URL.Scheme = "http"
			}
			next.ServeHTTP(w, r)
		})
	}
}
