package http

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
)

// securityMetrics counts security-relevant events. Fields are read and
// written atomically.
type securityMetrics struct {
	rateLimitHits      int64
	suspiciousRequests int64
}

// trustedProxies lists networks whose X-Forwarded-For headers we believe.
var trustedProxies = []*net.IPNet{
	parsecidr("127.0.0.0/8"),    // localhost
	parsecidr("10.0.0.0/8"),     // private networks
	parsecidr("172.16.0.0/12"),  // private networks
	parsecidr("192.168.0.0/16"), // private networks
}

func parsecidr(cidr string) *net.IPNet {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(fmt.Sprintf("invalid CIDR %s: %v", cidr, err))
	}
	return network
}

func isTrustedProxy(ip net.IP) bool {
	for _, network := range trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// extractClientIP returns the client address for rate limiting and logging.
// Forwarding headers are honored only when the direct peer is a trusted
// proxy.
func extractClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	remoteIP := net.ParseIP(host)
	if remoteIP == nil {
		return host
	}

	if isTrustedProxy(remoteIP) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first := strings.TrimSpace(strings.Split(xff, ",")[0])
			if ip := net.ParseIP(first); ip != nil {
				return first
			}
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			if ip := net.ParseIP(strings.TrimSpace(xri)); ip != nil {
				return strings.TrimSpace(xri)
			}
		}
	}

	return host
}

var suspiciousPatterns = []string{
	"../", "..\\", ".env", "wp-admin", "phpmyadmin", "admin.php",
	"config.php", ".git", ".ssh", "eval(", "javascript:", "<script",
	"union select", "base64", "0x", "etc/passwd", "cmd.exe",
}

var suspiciousAgents = []string{
	"sqlmap", "nmap", "nikto", "gobuster", "dirb", "curl", "wget",
	"python-requests", "scanner", "bot", "crawler", "spider", "scraper",
}

var unusualMethods = []string{"TRACE", "TRACK", "DEBUG", "CONNECT"}

// detectSuspiciousRequest flags requests that look like probes or scans.
// It only counts and reports; callers decide whether to act.
func detectSuspiciousRequest(r *http.Request, metrics *securityMetrics) bool {
	suspicious := false

	target := strings.ToLower(r.URL.Path + "?" + r.URL.RawQuery)
	for _, pattern := range suspiciousPatterns {
		if strings.Contains(target, pattern) {
			suspicious = true
			break
		}
	}

	if !suspicious {
		agent := strings.ToLower(r.Header.Get("User-Agent"))
		for _, bad := range suspiciousAgents {
			if strings.Contains(agent, bad) {
				suspicious = true
				break
			}
		}
	}

	if !suspicious {
		for _, method := range unusualMethods {
			if r.Method == method {
				suspicious = true
				break
			}
		}
	}

	if !suspicious && len(r.URL.String()) > 2048 {
		suspicious = true
	}

	if !suspicious {
		xff := r.Header.Get("X-Forwarded-For")
		xri := r.Header.Get("X-Real-IP")
		if xff != "" && xri != "" && strings.Count(xff, ",") > 5 {
			suspicious = true
		}
	}

	if suspicious {
		atomic.AddInt64(&metrics.suspiciousRequests, 1)
	}
	return suspicious
}
