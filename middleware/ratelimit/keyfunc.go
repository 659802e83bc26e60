package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// UnknownClient é o sentinela quando não há endereço utilizável.
const UnknownClient = "unknown"

// KeyFunc deriva o identificador do contador a partir da requisição.
type KeyFunc func(r *http.Request) string

// ClientIP devolve o endereço do cliente:
// primeiro item do X-Forwarded-For, depois X-Real-IP, depois (se useRemoteAddr)
// o host do RemoteAddr, e por fim "unknown".
func ClientIP(r *http.Request, useRemoteAddr bool) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	if useRemoteAddr {
		addr := strings.TrimSpace(r.RemoteAddr)
		if host, _, err := net.SplitHostPort(addr); err == nil && host != "" {
			return host
		}
		if addr != "" {
			return addr
		}
	}
	return UnknownClient
}

// DefaultKeyFunc gera "<ip>:<path>".
func DefaultKeyFunc(useRemoteAddr bool) KeyFunc {
	return func(r *http.Request) string {
		return ClientIP(r, useRemoteAddr) + ":" + r.URL.Path
	}
}
