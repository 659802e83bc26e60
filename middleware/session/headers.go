package session

import (
	"net/http"

	"pos-gateway/middleware/session/domain"
)

// Headers de identidade repassados ao upstream pelo gateway.
const (
	HeaderUserID   = "X-Session-User-Id"
	HeaderUsername = "X-Session-Username"
	HeaderEmail    = "X-Session-Email"
	HeaderName     = "X-Session-Name"
	HeaderRole     = "X-Session-Role"
	HeaderBranchID = "X-Session-Branch-Id"
)

var identityHeaders = []string{HeaderUserID, HeaderUsername, HeaderEmail, HeaderName, HeaderRole, HeaderBranchID}

// StripIdentityHeaders remove cópias vindas do cliente. Sempre chamar antes de
// SetIdentityHeaders: o upstream confia nesses headers.
func StripIdentityHeaders(h http.Header) {
	for _, k := range identityHeaders {
		h.Del(k)
	}
}

func SetIdentityHeaders(h http.Header, rec domain.Record) {
	StripIdentityHeaders(h)
	h.Set(HeaderUserID, rec.UserID)
	h.Set(HeaderUsername, rec.Username)
	h.Set(HeaderEmail, rec.Email)
	h.Set(HeaderRole, string(rec.Role))
	if rec.Name != "" {
		h.Set(HeaderName, rec.Name)
	}
	if rec.BranchID != "" {
		h.Set(HeaderBranchID, rec.BranchID)
	}
}
