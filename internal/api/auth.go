package api

import (
	"net/http"
	"strings"
)

// Principal identifies the caller of a request: which tenant it belongs to
// and what it's allowed to do.
type Principal struct {
	Tenant string
	Role   string // admin, operator
}

// getPrincipal extracts a Principal from the request: a verified bearer
// token if present, otherwise dev headers, exactly as the teacher does for
// its own multi-tenant surface.
func (s *Server) getPrincipal(r *http.Request) Principal {
	authz := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(authz), "bearer ") && s.Auth != nil {
		tok := strings.TrimSpace(authz[len("Bearer "):])
		if pr, err := s.Auth.Verify(tok); err == nil {
			return Principal{Tenant: pr.Tenant, Role: pr.Role}
		}
	}
	tenant := r.Header.Get("X-Tenant-Id")
	role := r.Header.Get("X-Role")
	if tenant == "" {
		tenant = "t_demo"
	}
	if role == "" {
		role = "admin"
	}
	return Principal{Tenant: tenant, Role: role}
}

// IsAdmin reports whether the principal has the admin role.
func (p Principal) IsAdmin() bool { return p.Role == "admin" }
