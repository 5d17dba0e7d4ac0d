package api

import (
	"sync"

	"golang.org/x/time/rate"
)

// tenantLimiters hands out one rate.Limiter per tenant, lazily created on
// first use, gating POST /v1/problems/{id}/solve/heuristic per SPEC_FULL
// section 3's rate-limiting requirement.
type tenantLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	r        rate.Limit
	burst    int
}

func newTenantLimiters(r rate.Limit, burst int) *tenantLimiters {
	return &tenantLimiters{limiters: map[string]*rate.Limiter{}, r: r, burst: burst}
}

func (t *tenantLimiters) forTenant(tenant string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.limiters[tenant]
	if !ok {
		l = rate.NewLimiter(t.r, t.burst)
		t.limiters[tenant] = l
	}
	return l
}

func (t *tenantLimiters) Allow(tenant string) bool {
	return t.forTenant(tenant).Allow()
}
