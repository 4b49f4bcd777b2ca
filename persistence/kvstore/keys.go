package kvstore

import "github.com/matteuzdev/VerbAI-Studio/persistence"

const (
	DefaultPrefix = "verbai_data_v1_"

	TenantsKey      = "verbai_global_tenants"
	ActiveTenantKey = "verbai_active_tenant"
	SessionKey      = "verbai_session_v1"
)

// SegmentKey is <prefix><tenantID>_<segment>.
func SegmentKey(prefix, tenantID string, segment persistence.Segment) string {
	return prefix + tenantID + "_" + string(segment)
}

func tenantPattern(prefix, tenantID string) string {
	return prefix + tenantID + "_*"
}
