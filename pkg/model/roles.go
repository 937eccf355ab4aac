package model

// Provider roles own calendars; requester roles ask providers to hold time.
const (
	RoleGuide     = "guide"
	RoleTransport = "transport"
	RoleAgency    = "agency"
	RoleDMC       = "dmc"
)

func IsProviderRole(role string) bool {
	return role == RoleGuide || role == RoleTransport
}

func IsRequesterRole(role string) bool {
	return role == RoleAgency || role == RoleDMC
}
