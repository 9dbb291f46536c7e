package utils

import "viksitkanpur/internal/models/records"

// RoleLevel maps dashboard roles to their hierarchy level; lower is more
// privileged. Auth(n) admits levels 1..n.
var RoleLevel = map[records.Role]int{
	records.RoleDistrictMagistrate: 1,
	records.RoleDepartmentHead:     2,
	records.RoleFieldWorker:        3,
	records.RoleCitizen:            4,
	records.RoleGeneral:            4,
}

// LevelOf returns the level of role; unknown roles get the lowest.
func LevelOf(role records.Role) int {
	if lvl, ok := RoleLevel[role]; ok {
		return lvl
	}
	return 4
}
