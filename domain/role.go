package domain

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleAdmin          Role = "ADMIN"
	RoleProjectManager Role = "PROJECT_MANAGER"
	RoleTeamLead       Role = "TEAM_LEAD"
	RoleDeveloper      Role = "DEVELOPER"
	RoleQA             Role = "QA"
)

var knownRoles = []Role{RoleAdmin, RoleProjectManager, RoleTeamLead, RoleDeveloper, RoleQA}

// FinalApproverRole is the only role allowed to run final approval, whatever the last
// step's assignee role is.
const FinalApproverRole = RoleAdmin

// developer-class roles, candidates for the effective assignee of a task
var developerRoles = []Role{RoleDeveloper, RoleTeamLead}

func ParseRole(value string) (Role, error) {
	for _, r := range knownRoles {
		if strings.EqualFold(string(r), value) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role '%s'", value)
}

func (r Role) Valid() bool {
	for _, known := range knownRoles {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) IsDeveloper() bool {
	for _, d := range developerRoles {
		if r == d {
			return true
		}
	}
	return false
}

type DynamicApproverType string

const (
	DynamicProjectManager    DynamicApproverType = "PROJECT_MANAGER_OF_TASK"
	DynamicTeamLead          DynamicApproverType = "TEAM_LEAD_OF_TASK"
	DynamicAssignedDeveloper DynamicApproverType = "ASSIGNED_DEVELOPER"
	DynamicQA                DynamicApproverType = "QA_OF_TASK"
)

// DynamicRole maps every dynamic approver type to exactly one role, ok is false for
// anything outside the closed set.
func DynamicRole(t DynamicApproverType) (Role, bool) {
	switch t {
	case DynamicProjectManager:
		return RoleProjectManager, true
	case DynamicTeamLead:
		return RoleTeamLead, true
	case DynamicAssignedDeveloper:
		return RoleDeveloper, true
	case DynamicQA:
		return RoleQA, true
	}
	return "", false
}
