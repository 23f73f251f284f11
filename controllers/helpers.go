package controller

import (
	"encoding/json"

	"gorm.io/gorm"

	"arrowhead/models"
)

// Tenant-scoped lookups. A row outside the caller's team is reported the
// same way as a missing row so out-of-tenant ids never leak existence.

func findProjectInTeam(db *gorm.DB, teamID, projectID uint) (*models.Project, error) {
	var project models.Project
	err := db.Where("id = ? AND team_id = ?", projectID, teamID).First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func findObjectiveInTeam(db *gorm.DB, teamID, objectiveID uint) (*models.Objective, error) {
	var objective models.Objective
	err := db.Joins("JOIN projects ON projects.id = objectives.project_id").
		Where("objectives.id = ? AND projects.team_id = ?", objectiveID, teamID).
		First(&objective).Error
	if err != nil {
		return nil, err
	}
	return &objective, nil
}

func findTaskInTeam(db *gorm.DB, teamID, taskID uint) (*models.Task, error) {
	var task models.Task
	err := db.Joins("JOIN objectives ON objectives.id = tasks.objective_id").
		Joins("JOIN projects ON projects.id = objectives.project_id").
		Where("tasks.id = ? AND projects.team_id = ?", taskID, teamID).
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func findTouchbaseInTeam(db *gorm.DB, teamID, touchbaseID uint) (*models.Touchbase, error) {
	var touchbase models.Touchbase
	err := db.Joins("JOIN objectives ON objectives.id = touchbases.objective_id").
		Joins("JOIN projects ON projects.id = objectives.project_id").
		Where("touchbases.id = ? AND projects.team_id = ?", touchbaseID, teamID).
		First(&touchbase).Error
	if err != nil {
		return nil, err
	}
	return &touchbase, nil
}

func findMemberInTeam(db *gorm.DB, teamID, memberID uint) (*models.TeamMember, error) {
	var member models.TeamMember
	err := db.Where("id = ? AND team_id = ?", memberID, teamID).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func isAssignedToTask(db *gorm.DB, taskID, memberID uint) (bool, error) {
	var count int64
	err := db.Model(&models.TaskAssignment{}).
		Where("task_id = ? AND team_member_id = ?", taskID, memberID).
		Count(&count).Error
	return count > 0, err
}

// bodyFieldSet returns the set of top-level keys present in a JSON body.
// Used for the all-or-nothing field check on restricted task updates.
func bodyFieldSet(body []byte) (map[string]bool, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	fields := make(map[string]bool, len(raw))
	for k := range raw {
		fields[k] = true
	}
	return fields, nil
}

// onlyStatusField reports whether a restricted caller's update touches
// nothing but the status field. Any other key poisons the whole request.
func onlyStatusField(fields map[string]bool) bool {
	if !fields["status"] {
		return false
	}
	for k := range fields {
		if k != "status" {
			return false
		}
	}
	return true
}
