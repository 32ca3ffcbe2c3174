package hunt

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/SnapQuest/SQ-Backend/internal/db"
	"github.com/SnapQuest/SQ-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	groupNameMinLength = 2
	groupNameMaxLength = 60
)

type createGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateGroupHandler creates a group and enrolls the creator as its first
// member in the same transaction.
func CreateGroupHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := utils.GetIdentityFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if len(req.Name) < groupNameMinLength || len(req.Name) > groupNameMaxLength {
		writeError(w, "Group name must be between 2 and 60 characters", http.StatusBadRequest)
		return
	}

	var existing Group
	err := db.DB.Where("name = ?", req.Name).First(&existing).Error
	if err == nil {
		writeError(w, "A group with that name already exists", http.StatusConflict)
		return
	}
	if err != gorm.ErrRecordNotFound {
		writeError(w, "Failed to create group", http.StatusInternalServerError)
		return
	}

	group := Group{
		GroupID:         uuid.NewString(),
		Name:            req.Name,
		Description:     strings.TrimSpace(req.Description),
		CreatedByUserID: identity.UserID,
		CreatedAt:       time.Now(),
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&group).Error; err != nil {
			return err
		}
		membership := UserGroup{
			ID:       uuid.NewString(),
			UserID:   identity.UserID,
			GroupID:  group.GroupID,
			JoinedAt: time.Now(),
		}
		return tx.Create(&membership).Error
	})
	if err != nil {
		writeError(w, "Failed to create group", http.StatusInternalServerError)
		return
	}

	writeJSON(w, group)
}

// ListGroupsHandler returns the caller's groups; admins get every group.
func ListGroupsHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := utils.GetIdentityFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var groups []Group
	query := db.DB.Order("hunt.groups.created_at ASC")
	if !identity.IsAdmin {
		query = query.
			Select("hunt.groups.*").
			Joins("JOIN hunt.user_groups ug ON ug.group_id = hunt.groups.group_id").
			Where("ug.user_id = ?", identity.UserID)
	}
	if err := query.Find(&groups).Error; err != nil {
		writeError(w, "Failed to fetch groups", http.StatusInternalServerError)
		return
	}

	writeJSON(w, groups)
}

// JoinGroupHandler enrolls the caller in a group. Joining a group you are
// already in is a conflict, not a silent no-op.
func JoinGroupHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := utils.GetIdentityFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	groupID := chi.URLParam(r, "id")

	var group Group
	err := db.DB.First(&group, "group_id = ?", groupID).Error
	if err == gorm.ErrRecordNotFound {
		writeError(w, "Group not found", http.StatusNotFound)
		return
	}
	if err != nil {
		writeError(w, "Failed to join group", http.StatusInternalServerError)
		return
	}

	var existing UserGroup
	err = db.DB.Where("user_id = ? AND group_id = ?", identity.UserID, groupID).First(&existing).Error
	if err == nil {
		writeError(w, "Already a member of this group", http.StatusConflict)
		return
	}
	if err != gorm.ErrRecordNotFound {
		writeError(w, "Failed to join group", http.StatusInternalServerError)
		return
	}

	membership := UserGroup{
		ID:       uuid.NewString(),
		UserID:   identity.UserID,
		GroupID:  groupID,
		JoinedAt: time.Now(),
	}
	if err := db.DB.Create(&membership).Error; err != nil {
		writeError(w, "Failed to join group", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"success": true, "group": group})
}

// LeaveGroupHandler removes the caller's membership. Leaving a group you are
// not in is forgiven.
func LeaveGroupHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := utils.GetIdentityFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	groupID := chi.URLParam(r, "id")

	err := db.DB.
		Where("user_id = ? AND group_id = ?", identity.UserID, groupID).
		Delete(&UserGroup{}).Error
	if err != nil {
		writeError(w, "Failed to leave group", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]bool{"success": true})
}

type groupMember struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	IsAdmin     bool      `json:"is_admin"`
	JoinedAt    time.Time `json:"joined_at"`
}

// GroupMembersHandler lists a group's members. Visible to members of the
// group and to admins.
func GroupMembersHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := utils.GetIdentityFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	groupID := chi.URLParam(r, "id")

	allowed, err := EnsureGroupAccess(identity, groupID)
	if err != nil {
		writeError(w, "Failed to fetch members", http.StatusInternalServerError)
		return
	}
	if !allowed {
		writeError(w, "You are not a member of this group", http.StatusForbidden)
		return
	}

	var members []groupMember
	err = db.DB.Raw(`
		SELECT p.profile_id AS user_id, p.display_name, p.is_admin, ug.joined_at
		FROM hunt.user_groups ug
		JOIN app_auth.profiles p ON p.profile_id = ug.user_id
		WHERE ug.group_id = ?
		ORDER BY ug.joined_at ASC`,
		groupID,
	).Scan(&members).Error
	if err != nil {
		writeError(w, "Failed to fetch members", http.StatusInternalServerError)
		return
	}
	if members == nil {
		members = []groupMember{}
	}

	writeJSON(w, members)
}

// RemoveMemberHandler kicks a user from a group. Admin only; routed behind
// the admin middleware.
func RemoveMemberHandler(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")
	userID := chi.URLParam(r, "userId")

	result := db.DB.
		Where("user_id = ? AND group_id = ?", userID, groupID).
		Delete(&UserGroup{})
	if result.Error != nil {
		writeError(w, "Failed to remove member", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		writeError(w, "Membership not found", http.StatusNotFound)
		return
	}

	writeJSON(w, map[string]bool{"success": true})
}
