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

type taskView struct {
	Task
	Completed bool `json:"completed"`
}

// GroupTasksHandler lists a group's tasks the caller may see. Tasks stay
// hidden until their unlock date passes; admins see locked tasks too.
// Each task carries whether the caller already has an approved submission
// for it in this group.
func GroupTasksHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := utils.GetIdentityFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	groupID := chi.URLParam(r, "id")

	allowed, err := EnsureGroupAccess(identity, groupID)
	if err != nil {
		writeError(w, "Failed to fetch tasks", http.StatusInternalServerError)
		return
	}
	if !allowed {
		writeError(w, "You are not a member of this group", http.StatusForbidden)
		return
	}

	query := db.DB.
		Select("hunt.tasks.*").
		Joins("JOIN hunt.task_groups tg ON tg.task_id = hunt.tasks.task_id").
		Where("tg.group_id = ?", groupID).
		Order("hunt.tasks.unlock_date ASC")
	if !identity.IsAdmin {
		query = query.Where("hunt.tasks.unlock_date <= ?", time.Now())
	}

	var tasks []Task
	if err := query.Find(&tasks).Error; err != nil {
		writeError(w, "Failed to fetch tasks", http.StatusInternalServerError)
		return
	}

	completed := map[string]bool{}
	if len(tasks) > 0 {
		var doneIDs []string
		err = db.DB.Model(&Submission{}).
			Where("user_id = ? AND group_id = ? AND is_approved = ?", identity.UserID, groupID, true).
			Distinct().
			Pluck("task_id", &doneIDs).Error
		if err != nil {
			writeError(w, "Failed to fetch tasks", http.StatusInternalServerError)
			return
		}
		for _, id := range doneIDs {
			completed[id] = true
		}
	}

	views := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, taskView{Task: t, Completed: completed[t.TaskID]})
	}

	writeJSON(w, views)
}

type createTaskRequest struct {
	Description string    `json:"description"`
	AIPrompt    string    `json:"ai_prompt"`
	UnlockDate  time.Time `json:"unlock_date"`
	GroupIDs    []string  `json:"group_ids"`
}

// CreateTaskHandler creates a task and assigns it to groups in one
// transaction. Admin only.
func CreateTaskHandler(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.Description = strings.TrimSpace(req.Description)
	req.AIPrompt = strings.TrimSpace(req.AIPrompt)
	if req.Description == "" || req.AIPrompt == "" {
		writeError(w, "Description and AI prompt are required", http.StatusBadRequest)
		return
	}
	if req.UnlockDate.IsZero() {
		req.UnlockDate = time.Now()
	}

	task := Task{
		TaskID:      uuid.NewString(),
		Description: req.Description,
		AIPrompt:    req.AIPrompt,
		UnlockDate:  req.UnlockDate,
		CreatedAt:   time.Now(),
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&task).Error; err != nil {
			return err
		}
		for _, groupID := range req.GroupIDs {
			var group Group
			if err := tx.First(&group, "group_id = ?", groupID).Error; err != nil {
				return err
			}
			assignment := TaskGroup{
				ID:        uuid.NewString(),
				TaskID:    task.TaskID,
				GroupID:   groupID,
				CreatedAt: time.Now(),
			}
			if err := tx.Create(&assignment).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err == gorm.ErrRecordNotFound {
		writeError(w, "One of the target groups does not exist", http.StatusBadRequest)
		return
	}
	if err != nil {
		writeError(w, "Failed to create task", http.StatusInternalServerError)
		return
	}

	writeJSON(w, task)
}

// AssignTaskHandler attaches an existing task to a group. Admin only;
// re-assigning is a conflict.
func AssignTaskHandler(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "id")
	groupID := chi.URLParam(r, "groupId")

	var task Task
	err := db.DB.First(&task, "task_id = ?", taskID).Error
	if err == gorm.ErrRecordNotFound {
		writeError(w, "Task not found", http.StatusNotFound)
		return
	}
	if err != nil {
		writeError(w, "Failed to assign task", http.StatusInternalServerError)
		return
	}

	var group Group
	err = db.DB.First(&group, "group_id = ?", groupID).Error
	if err == gorm.ErrRecordNotFound {
		writeError(w, "Group not found", http.StatusNotFound)
		return
	}
	if err != nil {
		writeError(w, "Failed to assign task", http.StatusInternalServerError)
		return
	}

	var existing TaskGroup
	err = db.DB.Where("task_id = ? AND group_id = ?", taskID, groupID).First(&existing).Error
	if err == nil {
		writeError(w, "Task is already assigned to this group", http.StatusConflict)
		return
	}
	if err != gorm.ErrRecordNotFound {
		writeError(w, "Failed to assign task", http.StatusInternalServerError)
		return
	}

	assignment := TaskGroup{
		ID:        uuid.NewString(),
		TaskID:    taskID,
		GroupID:   groupID,
		CreatedAt: time.Now(),
	}
	if err := db.DB.Create(&assignment).Error; err != nil {
		writeError(w, "Failed to assign task", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]bool{"success": true})
}

type adminTaskView struct {
	Task
	AIPrompt string   `json:"ai_prompt"`
	GroupIDs []string `json:"group_ids"`
}

// AdminTasksHandler lists every task including locked ones and the judge
// prompt, which is never exposed on player-facing routes.
func AdminTasksHandler(w http.ResponseWriter, r *http.Request) {
	var tasks []Task
	if err := db.DB.Order("unlock_date ASC").Find(&tasks).Error; err != nil {
		writeError(w, "Failed to fetch tasks", http.StatusInternalServerError)
		return
	}

	var assignments []TaskGroup
	if err := db.DB.Find(&assignments).Error; err != nil {
		writeError(w, "Failed to fetch tasks", http.StatusInternalServerError)
		return
	}
	byTask := map[string][]string{}
	for _, a := range assignments {
		byTask[a.TaskID] = append(byTask[a.TaskID], a.GroupID)
	}

	views := make([]adminTaskView, 0, len(tasks))
	for _, t := range tasks {
		groupIDs := byTask[t.TaskID]
		if groupIDs == nil {
			groupIDs = []string{}
		}
		views = append(views, adminTaskView{Task: t, AIPrompt: t.AIPrompt, GroupIDs: groupIDs})
	}

	writeJSON(w, views)
}
