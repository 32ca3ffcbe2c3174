package hunt

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/SnapQuest/SQ-Backend/internal/db"
	"github.com/SnapQuest/SQ-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
	"gorm.io/datatypes"
)

func writeError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type submitRequest struct {
	TaskID  string `json:"task_id"`
	PhotoID string `json:"photo_id"`
	GroupID string `json:"group_id"`
}

// SubmitHandler runs the scoring pipeline for one photo against one task.
// Failed judging still returns 200 with a rejected submission; only broken
// preconditions are client errors.
func SubmitHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := utils.GetIdentityFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.TaskID == "" || req.PhotoID == "" || req.GroupID == "" {
		writeError(w, "task_id, photo_id and group_id are required", http.StatusBadRequest)
		return
	}

	submission, err := submissions.Submit(r.Context(), identity, req.TaskID, req.PhotoID, req.GroupID)
	switch err {
	case nil:
	case ErrNotGroupMember:
		writeError(w, "You are not a member of this group", http.StatusForbidden)
		return
	case ErrPhotoNotFound:
		writeError(w, "Photo not found", http.StatusNotFound)
		return
	case ErrTaskNotFound:
		writeError(w, "Task not found", http.StatusNotFound)
		return
	case ErrTaskNotInGroup:
		writeError(w, "Task is not assigned to this group", http.StatusBadRequest)
		return
	case ErrNotPhotoOwner:
		writeError(w, "You can only submit your own photos", http.StatusForbidden)
		return
	default:
		writeError(w, "Submission failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"success": true, "submission": submission})
}

type feedEntry struct {
	SubmissionID    string          `json:"submission_id" gorm:"column:submission_id"`
	UserID          string          `json:"user_id" gorm:"column:user_id"`
	DisplayName     string          `json:"display_name" gorm:"column:display_name"`
	TaskID          string          `json:"task_id" gorm:"column:task_id"`
	TaskDescription string          `json:"task_description" gorm:"column:task_description"`
	PhotoURL        string          `json:"photo_url" gorm:"column:photo_url"`
	TotalScore      int             `json:"total_score" gorm:"column:total_score"`
	ScoreBreakdown  datatypes.JSON  `json:"score_breakdown" gorm:"column:score_breakdown"`
	AIComment       string          `json:"ai_comment" gorm:"column:ai_comment"`
	SubmittedAt     time.Time       `json:"submitted_at" gorm:"column:submitted_at"`
	Reactions       ReactionSummary `json:"reactions" gorm:"-"`
}

// FeedHandler returns a group's approved submissions, newest first, hydrated
// with author, task, photo, and reaction summaries. Reaction summaries for
// the whole page come from one aggregate query, not one per entry.
func FeedHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := utils.GetIdentityFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	groupID := chi.URLParam(r, "id")

	allowed, err := EnsureGroupAccess(identity, groupID)
	if err != nil {
		writeError(w, "Failed to fetch feed", http.StatusInternalServerError)
		return
	}
	if !allowed {
		writeError(w, "You are not a member of this group", http.StatusForbidden)
		return
	}

	var entries []feedEntry
	err = db.DB.Raw(`
		SELECT s.submission_id,
		       s.user_id,
		       p.display_name,
		       s.task_id,
		       t.description AS task_description,
		       ph.file_path AS photo_url,
		       s.total_score,
		       s.score_breakdown,
		       s.ai_comment,
		       s.submitted_at
		FROM hunt.submissions s
		JOIN app_auth.profiles p ON p.profile_id = s.user_id
		JOIN hunt.tasks t ON t.task_id = s.task_id
		JOIN hunt.photos ph ON ph.photo_id = s.photo_id
		WHERE s.group_id = ? AND s.is_approved = true
		ORDER BY s.submitted_at DESC`,
		groupID,
	).Scan(&entries).Error
	if err != nil {
		writeError(w, "Failed to fetch feed", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []feedEntry{}
	}

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.SubmissionID
	}
	summaries, err := SummarizeReactions(ids, identity.UserID)
	if err != nil {
		writeError(w, "Failed to fetch feed", http.StatusInternalServerError)
		return
	}
	for i := range entries {
		entries[i].Reactions = summaries[entries[i].SubmissionID]
	}

	writeJSON(w, entries)
}

// ListSubmissionsHandler returns the caller's own submission history
// (approved and rejected), optionally filtered to a group. Admins see
// everyone's.
func ListSubmissionsHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := utils.GetIdentityFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	query := db.DB.Order("submitted_at DESC")
	if !identity.IsAdmin {
		query = query.Where("user_id = ?", identity.UserID)
	}
	if groupID := r.URL.Query().Get("group_id"); groupID != "" {
		query = query.Where("group_id = ?", groupID)
	}

	var subs []Submission
	if err := query.Find(&subs).Error; err != nil {
		writeError(w, "Failed to fetch submissions", http.StatusInternalServerError)
		return
	}
	if subs == nil {
		subs = []Submission{}
	}

	writeJSON(w, subs)
}

type leaderboardEntry struct {
	UserID      string `json:"user_id" gorm:"column:user_id"`
	DisplayName string `json:"display_name" gorm:"column:display_name"`
	TotalScore  int    `json:"total_score" gorm:"column:total_score"`
	Approved    int    `json:"approved_count" gorm:"column:approved_count"`
}

// groupLeaderboard ranks a group's members by the sum of their approved
// scores. Submissions are append-only, so only the latest approved row per
// (user, task) scores; resubmitting an already-approved task replaces its
// contribution instead of stacking it.
func groupLeaderboard(groupID string) ([]leaderboardEntry, error) {
	var entries []leaderboardEntry
	err := db.DB.Raw(`
		SELECT ug.user_id,
		       p.display_name,
		       COALESCE(SUM(best.total_score), 0) AS total_score,
		       COUNT(best.task_id) AS approved_count
		FROM hunt.user_groups ug
		JOIN app_auth.profiles p ON p.profile_id = ug.user_id
		LEFT JOIN (
			SELECT DISTINCT ON (s.user_id, s.task_id)
			       s.user_id, s.task_id, s.total_score
			FROM hunt.submissions s
			WHERE s.group_id = ? AND s.is_approved
			ORDER BY s.user_id, s.task_id, s.submitted_at DESC
		) best ON best.user_id = ug.user_id
		WHERE ug.group_id = ?
		GROUP BY ug.user_id, p.display_name
		ORDER BY total_score DESC, p.display_name ASC`,
		groupID, groupID,
	).Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []leaderboardEntry{}
	}
	return entries, nil
}

// LeaderboardHandler serves the group leaderboard to its members.
func LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := utils.GetIdentityFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	groupID := chi.URLParam(r, "id")

	allowed, err := EnsureGroupAccess(identity, groupID)
	if err != nil {
		writeError(w, "Failed to fetch leaderboard", http.StatusInternalServerError)
		return
	}
	if !allowed {
		writeError(w, "You are not a member of this group", http.StatusForbidden)
		return
	}

	entries, err := groupLeaderboard(groupID)
	if err != nil {
		writeError(w, "Failed to fetch leaderboard", http.StatusInternalServerError)
		return
	}

	writeJSON(w, entries)
}
