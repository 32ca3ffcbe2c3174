package hunt

import (
	"time"

	"gorm.io/datatypes"
)

type Group struct {
	GroupID         string    `gorm:"primaryKey" json:"group_id"`
	Name            string    `gorm:"not null;unique" json:"name"`
	Description     string    `json:"description"`
	CreatedByUserID string    `json:"created_by_user_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// UserGroup is the membership row every group-scoped authorization check
// keys on. One row per (user, group).
type UserGroup struct {
	ID       string    `gorm:"primaryKey" json:"id"`
	UserID   string    `gorm:"not null;uniqueIndex:idx_user_group" json:"user_id"`
	GroupID  string    `gorm:"not null;uniqueIndex:idx_user_group" json:"group_id"`
	JoinedAt time.Time `json:"joined_at"`
}

type Task struct {
	TaskID      string    `gorm:"primaryKey" json:"task_id"`
	Description string    `gorm:"not null" json:"description"`
	AIPrompt    string    `gorm:"not null" json:"-"`
	UnlockDate  time.Time `gorm:"not null" json:"unlock_date"`
	CreatedAt   time.Time `json:"created_at"`
}

// TaskGroup assigns a task to a group; submissions are only accepted for
// tasks assigned to the target group.
type TaskGroup struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	TaskID    string    `gorm:"not null;uniqueIndex:idx_task_group" json:"task_id"`
	GroupID   string    `gorm:"not null;uniqueIndex:idx_task_group" json:"group_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Submission is append-only: a resubmission for the same (user, task, group)
// slot is a new row, and reactions attach to the specific historical row.
type Submission struct {
	SubmissionID   string         `gorm:"primaryKey" json:"submission_id"`
	UserID         string         `gorm:"not null;index" json:"user_id"`
	GroupID        string         `gorm:"not null;index" json:"group_id"`
	TaskID         string         `gorm:"not null;index" json:"task_id"`
	PhotoID        string         `gorm:"not null" json:"photo_id"`
	TotalScore     int            `gorm:"not null;default:0" json:"total_score"`
	ScoreBreakdown datatypes.JSON `json:"score_breakdown"`
	IsApproved     bool           `gorm:"not null;default:false" json:"is_approved"`
	AIComment      string         `json:"ai_comment"`
	Valid          bool           `gorm:"not null;default:false" json:"valid"`
	SubmittedAt    time.Time      `gorm:"index" json:"submitted_at"`
}

// SubmissionReaction is the current reaction state; the unique index makes
// concurrent double-adds safe without an application-level existence check.
type SubmissionReaction struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	SubmissionID string    `gorm:"not null;uniqueIndex:idx_submission_user_emoji" json:"submission_id"`
	UserID       string    `gorm:"not null;uniqueIndex:idx_submission_user_emoji" json:"user_id"`
	Emoji        string    `gorm:"not null;uniqueIndex:idx_submission_user_emoji" json:"emoji"`
	CreatedAt    time.Time `json:"created_at"`
}

// SubmissionReactionEvent is the permanent ledger of reaction activity.
// Rows are appended on every actual add/remove and never touched again.
type SubmissionReactionEvent struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	SubmissionID string    `gorm:"not null;index" json:"submission_id"`
	UserID       string    `gorm:"not null" json:"user_id"`
	Emoji        string    `gorm:"not null" json:"emoji"`
	Action       string    `gorm:"not null" json:"action"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

const (
	ReactionActionAdd    = "add"
	ReactionActionRemove = "remove"
)

func (Group) TableName() string                   { return "hunt.groups" }
func (UserGroup) TableName() string               { return "hunt.user_groups" }
func (Task) TableName() string                    { return "hunt.tasks" }
func (TaskGroup) TableName() string               { return "hunt.task_groups" }
func (Submission) TableName() string              { return "hunt.submissions" }
func (SubmissionReaction) TableName() string      { return "hunt.submission_reactions" }
func (SubmissionReactionEvent) TableName() string { return "hunt.submission_reaction_events" }
