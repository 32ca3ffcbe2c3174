package hunt

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/SnapQuest/SQ-Backend/internal/db"
	"github.com/SnapQuest/SQ-Backend/internal/library"
	"github.com/SnapQuest/SQ-Backend/internal/live"
	"github.com/SnapQuest/SQ-Backend/internal/storage"
	"github.com/SnapQuest/SQ-Backend/internal/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotGroupMember = errors.New("user is not a member of this group")
	ErrPhotoNotFound  = errors.New("photo not found")
	ErrTaskNotFound   = errors.New("task not found")
	ErrTaskNotInGroup = errors.New("task is not assigned to this group")
	ErrNotPhotoOwner  = errors.New("user does not own this photo")
)

// SubmissionService runs the scoring pipeline: ordered precondition checks,
// photo fetch, judge call, normalization, and the append-only insert.
type SubmissionService struct {
	store storage.ObjectStore
	judge Judge
	hub   *live.Hub
}

func NewSubmissionService(store storage.ObjectStore, judge Judge, hub *live.Hub) *SubmissionService {
	return &SubmissionService{store: store, judge: judge, hub: hub}
}

// Submit validates every precondition before any external call, then scores
// the photo and records the submission. Judge or store failures past the
// precondition gate still produce a recorded, safely-rejected submission;
// they never crash the flow or leave a row without a score outcome.
//
// Precondition order matters: membership is checked before anything else so
// a non-member learns nothing about photos or tasks and costs no judge call.
func (s *SubmissionService) Submit(ctx context.Context, identity utils.Identity, taskID, photoID, groupID string) (*Submission, error) {
	ok, err := EnsureGroupAccess(identity, groupID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotGroupMember
	}

	var photo library.Photo
	err = db.DB.First(&photo, "photo_id = ?", photoID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrPhotoNotFound
	}
	if err != nil {
		return nil, err
	}

	var task Task
	err = db.DB.First(&task, "task_id = ?", taskID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}

	var assignment TaskGroup
	err = db.DB.Where("task_id = ? AND group_id = ?", taskID, groupID).First(&assignment).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrTaskNotInGroup
	}
	if err != nil {
		return nil, err
	}

	if photo.UserID != identity.UserID {
		return nil, ErrNotPhotoOwner
	}

	result := s.scorePhoto(ctx, photo, task)

	breakdownJSON, err := json.Marshal(result.Breakdown)
	if err != nil {
		return nil, err
	}

	submission := Submission{
		SubmissionID:   uuid.NewString(),
		UserID:         identity.UserID,
		GroupID:        groupID,
		TaskID:         taskID,
		PhotoID:        photoID,
		TotalScore:     result.TotalScore,
		ScoreBreakdown: breakdownJSON,
		IsApproved:     result.IsApproved,
		AIComment:      result.AIComment,
		Valid:          result.IsApproved,
		SubmittedAt:    time.Now(),
	}

	// Append-only: resubmissions add history instead of replacing the slot,
	// so reactions and audit rows always reference a row that still exists.
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&submission).Error
	})
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.Publish(live.MsgSubmissionCreated, groupID, submission)
	}

	return &submission, nil
}

// scorePhoto fetches the bytes, invokes the judge under a bounded timeout,
// and normalizes the result. Every failure path collapses to the safe
// rejected outcome.
func (s *SubmissionService) scorePhoto(ctx context.Context, photo library.Photo, task Task) ScoreResult {
	image, err := s.store.Get(s.store.KeyFromURL(photo.FilePath))
	if err != nil {
		log.Printf("[submissions] photo fetch failed for %s: %v", photo.PhotoID, err)
		return SafeFailureResult()
	}

	judgeCtx, cancel := context.WithTimeout(ctx, JudgeTimeout)
	defer cancel()

	raw, err := s.judge.Judge(judgeCtx, image, photo.ContentType, BuildJudgePrompt(task))
	if err != nil {
		log.Printf("[submissions] judge call failed for task %s: %v", task.TaskID, err)
		return SafeFailureResult()
	}

	result, err := NormalizeJudgeResponse(raw)
	if err != nil {
		log.Printf("[submissions] judge response rejected for task %s: %v", task.TaskID, err)
		return SafeFailureResult()
	}
	return result
}
