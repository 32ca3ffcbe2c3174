package hunt

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/SnapQuest/SQ-Backend/internal/auth"
	"github.com/SnapQuest/SQ-Backend/internal/db"
	"github.com/SnapQuest/SQ-Backend/internal/library"
	"github.com/SnapQuest/SQ-Backend/internal/utils"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// dbAvailable tracks whether the database connection was established; pure
// unit tests in this package run either way.
var dbAvailable bool

func TestMain(m *testing.M) {
	_ = godotenv.Load("../../.env.local")

	if os.Getenv("DATABASE_URL") == "" {
		os.Exit(m.Run())
	}

	db.Connect()
	dbAvailable = true

	auth.Init()
	library.Init(&fakeStore{})
	Init(&fakeStore{}, &fakeJudge{}, nil)

	os.Exit(m.Run())
}

func requireDB(t *testing.T) {
	t.Helper()
	if !dbAvailable {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}
}

// createTestProfile inserts a profile row and registers cleanup.
func createTestProfile(t *testing.T) auth.Profile {
	t.Helper()
	profile := auth.Profile{
		ProfileID:   uuid.NewString(),
		DisplayName: "hunter_" + uuid.NewString()[:8],
		CreatedAt:   time.Now(),
	}
	if err := db.DB.Create(&profile).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}
	t.Cleanup(func() {
		db.DB.Where("profile_id = ?", profile.ProfileID).Delete(&auth.Profile{})
	})
	return profile
}

// createTestGroup inserts a group and registers cleanup.
func createTestGroup(t *testing.T) Group {
	t.Helper()
	group := Group{
		GroupID:   uuid.NewString(),
		Name:      "group_" + uuid.NewString()[:8],
		CreatedAt: time.Now(),
	}
	if err := db.DB.Create(&group).Error; err != nil {
		t.Fatalf("create group: %v", err)
	}
	t.Cleanup(func() {
		db.DB.Where("group_id = ?", group.GroupID).Delete(&Group{})
	})
	return group
}

// enroll adds a membership row and registers cleanup.
func enroll(t *testing.T, profileID, groupID string) {
	t.Helper()
	membership := UserGroup{
		ID:       uuid.NewString(),
		UserID:   profileID,
		GroupID:  groupID,
		JoinedAt: time.Now(),
	}
	if err := db.DB.Create(&membership).Error; err != nil {
		t.Fatalf("create membership: %v", err)
	}
	t.Cleanup(func() {
		db.DB.Where("id = ?", membership.ID).Delete(&UserGroup{})
	})
}

// createTestTask inserts an unlocked task assigned to the group.
func createTestTask(t *testing.T, groupID string) Task {
	t.Helper()
	task := Task{
		TaskID:      uuid.NewString(),
		Description: "task_" + uuid.NewString()[:8],
		AIPrompt:    "a test subject",
		UnlockDate:  time.Now().Add(-time.Hour),
		CreatedAt:   time.Now(),
	}
	if err := db.DB.Create(&task).Error; err != nil {
		t.Fatalf("create task: %v", err)
	}
	assignment := TaskGroup{
		ID:        uuid.NewString(),
		TaskID:    task.TaskID,
		GroupID:   groupID,
		CreatedAt: time.Now(),
	}
	if err := db.DB.Create(&assignment).Error; err != nil {
		t.Fatalf("create assignment: %v", err)
	}
	t.Cleanup(func() {
		db.DB.Where("id = ?", assignment.ID).Delete(&TaskGroup{})
		db.DB.Where("task_id = ?", task.TaskID).Delete(&Task{})
	})
	return task
}

// createTestPhoto inserts a photo row owned by the profile.
func createTestPhoto(t *testing.T, ownerID string) library.Photo {
	t.Helper()
	photo := library.Photo{
		PhotoID:     uuid.NewString(),
		UserID:      ownerID,
		FilePath:    "/uploads/library/test.jpg",
		ContentType: "image/jpeg",
		CreatedAt:   time.Now(),
	}
	if err := db.DB.Create(&photo).Error; err != nil {
		t.Fatalf("create photo: %v", err)
	}
	t.Cleanup(func() {
		db.DB.Where("photo_id = ?", photo.PhotoID).Delete(&library.Photo{})
	})
	return photo
}

// createTestSubmission inserts a bare approved submission row.
func createTestSubmission(t *testing.T, userID, groupID string) Submission {
	t.Helper()
	submission := Submission{
		SubmissionID: uuid.NewString(),
		UserID:       userID,
		GroupID:      groupID,
		TaskID:       uuid.NewString(),
		PhotoID:      uuid.NewString(),
		TotalScore:   80,
		IsApproved:   true,
		Valid:        true,
		SubmittedAt:  time.Now(),
	}
	if err := db.DB.Create(&submission).Error; err != nil {
		t.Fatalf("create submission: %v", err)
	}
	t.Cleanup(func() {
		db.DB.Where("submission_id = ?", submission.SubmissionID).Delete(&SubmissionReactionEvent{})
		db.DB.Where("submission_id = ?", submission.SubmissionID).Delete(&SubmissionReaction{})
		db.DB.Where("submission_id = ?", submission.SubmissionID).Delete(&Submission{})
	})
	return submission
}

// insertSubmission records one submission row with explicit score fields and
// registers cleanup.
func insertSubmission(t *testing.T, userID, groupID, taskID string, score int, approved bool, at time.Time) Submission {
	t.Helper()
	submission := Submission{
		SubmissionID: uuid.NewString(),
		UserID:       userID,
		GroupID:      groupID,
		TaskID:       taskID,
		PhotoID:      uuid.NewString(),
		TotalScore:   score,
		IsApproved:   approved,
		Valid:        approved,
		SubmittedAt:  at,
	}
	if err := db.DB.Create(&submission).Error; err != nil {
		t.Fatalf("create submission: %v", err)
	}
	t.Cleanup(func() {
		db.DB.Where("submission_id = ?", submission.SubmissionID).Delete(&Submission{})
	})
	return submission
}

// TestEnsureGroupAccess_Membership verifies the membership row decides access
// for regular users.
func TestEnsureGroupAccess_Membership(t *testing.T) {
	requireDB(t)
	member := createTestProfile(t)
	outsider := createTestProfile(t)
	group := createTestGroup(t)
	enroll(t, member.ProfileID, group.GroupID)

	ok, err := EnsureGroupAccess(utils.Identity{UserID: member.ProfileID}, group.GroupID)
	if err != nil {
		t.Fatalf("EnsureGroupAccess: %v", err)
	}
	if !ok {
		t.Error("member should pass")
	}

	ok, err = EnsureGroupAccess(utils.Identity{UserID: outsider.ProfileID}, group.GroupID)
	if err != nil {
		t.Fatalf("EnsureGroupAccess: %v", err)
	}
	if ok {
		t.Error("non-member should be denied")
	}
}

// TestAddReactionIdempotent verifies the second identical add is a no-op, the
// ledger records exactly one event, and the summary counts one reaction.
func TestAddReactionIdempotent(t *testing.T) {
	requireDB(t)
	reactor := createTestProfile(t)
	group := createTestGroup(t)
	submission := createTestSubmission(t, createTestProfile(t).ProfileID, group.GroupID)

	added, err := AddReaction(submission.SubmissionID, reactor.ProfileID, "🔥")
	if err != nil {
		t.Fatalf("AddReaction: %v", err)
	}
	if !added {
		t.Fatal("first add should insert")
	}

	added, err = AddReaction(submission.SubmissionID, reactor.ProfileID, "🔥")
	if err != nil {
		t.Fatalf("second AddReaction: %v", err)
	}
	if added {
		t.Error("second identical add should be a no-op")
	}

	var eventCount int64
	db.DB.Model(&SubmissionReactionEvent{}).
		Where("submission_id = ?", submission.SubmissionID).
		Count(&eventCount)
	if eventCount != 1 {
		t.Errorf("ledger has %d events, want 1", eventCount)
	}

	summaries, err := SummarizeReactions([]string{submission.SubmissionID}, reactor.ProfileID)
	if err != nil {
		t.Fatalf("SummarizeReactions: %v", err)
	}
	summary := summaries[submission.SubmissionID]
	if len(summary.Reactions) != 1 {
		t.Fatalf("summary has %d emoji rows, want 1", len(summary.Reactions))
	}
	row := summary.Reactions[0]
	if row.Emoji != "🔥" || row.Count != 1 || !row.ViewerHasReacted {
		t.Errorf("summary row = %+v", row)
	}
	if len(row.SampleReactors) != 1 || row.SampleReactors[0] != reactor.DisplayName {
		t.Errorf("sample reactors = %v", row.SampleReactors)
	}
}

// TestRemoveReactionAuditRoundTrip verifies removal only fires the ledger on
// an actual delete.
func TestRemoveReactionAuditRoundTrip(t *testing.T) {
	requireDB(t)
	reactor := createTestProfile(t)
	group := createTestGroup(t)
	submission := createTestSubmission(t, createTestProfile(t).ProfileID, group.GroupID)

	if _, err := AddReaction(submission.SubmissionID, reactor.ProfileID, "🎉"); err != nil {
		t.Fatalf("AddReaction: %v", err)
	}

	removed, err := RemoveReaction(submission.SubmissionID, reactor.ProfileID, "🎉")
	if err != nil {
		t.Fatalf("RemoveReaction: %v", err)
	}
	if !removed {
		t.Fatal("removal of an existing reaction should delete")
	}

	removed, err = RemoveReaction(submission.SubmissionID, reactor.ProfileID, "🎉")
	if err != nil {
		t.Fatalf("second RemoveReaction: %v", err)
	}
	if removed {
		t.Error("removing an absent reaction should be a no-op")
	}

	var actions []string
	db.DB.Model(&SubmissionReactionEvent{}).
		Where("submission_id = ?", submission.SubmissionID).
		Order("created_at ASC").
		Pluck("action", &actions)
	if len(actions) != 2 || actions[0] != ReactionActionAdd || actions[1] != ReactionActionRemove {
		t.Errorf("ledger actions = %v, want [add remove]", actions)
	}
}

// TestLeaderboardCountsEachTaskOnce verifies resubmitting an already-approved
// task does not stack its score: only the latest approved row per (user, task)
// counts, and rejected rows never count.
func TestLeaderboardCountsEachTaskOnce(t *testing.T) {
	requireDB(t)
	member := createTestProfile(t)
	group := createTestGroup(t)
	enroll(t, member.ProfileID, group.GroupID)

	taskID := uuid.NewString()
	base := time.Now().Add(-time.Hour)
	insertSubmission(t, member.ProfileID, group.GroupID, taskID, 70, true, base)
	insertSubmission(t, member.ProfileID, group.GroupID, taskID, 55, true, base.Add(10*time.Minute))
	insertSubmission(t, member.ProfileID, group.GroupID, uuid.NewString(), 90, false, base.Add(20*time.Minute))

	entries, err := groupLeaderboard(group.GroupID)
	if err != nil {
		t.Fatalf("groupLeaderboard: %v", err)
	}

	var found *leaderboardEntry
	for i := range entries {
		if entries[i].UserID == member.ProfileID {
			found = &entries[i]
			break
		}
	}
	if found == nil {
		t.Fatalf("member missing from leaderboard: %+v", entries)
	}
	if found.TotalScore != 55 {
		t.Errorf("total = %d, want 55 (latest approved row for the task, not the sum of the history)", found.TotalScore)
	}
	if found.Approved != 1 {
		t.Errorf("approved count = %d, want 1 for a single task", found.Approved)
	}
}

// TestLeaderboardIncludesMembersWithoutSubmissions verifies a member with no
// submissions still appears with a zero total.
func TestLeaderboardIncludesMembersWithoutSubmissions(t *testing.T) {
	requireDB(t)
	member := createTestProfile(t)
	group := createTestGroup(t)
	enroll(t, member.ProfileID, group.GroupID)

	entries, err := groupLeaderboard(group.GroupID)
	if err != nil {
		t.Fatalf("groupLeaderboard: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].TotalScore != 0 || entries[0].Approved != 0 {
		t.Errorf("entry = %+v, want zeroed totals", entries[0])
	}
}

// TestSubmit_PreconditionsAndScoring walks the submission pipeline end to end
// against the database with a fake store and judge.
func TestSubmit_PreconditionsAndScoring(t *testing.T) {
	requireDB(t)
	member := createTestProfile(t)
	outsider := createTestProfile(t)
	group := createTestGroup(t)
	enroll(t, member.ProfileID, group.GroupID)
	task := createTestTask(t, group.GroupID)
	photo := createTestPhoto(t, member.ProfileID)

	judge := &fakeJudge{payload: []byte(`{
		"score": 70,
		"breakdown": {"accuracy": 40, "composition": 15, "vibe": 15},
		"is_approved": true,
		"comment": "verified"
	}`)}
	svc := NewSubmissionService(&fakeStore{data: []byte("jpeg-bytes")}, judge, nil)
	ctx := context.Background()

	// Non-member: rejected before any judge call.
	_, err := svc.Submit(ctx, utils.Identity{UserID: outsider.ProfileID}, task.TaskID, photo.PhotoID, group.GroupID)
	if !errors.Is(err, ErrNotGroupMember) {
		t.Fatalf("outsider err = %v, want ErrNotGroupMember", err)
	}
	if judge.called {
		t.Fatal("judge must not run for a non-member")
	}

	// Someone else's photo: rejected.
	otherPhoto := createTestPhoto(t, outsider.ProfileID)
	_, err = svc.Submit(ctx, utils.Identity{UserID: member.ProfileID}, task.TaskID, otherPhoto.PhotoID, group.GroupID)
	if !errors.Is(err, ErrNotPhotoOwner) {
		t.Fatalf("foreign photo err = %v, want ErrNotPhotoOwner", err)
	}

	// Happy path: approved submission recorded.
	submission, err := svc.Submit(ctx, utils.Identity{UserID: member.ProfileID}, task.TaskID, photo.PhotoID, group.GroupID)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	t.Cleanup(func() {
		db.DB.Where("submission_id = ?", submission.SubmissionID).Delete(&Submission{})
	})
	if !submission.IsApproved || submission.TotalScore != 70 {
		t.Errorf("submission = %+v, want approved with 70", submission)
	}

	// Judge failure: still recorded, safely rejected.
	failingSvc := NewSubmissionService(&fakeStore{data: []byte("jpeg-bytes")}, &fakeJudge{err: errors.New("model down")}, nil)
	rejected, err := failingSvc.Submit(ctx, utils.Identity{UserID: member.ProfileID}, task.TaskID, photo.PhotoID, group.GroupID)
	if err != nil {
		t.Fatalf("Submit with failing judge: %v", err)
	}
	t.Cleanup(func() {
		db.DB.Where("submission_id = ?", rejected.SubmissionID).Delete(&Submission{})
	})
	if rejected.IsApproved || rejected.TotalScore != 0 {
		t.Errorf("rejected submission = %+v, want zeroed rejection", rejected)
	}
	if rejected.AIComment != DefaultAIComment {
		t.Errorf("comment = %q, want the default", rejected.AIComment)
	}
}
