package hunt

import (
	"encoding/json"
	"net/http"

	"github.com/SnapQuest/SQ-Backend/internal/db"
	"github.com/SnapQuest/SQ-Backend/internal/live"
	"github.com/SnapQuest/SQ-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

// loadReactableSubmission resolves a submission and checks the caller may
// touch it through its group. Writes the error response itself; callers bail
// on nil.
func loadReactableSubmission(w http.ResponseWriter, r *http.Request, identity utils.Identity) *Submission {
	submissionID := chi.URLParam(r, "id")

	var submission Submission
	err := db.DB.First(&submission, "submission_id = ?", submissionID).Error
	if err == gorm.ErrRecordNotFound {
		writeError(w, "Submission not found", http.StatusNotFound)
		return nil
	}
	if err != nil {
		writeError(w, "Failed to load submission", http.StatusInternalServerError)
		return nil
	}

	allowed, err := EnsureGroupAccess(identity, submission.GroupID)
	if err != nil {
		writeError(w, "Failed to load submission", http.StatusInternalServerError)
		return nil
	}
	if !allowed {
		writeError(w, "You are not a member of this group", http.StatusForbidden)
		return nil
	}

	return &submission
}

// GetReactionsHandler returns the full reactor breakdown for one submission.
func GetReactionsHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := utils.GetIdentityFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	submission := loadReactableSubmission(w, r, identity)
	if submission == nil {
		return
	}

	detail, err := BuildReactionDetail(db.DB, submission.SubmissionID, identity.UserID)
	if err != nil {
		writeError(w, "Failed to fetch reactions", http.StatusInternalServerError)
		return
	}

	writeJSON(w, detail)
}

type reactionRequest struct {
	Emoji string `json:"emoji"`
}

// AddReactionHandler adds the caller's reaction. Responds with the updated
// detail so clients need no follow-up fetch; re-adding an existing reaction
// succeeds without side effects.
func AddReactionHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := utils.GetIdentityFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	submission := loadReactableSubmission(w, r, identity)
	if submission == nil {
		return
	}

	var req reactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	added, err := AddReaction(submission.SubmissionID, identity.UserID, req.Emoji)
	if err == ErrUnsupportedReaction {
		writeError(w, "That emoji is not in the reaction set", http.StatusBadRequest)
		return
	}
	if err != nil {
		writeError(w, "Failed to add reaction", http.StatusInternalServerError)
		return
	}

	respondWithDetail(w, submission, identity.UserID, added)
}

// RemoveReactionHandler removes the caller's reaction; removing one that was
// never there succeeds too.
func RemoveReactionHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := utils.GetIdentityFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	submission := loadReactableSubmission(w, r, identity)
	if submission == nil {
		return
	}

	emoji := r.URL.Query().Get("emoji")
	if emoji == "" {
		var req reactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			emoji = req.Emoji
		}
	}

	removed, err := RemoveReaction(submission.SubmissionID, identity.UserID, emoji)
	if err == ErrUnsupportedReaction {
		writeError(w, "That emoji is not in the reaction set", http.StatusBadRequest)
		return
	}
	if err != nil {
		writeError(w, "Failed to remove reaction", http.StatusInternalServerError)
		return
	}

	respondWithDetail(w, submission, identity.UserID, removed)
}

// respondWithDetail returns the fresh reaction state and, when the state
// actually changed, pushes it to the group's live feed.
func respondWithDetail(w http.ResponseWriter, submission *Submission, viewerID string, changed bool) {
	detail, err := BuildReactionDetail(db.DB, submission.SubmissionID, viewerID)
	if err != nil {
		writeError(w, "Failed to fetch reactions", http.StatusInternalServerError)
		return
	}

	if changed && hub != nil {
		hub.Publish(live.MsgReactionUpdated, submission.GroupID, map[string]any{
			"submission_id": submission.SubmissionID,
			"reactions":     detail.Reactions,
		})
	}

	writeJSON(w, detail)
}

// ReactionEventsHandler exposes the append-only reaction ledger for one
// submission. Admin only.
func ReactionEventsHandler(w http.ResponseWriter, r *http.Request) {
	submissionID := chi.URLParam(r, "id")

	var events []SubmissionReactionEvent
	err := db.DB.
		Where("submission_id = ?", submissionID).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		writeError(w, "Failed to fetch reaction events", http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []SubmissionReactionEvent{}
	}

	writeJSON(w, events)
}
