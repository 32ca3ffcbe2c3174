package hunt

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/SnapQuest/SQ-Backend/internal/db"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReactionEmojis is the curated set; nothing outside it is accepted.
var ReactionEmojis = []string{"🎉", "🔥", "💡", "😂", "❤️"}

var ErrUnsupportedReaction = errors.New("unsupported reaction emoji")

// maxSampleReactors caps the inline reactor names in feed summaries; the
// full list is a separate detail fetch.
const maxSampleReactors = 3

// maxReactorList caps the per-emoji reactor list on the detail endpoint.
const maxReactorList = 25

// normalizeEmoji brings composed and decomposed emoji sequences onto the
// same form before the curated-set check.
func normalizeEmoji(emoji string) string {
	return norm.NFC.String(strings.TrimSpace(emoji))
}

func supportedEmoji(emoji string) bool {
	for _, e := range ReactionEmojis {
		if e == emoji {
			return true
		}
	}
	return false
}

// appendReactionEvent writes one row to the permanent reaction ledger.
// Best-effort: the primary mutation already succeeded, so a ledger failure
// is logged instead of surfaced.
func appendReactionEvent(submissionID, userID, emoji, action string) {
	event := SubmissionReactionEvent{
		ID:           uuid.NewString(),
		SubmissionID: submissionID,
		UserID:       userID,
		Emoji:        emoji,
		Action:       action,
		CreatedAt:    time.Now(),
	}
	if err := db.DB.Create(&event).Error; err != nil {
		log.Printf("[reactions] failed to append %s event for submission %s: %v", action, submissionID, err)
	}
}

// AddReaction records a reaction. Duplicate adds are no-ops resolved by the
// unique index, not by a check-then-act read, so concurrent double-adds are
// safe by construction. The audit event fires only on an actual insert.
func AddReaction(submissionID, userID, emoji string) (bool, error) {
	emoji = normalizeEmoji(emoji)
	if !supportedEmoji(emoji) {
		return false, ErrUnsupportedReaction
	}

	reaction := SubmissionReaction{
		ID:           uuid.NewString(),
		SubmissionID: submissionID,
		UserID:       userID,
		Emoji:        emoji,
		CreatedAt:    time.Now(),
	}

	result := db.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "submission_id"}, {Name: "user_id"}, {Name: "emoji"}},
		DoNothing: true,
	}).Create(&reaction)
	if result.Error != nil {
		return false, result.Error
	}

	added := result.RowsAffected > 0
	if added {
		appendReactionEvent(submissionID, userID, emoji, ReactionActionAdd)
	}
	return added, nil
}

// RemoveReaction deletes a reaction if present; removing an absent reaction
// is a no-op. The audit event fires only on an actual delete.
func RemoveReaction(submissionID, userID, emoji string) (bool, error) {
	emoji = normalizeEmoji(emoji)
	if !supportedEmoji(emoji) {
		return false, ErrUnsupportedReaction
	}

	result := db.DB.
		Where("submission_id = ? AND user_id = ? AND emoji = ?", submissionID, userID, emoji).
		Delete(&SubmissionReaction{})
	if result.Error != nil {
		return false, result.Error
	}

	removed := result.RowsAffected > 0
	if removed {
		appendReactionEvent(submissionID, userID, emoji, ReactionActionRemove)
	}
	return removed, nil
}

type EmojiSummary struct {
	Emoji            string   `json:"emoji"`
	Count            int      `json:"count"`
	ViewerHasReacted bool     `json:"viewer_has_reacted"`
	SampleReactors   []string `json:"sample_reactors"`
}

type ReactionSummary struct {
	SubmissionID    string         `json:"submission_id"`
	Reactions       []EmojiSummary `json:"reactions"`
	AvailableEmojis []string       `json:"available_emojis"`
}

type reactionSummaryRow struct {
	SubmissionID     string         `gorm:"column:submission_id"`
	Emoji            string         `gorm:"column:emoji"`
	Count            int            `gorm:"column:count"`
	ViewerHasReacted bool           `gorm:"column:viewer_has_reacted"`
	SampleReactors   pq.StringArray `gorm:"column:sample_reactors;type:text[]"`
}

// SummarizeReactions aggregates reactions for many submissions in one query
// (no per-submission round trips), grouped by (submission, emoji) with
// counts, a viewer flag, and a capped sample of reactor names. Every entry
// carries the full curated set so clients can render unreacted affordances.
func SummarizeReactions(submissionIDs []string, viewerID string) (map[string]ReactionSummary, error) {
	summaries := make(map[string]ReactionSummary, len(submissionIDs))
	for _, id := range submissionIDs {
		summaries[id] = ReactionSummary{
			SubmissionID:    id,
			Reactions:       []EmojiSummary{},
			AvailableEmojis: ReactionEmojis,
		}
	}
	if len(submissionIDs) == 0 {
		return summaries, nil
	}

	var rows []reactionSummaryRow
	err := db.DB.Raw(`
		SELECT sr.submission_id,
		       sr.emoji,
		       COUNT(*) AS count,
		       BOOL_OR(sr.user_id = ?) AS viewer_has_reacted,
		       (ARRAY_AGG(p.display_name ORDER BY sr.created_at))[1:?] AS sample_reactors
		FROM hunt.submission_reactions sr
		JOIN app_auth.profiles p ON p.profile_id = sr.user_id
		WHERE sr.submission_id IN ?
		GROUP BY sr.submission_id, sr.emoji
		ORDER BY sr.submission_id, sr.emoji`,
		viewerID, maxSampleReactors, submissionIDs,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		summary := summaries[row.SubmissionID]
		summary.Reactions = append(summary.Reactions, EmojiSummary{
			Emoji:            row.Emoji,
			Count:            row.Count,
			ViewerHasReacted: row.ViewerHasReacted,
			SampleReactors:   row.SampleReactors,
		})
		summaries[row.SubmissionID] = summary
	}

	return summaries, nil
}

type Reactor struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	ReactedAt   time.Time `json:"reacted_at"`
}

type EmojiDetail struct {
	Emoji            string    `json:"emoji"`
	Count            int       `json:"count"`
	ViewerHasReacted bool      `json:"viewer_has_reacted"`
	Reactors         []Reactor `json:"reactors"`
}

type ReactionDetail struct {
	Reactions       []EmojiDetail `json:"reactions"`
	ViewerReactions []string      `json:"viewer_reactions"`
	AvailableEmojis []string      `json:"available_emojis"`
}

type reactionDetailRow struct {
	Emoji       string    `gorm:"column:emoji"`
	UserID      string    `gorm:"column:user_id"`
	DisplayName string    `gorm:"column:display_name"`
	ReactedAt   time.Time `gorm:"column:reacted_at"`
}

// BuildReactionDetail returns the full per-emoji reactor lists for a single
// submission, capped at maxReactorList names each.
func BuildReactionDetail(dbh *gorm.DB, submissionID, viewerID string) (ReactionDetail, error) {
	var rows []reactionDetailRow
	err := dbh.Raw(`
		SELECT sr.emoji, sr.user_id, p.display_name, sr.created_at AS reacted_at
		FROM hunt.submission_reactions sr
		JOIN app_auth.profiles p ON p.profile_id = sr.user_id
		WHERE sr.submission_id = ?
		ORDER BY sr.emoji ASC, sr.created_at ASC`,
		submissionID,
	).Scan(&rows).Error
	if err != nil {
		return ReactionDetail{}, err
	}

	detail := ReactionDetail{
		Reactions:       []EmojiDetail{},
		ViewerReactions: []string{},
		AvailableEmojis: ReactionEmojis,
	}

	index := map[string]int{}
	for _, row := range rows {
		i, ok := index[row.Emoji]
		if !ok {
			i = len(detail.Reactions)
			index[row.Emoji] = i
			detail.Reactions = append(detail.Reactions, EmojiDetail{
				Emoji:    row.Emoji,
				Reactors: []Reactor{},
			})
		}

		entry := &detail.Reactions[i]
		entry.Count++
		if len(entry.Reactors) < maxReactorList {
			entry.Reactors = append(entry.Reactors, Reactor{
				UserID:      row.UserID,
				DisplayName: row.DisplayName,
				ReactedAt:   row.ReactedAt,
			})
		}
		if viewerID != "" && row.UserID == viewerID {
			entry.ViewerHasReacted = true
			detail.ViewerReactions = append(detail.ViewerReactions, row.Emoji)
		}
	}

	return detail, nil
}
