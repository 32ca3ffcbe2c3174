package hunt

import (
	"errors"
	"testing"
)

// TestAddReaction_RejectsUnsupportedEmoji verifies that anything outside the
// curated set fails before any store access (db.DB is nil here).
func TestAddReaction_RejectsUnsupportedEmoji(t *testing.T) {
	for _, emoji := range []string{"", "👍", "🙈", "heart", "❤️❤️"} {
		added, err := AddReaction("sub-1", "profile-1", emoji)
		if !errors.Is(err, ErrUnsupportedReaction) {
			t.Errorf("AddReaction(%q) err = %v, want ErrUnsupportedReaction", emoji, err)
		}
		if added {
			t.Errorf("AddReaction(%q) reported an insert", emoji)
		}
	}
}

// TestRemoveReaction_RejectsUnsupportedEmoji mirrors the add-side check.
func TestRemoveReaction_RejectsUnsupportedEmoji(t *testing.T) {
	removed, err := RemoveReaction("sub-1", "profile-1", "👍")
	if !errors.Is(err, ErrUnsupportedReaction) {
		t.Errorf("err = %v, want ErrUnsupportedReaction", err)
	}
	if removed {
		t.Error("reported a delete for an unsupported emoji")
	}
}

// TestNormalizeEmoji verifies whitespace trimming and that every curated emoji
// survives normalization unchanged.
func TestNormalizeEmoji(t *testing.T) {
	if got := normalizeEmoji("  🔥 "); got != "🔥" {
		t.Errorf("normalizeEmoji trimmed = %q", got)
	}

	for _, emoji := range ReactionEmojis {
		if got := normalizeEmoji(emoji); got != emoji {
			t.Errorf("curated emoji %q changed to %q under normalization", emoji, got)
		}
		if !supportedEmoji(emoji) {
			t.Errorf("curated emoji %q failed its own membership check", emoji)
		}
	}
}
