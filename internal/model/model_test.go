package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTempIDs(t *testing.T) {
	id := NewTempID()
	assert.True(t, IsTempID(id))
	assert.False(t, IsTempID("srv-1"))
	assert.NotEqual(t, id, NewTempID())
}

func TestCardContentKey(t *testing.T) {
	cases := []struct {
		name string
		a, b Card
		same bool
	}{
		{
			name: "scheme and trailing slash ignored",
			a:    Card{URL: "https://Example.com/post/"},
			b:    Card{URL: "http://example.com/post"},
			same: true,
		},
		{
			name: "query strings distinguish",
			a:    Card{URL: "https://example.com/post?page=1"},
			b:    Card{URL: "https://example.com/post?page=2"},
			same: false,
		},
		{
			name: "title case-insensitive",
			a:    Card{Title: "Reading List"},
			b:    Card{Title: "reading list"},
			same: true,
		},
		{
			name: "keyless cards never collide",
			a:    Card{Base: Base{ID: "a"}},
			b:    Card{Base: Base{ID: "b"}},
			same: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.same {
				assert.Equal(t, tc.a.ContentKey(), tc.b.ContentKey())
			} else {
				assert.NotEqual(t, tc.a.ContentKey(), tc.b.ContentKey())
			}
		})
	}
}

func TestCardValidate(t *testing.T) {
	valid := Card{
		Base: Base{WorkspaceID: "ws"},
		Type: CardTypeURL,
		URL:  "https://example.com",
	}
	assert.NoError(t, valid.Validate())

	noURL := valid
	noURL.URL = ""
	assert.ErrorIs(t, noURL.Validate(), ErrValidation)

	badType := valid
	badType.Type = "bookmark"
	assert.ErrorIs(t, badType.Validate(), ErrValidation)

	note := Card{Base: Base{WorkspaceID: "ws"}, Type: CardTypeText}
	assert.ErrorIs(t, note.Validate(), ErrValidation)
	note.Content = "something"
	assert.NoError(t, note.Validate())
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "side-projects", Slugify("Side Projects"))
	assert.Equal(t, "q3-planning", Slugify("  Q3: Planning!  "))
	assert.Equal(t, "", Slugify("???"))
}

func TestEventValidate(t *testing.T) {
	ev := CalendarEvent{
		Base:  Base{WorkspaceID: "ws"},
		Title: "standup",
		Date:  "2026-09-01",
	}
	assert.NoError(t, ev.Validate())

	bad := ev
	bad.Date = "Sept 1"
	assert.ErrorIs(t, bad.Validate(), ErrValidation)

	backwards := ev
	backwards.EndDate = "2026-08-01"
	assert.ErrorIs(t, backwards.Validate(), ErrValidation)

	freq := ev
	freq.Recurrence = &Recurrence{Frequency: "fortnightly-ish"}
	assert.ErrorIs(t, freq.Validate(), ErrValidation)

	freq.Recurrence = &Recurrence{Frequency: FreqBiweekly}
	assert.NoError(t, freq.Validate())
}

func TestBaseTouchAndConfirm(t *testing.T) {
	now := time.Now().UTC()
	b := Base{ID: "x", Synced: true}

	b.Touch(now)
	assert.False(t, b.Synced)
	assert.Equal(t, now, b.UpdatedAt)
	assert.Equal(t, now, b.LastModified)

	serverAt := now.Add(time.Minute)
	b.LocalOnly = true
	b.ConfirmServer(serverAt)
	assert.True(t, b.Synced)
	assert.False(t, b.LocalOnly)
	require.NotNil(t, b.ServerVersion)
	assert.Equal(t, serverAt, *b.ServerVersion)
	assert.Equal(t, serverAt, b.UpdatedAt)
}

func TestMarkDeleted(t *testing.T) {
	now := time.Now().UTC()
	b := Base{ID: "x", Synced: true}

	b.MarkDeleted(now)
	assert.True(t, b.Deleted)
	require.NotNil(t, b.DeletedAt)
	assert.Equal(t, now, *b.DeletedAt)
	assert.False(t, b.Synced)
}
