package services

import (
	"context"
	"errors"
	"testing"

	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/common"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferences_DefaultThenUpdateRoundTrip(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	got, err := f.prefs.Get(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultPreferences(), *got)

	updated := *got
	updated.Kanban.TodoColor = "#112233"
	require.NoError(t, f.prefs.Update(ctx, "u-1", updated, true))

	got, err = f.prefs.Get(ctx, "u-1")
	require.NoError(t, err)
	want := models.DefaultPreferences()
	want.Kanban.TodoColor = "#112233"
	assert.Equal(t, want, *got)

	assert.Equal(t, [][]string{{"u-1", common.DashboardPath, common.DashboardSettingsPath}}, f.views.calls)
}

func TestPreferences_StoredDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want func(*models.Preferences)
	}{
		{name: "empty object", doc: `{}`, want: func(*models.Preferences) {}},
		{name: "null", doc: `null`, want: func(*models.Preferences) {}},
		{name: "empty column", doc: ``, want: func(*models.Preferences) {}},
		{name: "partial", doc: `{"theme":{"accentColor":"#ff0000"}}`, want: func(p *models.Preferences) {
			p.Theme.AccentColor = "#ff0000"
		}},
		{name: "corrupt", doc: `{"theme":`, want: func(*models.Preferences) {}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, false)
			f.store.prefs["u-1"] = []byte(tt.doc)

			got, err := f.prefs.Get(context.Background(), "u-1")
			require.NoError(t, err)

			want := models.DefaultPreferences()
			tt.want(&want)
			assert.Equal(t, want, *got)
		})
	}
}

func TestPreferences_Errors(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.prefs.Get(ctx, "")
	assert.ErrorIs(t, err, common.ErrorNoUserID)
	assert.ErrorIs(t, f.prefs.Update(ctx, "", models.DefaultPreferences(), true), common.ErrorNoUserID)

	bad := models.DefaultPreferences()
	bad.Theme.FontSize = "huge"
	assert.ErrorIs(t, f.prefs.Update(ctx, "u-1", bad, true), common.ErrorValidation)
	assert.Empty(t, f.store.prefs)

	f.store.prefsGetErr = errors.New("down")
	_, err = f.prefs.Get(ctx, "u-1")
	assert.EqualError(t, err, "error reading preferences: down")

	f.store.prefsSaveErr = errors.New("readonly")
	err = f.prefs.Update(ctx, "u-1", models.DefaultPreferences(), true)
	assert.EqualError(t, err, "error saving preferences: readonly")
	assert.Empty(t, f.views.calls)
}

func TestPreferences_RevalidationSuppressed(t *testing.T) {
	f := newFixture(t, false)

	require.NoError(t, f.prefs.Update(context.Background(), "u-1", models.DefaultPreferences(), false))
	assert.Empty(t, f.views.calls)
}
