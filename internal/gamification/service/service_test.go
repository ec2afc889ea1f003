package service

import (
	"context"
	"testing"
	"time"

	"github.com/adlift/cashout/internal/clock"
	"github.com/adlift/cashout/internal/gamification/domain"
	"github.com/adlift/cashout/internal/migration"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newGamificationService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(db))

	clk := clock.NewFakeClock(time.Date(2026, 8, 15, 9, 0, 0, 0, time.UTC))
	svc := NewService(ServiceParam{DB: db, Log: zap.NewNop(), Clock: clk})
	return svc, db
}

func TestHandleFirstInvoice(t *testing.T) {
	svc, db := newGamificationService(t)
	ctx := context.Background()

	seed := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&domain.PlatformUser{
		ID: "user_1", IsNew: true, CreatedAt: seed, UpdatedAt: seed,
	}).Error)
	require.NoError(t, db.Create(&domain.GamificationState{
		UserID: "user_1", Level: "starting", Visible: true, UpdatedAt: seed,
	}).Error)

	t.Run("First Call Flips Flags", func(t *testing.T) {
		require.NoError(t, svc.HandleFirstInvoice(ctx, "user_1"))

		var user domain.PlatformUser
		require.NoError(t, db.First(&user, "id = ?", "user_1").Error)
		assert.True(t, user.HasEmittedFirstInvoice)
		assert.False(t, user.IsNew)

		var state domain.GamificationState
		require.NoError(t, db.First(&state, "user_id = ?", "user_1").Error)
		assert.False(t, state.Visible)
	})

	t.Run("Second Call Is A No-Op", func(t *testing.T) {
		var before domain.PlatformUser
		require.NoError(t, db.First(&before, "id = ?", "user_1").Error)

		require.NoError(t, svc.HandleFirstInvoice(ctx, "user_1"))

		var after domain.PlatformUser
		require.NoError(t, db.First(&after, "id = ?", "user_1").Error)
		assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
		assert.True(t, after.HasEmittedFirstInvoice)
	})

	t.Run("Unknown User", func(t *testing.T) {
		assert.NoError(t, svc.HandleFirstInvoice(ctx, "user_ghost"))
	})
}
