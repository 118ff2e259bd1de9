package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/learnit-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(domain.AllModels()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return EnsureIndexes(db)
}

// EnsureIndexes adds the indexes AutoMigrate does not express. The partial
// unique index backs the one-active-session rule under concurrent starts.
func EnsureIndexes(db *gorm.DB) error {
	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_session_one_active ON learning_sessions (user_id) WHERE is_active`,
		`CREATE INDEX IF NOT EXISTS idx_session_user_ended ON learning_sessions (user_id, end_time)`,
		`CREATE INDEX IF NOT EXISTS idx_notification_user_read ON notifications (user_id, read)`,
		`CREATE INDEX IF NOT EXISTS idx_achievement_user_earned ON achievements (user_id, earned_at)`,
		`CREATE INDEX IF NOT EXISTS idx_lessons_chapter ON lessons (chapter_id)`,
		`CREATE INDEX IF NOT EXISTS idx_chapters_module ON chapters (module_id)`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("ensure index: %w", err)
		}
	}
	return nil
}
