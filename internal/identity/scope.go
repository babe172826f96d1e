package identity

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OwnedBy returns a GORM scope that filters by user_id.
func OwnedBy(userID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

// WithAuthor preloads the author's id and name. Deleted accounts are not
// loaded, so their content renders as models.AnonymousName.
func WithAuthor(db *gorm.DB) *gorm.DB {
	return db.Preload("User", func(tx *gorm.DB) *gorm.DB {
		return tx.Select("id", "name")
	})
}
