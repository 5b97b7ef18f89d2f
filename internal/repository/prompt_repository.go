package repository

import (
	"context"
	"promptgallery-backend/internal/models"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PromptFilter narrows Find. Zero values mean "no constraint".
type PromptFilter struct {
	IsPublic *bool
	Category models.Category
	AuthorID string
	Limit    int
}

// AuthorStats aggregates the engagement of one author's prompts.
type AuthorStats struct {
	Prompts       int64 `json:"prompts"`
	PublicPrompts int64 `json:"publicPrompts"`
	Likes         int64 `json:"likes"`
	Copies        int64 `json:"copies"`
}

// PromptRepository is the persistence contract of the catalog.
type PromptRepository interface {
	Create(ctx context.Context, prompt *models.Prompt) error
	Get(ctx context.Context, id string) (*models.Prompt, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	Find(ctx context.Context, filter PromptFilter) ([]models.Prompt, error)

	// ToggleLike flips the (user, prompt) like and adjusts the counter in one
	// transaction. It returns the new state.
	ToggleLike(ctx context.Context, promptID, userID string) (bool, error)
	HasLike(ctx context.Context, promptID, userID string) (bool, error)
	LikedPromptIDs(ctx context.Context, userID string) ([]string, error)
	CountLikes(ctx context.Context, promptID string) (int64, error)

	// IncrementCopies adds one copy and records the event in one transaction.
	IncrementCopies(ctx context.Context, event *models.CopyEvent) error

	// SeedOnce inserts prompts unless the marker already exists. It reports
	// whether this call performed the insert.
	SeedOnce(ctx context.Context, marker string, prompts []models.Prompt) (bool, error)

	AuthorStats(ctx context.Context, authorID string) (AuthorStats, error)
}

// Columns a partial update may touch.
var updatableColumns = map[string]bool{
	"title":      true,
	"content":    true,
	"category":   true,
	"is_public":  true,
	"image_url":  true,
	"image_key":  true,
	"updated_at": true,
}

type GormPromptRepository struct {
	db *gorm.DB
}

func NewPromptRepository(db *gorm.DB) *GormPromptRepository {
	return &GormPromptRepository{db: db}
}

func (r *GormPromptRepository) Create(ctx context.Context, prompt *models.Prompt) error {
	return Classify(r.db.WithContext(ctx).Create(prompt).Error)
}

func (r *GormPromptRepository) Get(ctx context.Context, id string) (*models.Prompt, error) {
	var prompt models.Prompt
	if err := r.db.WithContext(ctx).First(&prompt, "id = ?", id).Error; err != nil {
		return nil, Classify(err)
	}
	return &prompt, nil
}

func (r *GormPromptRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	updates := make(map[string]interface{}, len(fields))
	for column, value := range fields {
		if updatableColumns[column] {
			updates[column] = value
		}
	}
	if len(updates) == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).Model(&models.Prompt{}).Where("id = ?", id).UpdateColumns(updates)
	if result.Error != nil {
		return Classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the prompt together with its likes and copy events.
func (r *GormPromptRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("prompt_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("prompt_id = ?", id).Delete(&models.CopyEvent{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&models.Prompt{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	return Classify(err)
}

func (r *GormPromptRepository) Find(ctx context.Context, filter PromptFilter) ([]models.Prompt, error) {
	query := r.db.WithContext(ctx).Model(&models.Prompt{})

	if filter.IsPublic != nil {
		query = query.Where("is_public = ?", *filter.IsPublic)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.AuthorID != "" {
		query = query.Where("author_id = ?", filter.AuthorID)
	}

	query = query.Order("created_at desc")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	prompts := []models.Prompt{}
	if err := query.Find(&prompts).Error; err != nil {
		return nil, Classify(err)
	}
	return prompts, nil
}

func (r *GormPromptRepository) ToggleLike(ctx context.Context, promptID, userID string) (bool, error) {
	var liked bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Prompt{}).Where("id = ?", promptID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}

		now := time.Now().UTC()

		// Delete-if-present first; the affected row count decides the direction.
		removed := tx.Where("user_id = ? AND prompt_id = ?", userID, promptID).Delete(&models.Like{})
		if removed.Error != nil {
			return removed.Error
		}
		if removed.RowsAffected == 1 {
			liked = false
			return adjustLikes(tx, promptID, -1, now)
		}

		like := models.Like{UserID: userID, PromptID: promptID, CreatedAt: now}
		inserted := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like)
		if inserted.Error != nil {
			return inserted.Error
		}
		if inserted.RowsAffected == 0 {
			// Another request liked between our delete and insert.
			return ErrLikeConflict
		}
		liked = true
		return adjustLikes(tx, promptID, 1, now)
	})
	if err != nil {
		return false, Classify(err)
	}

	return liked, nil
}

func adjustLikes(tx *gorm.DB, promptID string, delta int, now time.Time) error {
	query := tx.Model(&models.Prompt{}).Where("id = ?", promptID)
	if delta < 0 {
		query = query.Where("likes >= ?", -delta)
	}

	result := query.UpdateColumns(map[string]interface{}{
		"likes":      gorm.Expr("likes + ?", delta),
		"updated_at": now,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return ErrLikeConflict
	}
	return nil
}

func (r *GormPromptRepository) HasLike(ctx context.Context, promptID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND prompt_id = ?", userID, promptID).
		Count(&count).Error
	if err != nil {
		return false, Classify(err)
	}
	return count > 0, nil
}

func (r *GormPromptRepository) LikedPromptIDs(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Pluck("prompt_id", &ids).Error
	if err != nil {
		return nil, Classify(err)
	}
	return ids, nil
}

func (r *GormPromptRepository) CountLikes(ctx context.Context, promptID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).Where("prompt_id = ?", promptID).Count(&count).Error; err != nil {
		return 0, Classify(err)
	}
	return count, nil
}

func (r *GormPromptRepository) IncrementCopies(ctx context.Context, event *models.CopyEvent) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		result := tx.Model(&models.Prompt{}).Where("id = ?", event.PromptID).UpdateColumns(map[string]interface{}{
			"copies":     gorm.Expr("copies + ?", 1),
			"updated_at": now,
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}

		if event.CreatedAt.IsZero() {
			event.CreatedAt = now
		}
		return tx.Create(event).Error
	})
	return Classify(err)
}

func (r *GormPromptRepository) SeedOnce(ctx context.Context, marker string, prompts []models.Prompt) (bool, error) {
	var inserted bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The marker insert serializes concurrent seeders: only the
		// transaction that actually created it goes on to insert prompts.
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.SeedMarker{Name: marker, CreatedAt: time.Now().UTC()})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		if len(prompts) > 0 {
			if err := tx.CreateInBatches(&prompts, 100).Error; err != nil {
				return err
			}
		}
		inserted = true
		return nil
	})
	if err != nil {
		return false, Classify(err)
	}

	return inserted, nil
}

func (r *GormPromptRepository) AuthorStats(ctx context.Context, authorID string) (AuthorStats, error) {
	var stats AuthorStats
	err := r.db.WithContext(ctx).Model(&models.Prompt{}).
		Select(`COUNT(*) AS prompts,
			COALESCE(SUM(CASE WHEN is_public THEN 1 ELSE 0 END), 0) AS public_prompts,
			COALESCE(SUM(likes), 0) AS likes,
			COALESCE(SUM(copies), 0) AS copies`).
		Where("author_id = ?", authorID).
		Scan(&stats).Error
	if err != nil {
		return AuthorStats{}, Classify(err)
	}
	return stats, nil
}
