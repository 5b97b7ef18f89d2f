package services

import (
	"context"
	"encoding/json"
	"promptgallery-backend/internal/models"
	"promptgallery-backend/internal/repository"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	UserCacheKeyPrefix = "user:"
	UserCacheDuration  = time.Hour
)

// Identity is what the identity provider asserts about the caller.
type Identity struct {
	UID     string
	Email   string
	Name    string
	Picture string
}

type ProfilePatch struct {
	DisplayName *string `json:"displayName"`
	PhotoURL    *string `json:"photoURL"`
	Bio         *string `json:"bio"`
}

type UserService struct {
	db    *gorm.DB
	cache *redis.Client
	log   *zap.Logger
	now   func() time.Time
}

func NewUserService(db *gorm.DB, cache *redis.Client, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{db: db, cache: cache, log: log, now: time.Now}
}

// EnsureProfile creates the profile of a signed-in identity if it does not
// exist yet. Existing profiles are returned untouched.
func (s *UserService) EnsureProfile(ctx context.Context, identity Identity) (*models.User, error) {
	if identity.UID == "" {
		return nil, ErrUnauthorized
	}
	if user, ok := s.cachedUser(ctx, identity.UID); ok {
		return user, nil
	}

	now := s.now().UTC()
	user := models.User{
		UID:         identity.UID,
		Email:       identity.Email,
		DisplayName: identity.Name,
		PhotoURL:    identity.Picture,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&user).Error
	if err != nil {
		return nil, storeError(repository.Classify(err), ErrUserNotFound)
	}

	return s.GetProfile(ctx, identity.UID)
}

func (s *UserService) GetProfile(ctx context.Context, uid string) (*models.User, error) {
	if user, ok := s.cachedUser(ctx, uid); ok {
		return user, nil
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "uid = ?", uid).Error; err != nil {
		return nil, storeError(repository.Classify(err), ErrUserNotFound)
	}

	s.cacheUser(ctx, &user)
	return &user, nil
}

// UpdateProfile edits the caller's own profile. Prompts keep the author name
// they were created with.
func (s *UserService) UpdateProfile(ctx context.Context, callerID, uid string, patch ProfilePatch) (*models.User, error) {
	if callerID == "" || callerID != uid {
		return nil, ErrUnauthorized
	}
	if err := validateProfilePatch(patch); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"updated_at": s.now().UTC()}
	if patch.DisplayName != nil {
		updates["display_name"] = strings.TrimSpace(*patch.DisplayName)
	}
	if patch.PhotoURL != nil {
		updates["photo_url"] = strings.TrimSpace(*patch.PhotoURL)
	}
	if patch.Bio != nil {
		updates["bio"] = *patch.Bio
	}

	result := s.db.WithContext(ctx).Model(&models.User{}).Where("uid = ?", uid).UpdateColumns(updates)
	if result.Error != nil {
		return nil, storeError(repository.Classify(result.Error), ErrUserNotFound)
	}
	if result.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}

	s.invalidateUser(ctx, uid)
	return s.GetProfile(ctx, uid)
}

func validateProfilePatch(patch ProfilePatch) error {
	var fields []string
	if patch.DisplayName != nil && validate.Var(*patch.DisplayName, "max=80") != nil {
		fields = append(fields, "displayName")
	}
	if patch.PhotoURL != nil && validate.Var(strings.TrimSpace(*patch.PhotoURL), "omitempty,url") != nil {
		fields = append(fields, "photoURL")
	}
	if patch.Bio != nil && validate.Var(*patch.Bio, "max=500") != nil {
		fields = append(fields, "bio")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (s *UserService) cachedUser(ctx context.Context, uid string) (*models.User, bool) {
	if s.cache == nil {
		return nil, false
	}
	val, err := s.cache.Get(ctx, UserCacheKeyPrefix+uid).Result()
	if err != nil {
		return nil, false
	}
	var user models.User
	if err := json.Unmarshal([]byte(val), &user); err != nil {
		return nil, false
	}
	return &user, true
}

func (s *UserService) cacheUser(ctx context.Context, user *models.User) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(user)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, UserCacheKeyPrefix+user.UID, data, UserCacheDuration).Err(); err != nil {
		s.log.Warn("Profile cache write failed", zap.String("uid", user.UID), zap.Error(err))
	}
}

func (s *UserService) invalidateUser(ctx context.Context, uid string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(context.WithoutCancel(ctx), UserCacheKeyPrefix+uid).Err(); err != nil {
		s.log.Warn("Profile cache invalidation failed", zap.String("uid", uid), zap.Error(err))
	}
}
