package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"promptgallery-backend/internal/models"
	"promptgallery-backend/internal/repository"
	"promptgallery-backend/internal/seed"
	"promptgallery-backend/internal/storage"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const (
	PublicCacheKeyPrefix = "prompts:public:"
	LikeLockKeyPrefix    = "like:lock:"
	LikeLockTTL          = 5 * time.Second
)

// releaseLock deletes the guard only while it still holds our token.
var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

type CatalogOptions struct {
	PublicListLimit int
	PublicCacheTTL  time.Duration
	SeedDemoPrompts bool
}

// CreatePromptInput is the data of a new prompt. AuthorID must match the caller.
type CreatePromptInput struct {
	Title      string `json:"title" validate:"notblank"`
	Content    string `json:"content" validate:"notblank"`
	Category   string `json:"category" validate:"notblank"`
	IsPublic   bool   `json:"isPublic"`
	AuthorID   string `json:"authorId"`
	AuthorName string `json:"authorName"`
}

// PromptPatch lists the editable fields. Nil means unchanged. Counters are
// not editable.
type PromptPatch struct {
	Title    *string
	Content  *string
	Category *string
	IsPublic *bool
	ImageURL *string
}

type ImageUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type CatalogService struct {
	repo   repository.PromptRepository
	assets storage.AssetStore
	cache  *redis.Client
	log    *zap.Logger
	opts   CatalogOptions
	now    func() time.Time

	seeded atomic.Bool
}

func NewCatalogService(repo repository.PromptRepository, assets storage.AssetStore, cache *redis.Client, log *zap.Logger, opts CatalogOptions) *CatalogService {
	if assets == nil {
		assets = storage.NoopStore{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if opts.PublicListLimit <= 0 {
		opts.PublicListLimit = 50
	}
	return &CatalogService{
		repo:   repo,
		assets: assets,
		cache:  cache,
		log:    log,
		opts:   opts,
		now:    time.Now,
	}
}

// ListPublicPrompts returns the newest public prompts, optionally of a single
// category. An empty, never seeded catalog is seeded once on the way.
func (s *CatalogService) ListPublicPrompts(ctx context.Context, category string) ([]models.Prompt, error) {
	var cat models.Category
	if strings.TrimSpace(category) != "" {
		cat = models.ParseCategory(category)
	}

	key := publicCacheKey(cat)
	if prompts, ok := s.cachedPrompts(ctx, key); ok {
		return prompts, nil
	}

	prompts, err := s.loadPublic(ctx, cat, s.opts.PublicListLimit)
	if err != nil {
		return nil, err
	}

	if len(prompts) > 0 {
		s.cachePrompts(ctx, key, prompts)
	}
	return prompts, nil
}

func (s *CatalogService) loadPublic(ctx context.Context, cat models.Category, limit int) ([]models.Prompt, error) {
	public := true
	filter := repository.PromptFilter{IsPublic: &public, Category: cat, Limit: limit}

	prompts, err := s.repo.Find(ctx, filter)
	if err != nil {
		return nil, storeError(err, ErrPromptNotFound)
	}
	if len(prompts) > 0 || !s.opts.SeedDemoPrompts || s.seeded.Load() {
		return prompts, nil
	}

	if err := s.seedDemoPrompts(ctx); err != nil {
		return []models.Prompt{}, nil
	}

	prompts, err = s.repo.Find(ctx, filter)
	if err != nil {
		return nil, storeError(err, ErrPromptNotFound)
	}
	return prompts, nil
}

func (s *CatalogService) seedDemoPrompts(ctx context.Context) error {
	prompts, err := seed.DemoPrompts(s.now())
	if err != nil {
		s.log.Error("Failed to load demo prompts", zap.Error(err))
		return err
	}

	inserted, err := s.repo.SeedOnce(ctx, seed.MarkerName, prompts)
	if err != nil {
		s.log.Error("Failed to seed demo prompts", zap.Error(err))
		return err
	}

	s.seeded.Store(true)
	if inserted {
		s.log.Info("Seeded demo prompts", zap.Int("count", len(prompts)))
		s.invalidatePublic(ctx)
	}
	return nil
}

// ListUserPrompts returns every prompt of the author, newest first.
func (s *CatalogService) ListUserPrompts(ctx context.Context, authorID string) ([]models.Prompt, error) {
	if authorID == "" {
		return nil, ErrUnauthorized
	}
	prompts, err := s.repo.Find(ctx, repository.PromptFilter{AuthorID: authorID})
	if err != nil {
		return nil, storeError(err, ErrPromptNotFound)
	}
	return prompts, nil
}

// GetPrompt returns a prompt visible to viewerID. Private prompts of other
// authors are reported as missing.
func (s *CatalogService) GetPrompt(ctx context.Context, promptID, viewerID string) (*models.Prompt, error) {
	prompt, err := s.repo.Get(ctx, promptID)
	if err != nil {
		return nil, storeError(err, ErrPromptNotFound)
	}
	if !prompt.IsPublic && (viewerID == "" || prompt.AuthorID != viewerID) {
		return nil, ErrPromptNotFound
	}
	return prompt, nil
}

func (s *CatalogService) CreatePrompt(ctx context.Context, callerID string, input CreatePromptInput, image *ImageUpload) (string, error) {
	if callerID == "" || callerID != input.AuthorID {
		return "", ErrUnauthorized
	}
	if err := validateStruct(input); err != nil {
		return "", err
	}

	now := s.now().UTC()
	prompt := &models.Prompt{
		Title:      strings.TrimSpace(input.Title),
		Content:    input.Content,
		Category:   models.ParseCategory(input.Category),
		AuthorID:   input.AuthorID,
		AuthorName: input.AuthorName,
		IsPublic:   input.IsPublic,
		Likes:      0,
		Copies:     0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, prompt); err != nil {
		return "", storeError(err, ErrPromptNotFound)
	}
	s.invalidatePublic(ctx)

	if image != nil && image.Body != nil {
		s.attachImage(ctx, prompt.ID, image)
	}

	return prompt.ID, nil
}

// attachImage uploads the image of a freshly created prompt. Failures leave
// the prompt without an image.
func (s *CatalogService) attachImage(ctx context.Context, promptID string, image *ImageUpload) {
	key := storage.PromptImageKey(promptID, image.Filename)

	url, err := s.assets.Put(ctx, key, image.Body, image.ContentType)
	if err != nil {
		s.log.Warn("Prompt image upload failed", zap.String("prompt_id", promptID), zap.String("key", key), zap.Error(err))
		return
	}

	err = s.repo.Update(ctx, promptID, map[string]interface{}{
		"image_url":  url,
		"image_key":  key,
		"updated_at": s.now().UTC(),
	})
	if err != nil {
		s.log.Warn("Failed to store prompt image url", zap.String("prompt_id", promptID), zap.Error(err))
		s.releaseAsset(ctx, promptID, key)
		return
	}
	s.invalidatePublic(ctx)
}

func (s *CatalogService) UpdatePrompt(ctx context.Context, promptID, callerID string, patch PromptPatch) (*models.Prompt, error) {
	existing, err := s.ownedPrompt(ctx, promptID, callerID)
	if err != nil {
		return nil, err
	}

	var invalid []string
	if isBlank(patch.Title) {
		invalid = append(invalid, "title")
	}
	if isBlank(patch.Content) {
		invalid = append(invalid, "content")
	}
	if len(invalid) > 0 {
		return nil, &ValidationError{Fields: invalid}
	}

	fields := map[string]interface{}{"updated_at": s.now().UTC()}
	if patch.Title != nil {
		fields["title"] = strings.TrimSpace(*patch.Title)
	}
	if patch.Content != nil {
		fields["content"] = *patch.Content
	}
	if patch.Category != nil {
		fields["category"] = models.ParseCategory(*patch.Category)
	}
	if patch.IsPublic != nil {
		fields["is_public"] = *patch.IsPublic
	}

	var staleKey string
	if patch.ImageURL != nil && *patch.ImageURL != existing.ImageURL {
		fields["image_url"] = *patch.ImageURL
		fields["image_key"] = ""
		staleKey = existing.ImageKey
	}

	if err := s.repo.Update(ctx, promptID, fields); err != nil {
		return nil, storeError(err, ErrPromptNotFound)
	}
	s.invalidatePublic(ctx)

	if staleKey != "" {
		s.releaseAsset(ctx, promptID, staleKey)
	}

	updated, err := s.repo.Get(ctx, promptID)
	if err != nil {
		return nil, storeError(err, ErrPromptNotFound)
	}
	return updated, nil
}

// DeletePrompt removes the prompt with its likes and copy events, then its image.
func (s *CatalogService) DeletePrompt(ctx context.Context, promptID, callerID string) error {
	existing, err := s.ownedPrompt(ctx, promptID, callerID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, promptID); err != nil {
		return storeError(err, ErrPromptNotFound)
	}
	s.invalidatePublic(ctx)

	if existing.ImageKey != "" {
		s.releaseAsset(ctx, promptID, existing.ImageKey)
	}
	return nil
}

func (s *CatalogService) ownedPrompt(ctx context.Context, promptID, callerID string) (*models.Prompt, error) {
	if callerID == "" {
		return nil, ErrUnauthorized
	}
	prompt, err := s.repo.Get(ctx, promptID)
	if err != nil {
		return nil, storeError(err, ErrPromptNotFound)
	}
	if prompt.AuthorID != callerID {
		return nil, ErrUnauthorized
	}
	return prompt, nil
}

func (s *CatalogService) releaseAsset(ctx context.Context, promptID, key string) {
	if err := s.assets.Delete(ctx, key); err != nil {
		s.log.Warn("Failed to delete prompt image", zap.String("prompt_id", promptID), zap.String("key", key), zap.Error(err))
	}
}

// ToggleLike likes or unlikes the prompt for userID and returns the new state.
func (s *CatalogService) ToggleLike(ctx context.Context, promptID, userID string) (bool, error) {
	if userID == "" {
		return false, ErrUnauthorized
	}

	release, err := s.acquireLikeGuard(ctx, promptID, userID)
	if err != nil {
		return false, err
	}
	defer release()

	liked, err := s.repo.ToggleLike(ctx, promptID, userID)
	if err != nil {
		return false, storeError(err, ErrPromptNotFound)
	}
	s.invalidatePublic(ctx)

	return liked, nil
}

// acquireLikeGuard marks a toggle of (user, prompt) as in flight across
// instances. Without Redis the database transaction alone arbitrates.
func (s *CatalogService) acquireLikeGuard(ctx context.Context, promptID, userID string) (func(), error) {
	noop := func() {}
	if s.cache == nil {
		return noop, nil
	}

	key := LikeLockKeyPrefix + userID + ":" + promptID
	token := uuid.NewString()

	ok, err := s.cache.SetNX(ctx, key, token, LikeLockTTL).Result()
	if err != nil {
		s.log.Warn("Like guard unavailable", zap.String("key", key), zap.Error(err))
		return noop, nil
	}
	if !ok {
		return nil, fmt.Errorf("%w: like already in progress", ErrTransientStore)
	}

	return func() {
		if err := releaseLock.Run(context.WithoutCancel(ctx), s.cache, []string{key}, token).Err(); err != nil {
			s.log.Warn("Failed to release like guard", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

func (s *CatalogService) HasUserLiked(ctx context.Context, promptID, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	liked, err := s.repo.HasLike(ctx, promptID, userID)
	if err != nil {
		return false, storeError(err, ErrPromptNotFound)
	}
	return liked, nil
}

// IncrementCopyCount records one copy. It never fails the caller and never
// retries, so a copy is counted at most once.
func (s *CatalogService) IncrementCopyCount(ctx context.Context, promptID, userID string, metadata map[string]interface{}) {
	event := &models.CopyEvent{
		PromptID: promptID,
		UserID:   userID,
		Metadata: datatypes.JSONMap(metadata),
	}

	if err := s.repo.IncrementCopies(ctx, event); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("Copy of unknown prompt ignored", zap.String("prompt_id", promptID))
			return
		}
		s.log.Error("Failed to increment copy count", zap.String("prompt_id", promptID), zap.Error(err))
		return
	}
	s.invalidatePublic(ctx)
}

// SearchPrompts filters the whole public catalog by a case-insensitive
// substring of title, content or category. Order stays newest first.
func (s *CatalogService) SearchPrompts(ctx context.Context, term string) ([]models.Prompt, error) {
	prompts, err := s.loadPublic(ctx, "", 0)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return prompts, nil
	}

	matches := make([]models.Prompt, 0, len(prompts))
	for _, p := range prompts {
		if matchesTerm(p, needle) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

func matchesTerm(p models.Prompt, needle string) bool {
	return strings.Contains(strings.ToLower(p.Title), needle) ||
		strings.Contains(strings.ToLower(p.Content), needle) ||
		strings.Contains(strings.ToLower(string(p.Category)), needle) ||
		strings.Contains(strings.ToLower(p.Category.Info().Label), needle)
}

func (s *CatalogService) ListLikedPromptIDs(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	ids, err := s.repo.LikedPromptIDs(ctx, userID)
	if err != nil {
		return nil, storeError(err, ErrPromptNotFound)
	}
	return ids, nil
}

func (s *CatalogService) AuthorStats(ctx context.Context, authorID string) (repository.AuthorStats, error) {
	if authorID == "" {
		return repository.AuthorStats{}, ErrUnauthorized
	}
	stats, err := s.repo.AuthorStats(ctx, authorID)
	if err != nil {
		return repository.AuthorStats{}, storeError(err, ErrPromptNotFound)
	}
	return stats, nil
}

func publicCacheKey(cat models.Category) string {
	if cat == "" {
		return PublicCacheKeyPrefix + "all"
	}
	return PublicCacheKeyPrefix + string(cat)
}

func publicCacheKeys() []string {
	keys := make([]string, 0, len(models.Categories)+1)
	keys = append(keys, publicCacheKey(""))
	for _, info := range models.Categories {
		keys = append(keys, publicCacheKey(info.ID))
	}
	return keys
}

func (s *CatalogService) cachedPrompts(ctx context.Context, key string) ([]models.Prompt, bool) {
	if s.cache == nil {
		return nil, false
	}
	val, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			s.log.Warn("Public prompt cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var prompts []models.Prompt
	if err := json.Unmarshal([]byte(val), &prompts); err != nil {
		return nil, false
	}
	return prompts, true
}

func (s *CatalogService) cachePrompts(ctx context.Context, key string, prompts []models.Prompt) {
	if s.cache == nil || s.opts.PublicCacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(prompts)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.opts.PublicCacheTTL).Err(); err != nil {
		s.log.Warn("Public prompt cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *CatalogService) invalidatePublic(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(context.WithoutCancel(ctx), publicCacheKeys()...).Err(); err != nil {
		s.log.Warn("Public prompt cache invalidation failed", zap.Error(err))
	}
}
