package services

import (
	"context"
	"promptgallery-backend/internal/models"
	"promptgallery-backend/internal/repository"
	"promptgallery-backend/internal/seed"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

type catalogEnv struct {
	svc    *CatalogService
	db     *gorm.DB
	repo   *repository.GormPromptRepository
	mr     *miniredis.Miniredis
	logs   *observer.ObservedLogs
	assets *fakeAssetStore
}

func newCatalogEnv(t *testing.T, opts CatalogOptions) *catalogEnv {
	return newCatalogEnvWith(t, opts, func(r repository.PromptRepository) repository.PromptRepository { return r })
}

func newCatalogEnvWith(t *testing.T, opts CatalogOptions, wrap func(repository.PromptRepository) repository.PromptRepository) *catalogEnv {
	t.Helper()

	db := setupTestDB(t)
	mr, client := setupTestRedis(t)
	log, logs := observedLogger()
	repo := repository.NewPromptRepository(db)
	assets := newFakeAssetStore()

	if opts.PublicCacheTTL == 0 {
		opts.PublicCacheTTL = time.Minute
	}
	svc := NewCatalogService(wrap(repo), assets, client, log, opts)
	svc.now = steppingClock(time.Now())

	return &catalogEnv{svc: svc, db: db, repo: repo, mr: mr, logs: logs, assets: assets}
}

func (e *catalogEnv) create(t *testing.T, author, title string, public bool) string {
	t.Helper()
	id, err := e.svc.CreatePrompt(context.Background(), author, CreatePromptInput{
		Title:      title,
		Content:    "Write about " + title,
		Category:   "code",
		IsPublic:   public,
		AuthorID:   author,
		AuthorName: "Name of " + author,
	}, nil)
	require.NoError(t, err)
	return id
}

func TestListPublicPromptsSeedsEmptyCatalog(t *testing.T) {
	env := newCatalogEnv(t, CatalogOptions{SeedDemoPrompts: true})
	ctx := context.Background()

	prompts, err := env.svc.ListPublicPrompts(ctx, "")
	require.NoError(t, err)

	entries, err := seed.Entries()
	require.NoError(t, err)
	require.Len(t, prompts, len(entries))

	// Newest first means the last seeded entry comes first.
	for i, p := range prompts {
		assert.Equal(t, entries[len(entries)-1-i].Title, p.Title)
		assert.Equal(t, models.SeedAuthorID, p.AuthorID)
		assert.Equal(t, 0, p.Likes)
		if i > 0 {
			assert.True(t, p.CreatedAt.Before(prompts[i-1].CreatedAt))
		}
	}
	assert.True(t, env.mr.Exists(PublicCacheKeyPrefix+"all"))

	// A second service over the same database does not seed again.
	second := NewCatalogService(env.repo, nil, nil, nil, CatalogOptions{SeedDemoPrompts: true})
	again, err := second.ListPublicPrompts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, again, len(entries))

	var count int64
	env.db.Model(&models.Prompt{}).Count(&count)
	assert.Equal(t, int64(len(entries)), count)
}

type failingSeedRepo struct {
	repository.PromptRepository
	calls atomic.Int32
}

func (r *failingSeedRepo) SeedOnce(ctx context.Context, marker string, prompts []models.Prompt) (bool, error) {
	r.calls.Add(1)
	return false, errInjected
}

func TestListPublicPromptsSeedingFailureReturnsEmpty(t *testing.T) {
	var failing *failingSeedRepo
	env := newCatalogEnvWith(t, CatalogOptions{SeedDemoPrompts: true}, func(r repository.PromptRepository) repository.PromptRepository {
		failing = &failingSeedRepo{PromptRepository: r}
		return failing
	})

	prompts, err := env.svc.ListPublicPrompts(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, prompts)
	assert.Empty(t, prompts)
	assert.Equal(t, int32(1), failing.calls.Load())
	assert.Equal(t, 1, env.logs.FilterMessage("Failed to seed demo prompts").Len())
	assert.False(t, env.mr.Exists(PublicCacheKeyPrefix+"all"))
}

func TestListPublicPromptsWithoutSeeding(t *testing.T) {
	env := newCatalogEnv(t, CatalogOptions{SeedDemoPrompts: false})

	prompts, err := env.svc.ListPublicPrompts(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, prompts)
}

func TestListPublicPromptsFiltersAndCaps(t *testing.T) {
	env := newCatalogEnv(t, CatalogOptions{PublicListLimit: 2})
	ctx := context.Background()

	env.create(t, "alice", "first", true)
	env.create(t, "alice", "hidden", false)
	env.create(t, "alice", "second", true)
	env.create(t, "alice", "third", true)

	prompts, err := env.svc.ListPublicPrompts(ctx, "")
	require.NoError(t, err)
	require.Len(t, prompts, 2)
	assert.Equal(t, "third", prompts[0].Title)
	assert.Equal(t, "second", prompts[1].Title)

	none, err := env.svc.ListPublicPrompts(ctx, "midjourney")
	require.NoError(t, err)
	assert.Empty(t, none)

	code, err := env.svc.ListPublicPrompts(ctx, "code")
	require.NoError(t, err)
	assert.Len(t, code, 2)

	mine, err := env.svc.ListUserPrompts(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, mine, 4)
	assert.Equal(t, "third", mine[0].Title)
}

func TestMutationsInvalidatePublicCache(t *testing.T) {
	env := newCatalogEnv(t, CatalogOptions{})
	ctx := context.Background()

	env.create(t, "alice", "cached", true)
	first, err := env.svc.ListPublicPrompts(ctx, "")
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.True(t, env.mr.Exists(PublicCacheKeyPrefix+"all"))

	env.create(t, "bob", "fresh", true)
	assert.False(t, env.mr.Exists(PublicCacheKeyPrefix+"all"))

	second, err := env.svc.ListPublicPrompts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, second, 2)

	_, err = env.svc.ToggleLike(ctx, second[0].ID, "carol")
	require.NoError(t, err)
	assert.False(t, env.mr.Exists(PublicCacheKeyPrefix+"all"))
}

func TestCreatePromptRoundTrip(t *testing.T) {
	env := newCatalogEnv(t, CatalogOptions{})
	ctx := context.Background()

	input := CreatePromptInput{
		Title:      "Résumé d'article",
		Content:    "Résume cet article en 3 points",
		Category:   "productivite",
		IsPublic:   true,
		AuthorID:   "alice",
		AuthorName: "Alice",
	}
	id, err := env.svc.CreatePrompt(ctx, "alice", input, nil)
	require.NoError(t, err)

	got, err := env.svc.GetPrompt(ctx, id, "")
	require.NoError(t, err)
	assert.Equal(t, input.Title, got.Title)
	assert.Equal(t, input.Content, got.Content)
	assert.Equal(t, models.CategoryProductivity, got.Category)
	assert.Equal(t, "alice", got.AuthorID)
	assert.Equal(t, "Alice", got.AuthorName)
	assert.True(t, got.IsPublic)
	assert.Zero(t, got.Likes)
	assert.Zero(t, got.Copies)
	assert.True(t, got.CreatedAt.Equal(got.UpdatedAt))
}

func TestCreatePromptRejectsInvalidInput(t *testing.T) {
	env := newCatalogEnv(t, CatalogOptions{})
	ctx := context.Background()

	_, err := env.svc.CreatePrompt(ctx, "alice", CreatePromptInput{Title: "  ", Content: "", Category: "code", AuthorID: "alice"}, nil)
	require.ErrorIs(t, err, ErrValidation)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{"title", "content"}, verr.Fields)

	_, err = env.svc.CreatePrompt(ctx, "", CreatePromptInput{Title: "t", Content: "c", Category: "code"}, nil)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = env.svc.CreatePrompt(ctx, "mallory", CreatePromptInput{Title: "t", Content: "c", Category: "code", AuthorID: "alice"}, nil)
	assert.ErrorIs(t, err, ErrUnauthorized)

	id, err := env.svc.CreatePrompt(ctx, "alice", CreatePromptInput{Title: "t", Content: "c", Category: "nonsense", AuthorID: "alice"}, nil)
	require.NoError(t, err)
	got, err := env.svc.GetPrompt(ctx, id, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.CategoryOther, got.Category)
}

func TestCreatePromptWithImage(t *testing.T) {
	env := newCatalogEnv(t, CatalogOptions{})
	ctx := context.Background()

	id, err := env.svc.CreatePrompt(ctx, "alice", CreatePromptInput{Title: "t", Content: "c", Category: "dalle", AuthorID: "alice", IsPublic: true},
		&ImageUpload{Filename: "cover.png", ContentType: "image/png", Body: strings.NewReader("png")})
	require.NoError(t, err)

	key := "prompts/" + id + "/cover.png"
	assert.True(t, env.assets.has(key))

	got, err := env.svc.GetPrompt(ctx, id, "")
	require.NoError(t, err)
	assert.Equal(t, "https://assets.test/"+key, got.ImageURL)
	assert.Equal(t, key, got.ImageKey)
}

func TestCreatePromptImageFailureKeepsPrompt(t *testing.T) {
	env := newCatalogEnv(t, CatalogOptions{})
	env.assets.putErr = errInjected
	ctx := context.Background()

	id, err := env.svc.CreatePrompt(ctx, "alice", CreatePromptInput{Title: "t", Content: "c", Category: "dalle", AuthorID: "alice"},
		&ImageUpload{Filename: "cover.png", Body: strings.NewReader("png")})
	require.NoError(t, err)

	got, err := env.svc.GetPrompt(ctx, id, "alice")
	require.NoError(t, err)
	assert.Empty(t, got.ImageURL)
	assert.Equal(t, 1, env.logs.FilterMessage("Prompt image upload failed").Len())
}

func TestGetPromptHidesPrivatePrompts(t *testing.T) {
	env := newCatalogEnv(t, CatalogOptions{})
	ctx := context.Background()
	id := env.create(t, "alice", "secret", false)

	_, err := env.svc.GetPrompt(ctx, id, "bob")
	assert.ErrorIs(t, err, ErrPromptNotFound)
	_, err = env.svc.GetPrompt(ctx, id, "")
	assert.ErrorIs(t, err, ErrPromptNotFound)

	got, err := env.svc.GetPrompt(ctx, id, "alice")
	require.NoError(t, err)
	assert.Equal(t, "secret", got.Title)

	_, err = env.svc.GetPrompt(ctx, "missing", "alice")
	assert.ErrorIs(t, err, ErrPromptNotFound)
}

func TestUpdatePrompt(t *testing.T) {
	env := newCatalogEnv(t, CatalogOptions{})
	ctx := context.Background()
	id := env.create(t, "alice", "draft", false)
	before, err := env.svc.GetPrompt(ctx, id, "alice")
	require.NoError(t, err)

	title := "hijacked"
	_, err = env.svc.UpdatePrompt(ctx, id, "bob", PromptPatch{Title: &title})
	assert.ErrorIs(t, err, ErrUnauthorized)

	blank := " "
	_, err = env.svc.UpdatePrompt(ctx, id, "alice", PromptPatch{Content: &blank})
	assert.ErrorIs(t, err, ErrValidation)

	unchanged, err := env.svc.GetPrompt(ctx, id, "alice")
	require.NoError(t, err)
	assert.Equal(t, before, unchanged)

	title = "final"
	public := true
	category := "claude"
	updated, err := env.svc.UpdatePrompt(ctx, id, "alice", PromptPatch{Title: &title, IsPublic: &public, Category: &category})
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Title)
	assert.Equal(t, before.Content, updated.Content)
	assert.True(t, updated.IsPublic)
	assert.Equal(t, models.CategoryClaude, updated.Category)
	assert.True(t, updated.UpdatedAt.After(before.UpdatedAt))
	assert.True(t, updated.CreatedAt.Equal(before.CreatedAt))

	_, err = env.svc.UpdatePrompt(ctx, "missing", "alice", PromptPatch{Title: &title})
	assert.ErrorIs(t, err, ErrPromptNotFound)
}

func TestUpdatePromptReleasesReplacedImage(t *testing.T) {
	env := newCatalogEnv(t, CatalogOptions{})
	ctx := context.Background()

	id, err := env.svc.CreatePrompt(ctx, "alice", CreatePromptInput{Title: "t", Content: "c", Category: "dalle", AuthorID: "alice"},
		&ImageUpload{Filename: "old.png", Body: strings.NewReader("png")})
	require.NoError(t, err)
	oldKey := "prompts/" + id + "/old.png"

	url := "https://cdn.example.com/new.png"
	updated, err := env.svc.UpdatePrompt(ctx, id, "alice", PromptPatch{ImageURL: &url})
	require.NoError(t, err)
	assert.Equal(t, url, updated.ImageURL)
	assert.Empty(t, updated.ImageKey)
	assert.False(t, env.assets.has(oldKey))
	assert.Contains(t, env.assets.deleted, oldKey)
}

func TestDeletePrompt(t *testing.T) {
	env := newCatalogEnv(t, CatalogOptions{})
	ctx := context.Background()

	id, err := env.svc.CreatePrompt(ctx, "alice", CreatePromptInput{Title: "t", Content: "c", Category: "dalle", AuthorID: "alice", IsPublic: true},
		&ImageUpload{Filename: "pic.jpg", Body: strings.NewReader("jpg")})
	require.NoError(t, err)
	_, err = env.svc.ToggleLike(ctx, id, "bob")
	require.NoError(t, err)
	env.svc.IncrementCopyCount(ctx, id, "bob", nil)

	err = env.svc.DeletePrompt(ctx, id, "bob")
	assert.ErrorIs(t, err, ErrUnauthorized)
	still, err := env.svc.GetPrompt(ctx, id, "")
	require.NoError(t, err)
	assert.Equal(t, 1, still.Likes)
	assert.Equal(t, 1, still.Copies)

	env.assets.deleteErr = errInjected
	require.NoError(t, env.svc.DeletePrompt(ctx, id, "alice"))
	assert.Equal(t, 1, env.logs.FilterMessage("Failed to delete prompt image").Len())

	_, err = env.svc.GetPrompt(ctx, id, "alice")
	assert.ErrorIs(t, err, ErrPromptNotFound)

	var likes int64
	env.db.Model(&models.Like{}).Where("prompt_id = ?", id).Count(&likes)
	assert.Zero(t, likes)

	assert.ErrorIs(t, env.svc.DeletePrompt(ctx, id, "alice"), ErrPromptNotFound)
}

func TestToggleLike(t *testing.T) {
	env := newCatalogEnv(t, CatalogOptions{})
	ctx := context.Background()
	id := env.create(t, "alice", "likeable", true)

	_, err := env.svc.ToggleLike(ctx, id, "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = env.svc.ToggleLike(ctx, "missing", "bob")
	assert.ErrorIs(t, err, ErrPromptNotFound)

	liked, err := env.svc.ToggleLike(ctx, id, "bob")
	require.NoError(t, err)
	assert.True(t, liked)

	has, err := env.svc.HasUserLiked(ctx, id, "bob")
	require.NoError(t, err)
	assert.True(t, has)

	liked, err = env.svc.ToggleLike(ctx, id, "bob")
	require.NoError(t, err)
	assert.False(t, liked)

	has, err = env.svc.HasUserLiked(ctx, id, "bob")
	require.NoError(t, err)
	assert.False(t, has)

	has, err = env.svc.HasUserLiked(ctx, id, "")
	require.NoError(t, err)
	assert.False(t, has)

	got, err := env.svc.GetPrompt(ctx, id, "")
	require.NoError(t, err)
	assert.Zero(t, got.Likes)
	assert.False(t, env.mr.Exists(LikeLockKeyPrefix+"bob:"+id))
}

func TestToggleLikeCounterMatchesLedger(t *testing.T) {
	env := newCatalogEnv(t, CatalogOptions{})
	ctx := context.Background()
	id := env.create(t, "alice", "busy", true)

	users := []string{"u1", "u2", "u3", "u4", "u5", "u6", "u7", "u8"}
	var wg sync.WaitGroup
	for _, u := range users {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			_, err := env.svc.ToggleLike(ctx, id, u)
			assert.NoError(t, err)
		}(u)
	}
	wg.Wait()

	// u1..u4 unlike again
	for _, u := range users[:4] {
		liked, err := env.svc.ToggleLike(ctx, id, u)
		require.NoError(t, err)
		assert.False(t, liked)
	}

	got, err := env.svc.GetPrompt(ctx, id, "")
	require.NoError(t, err)
	ledger, err := env.repo.CountLikes(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Likes)
	assert.Equal(t, int64(got.Likes), ledger)
}

// blockingRepo parks ToggleLike until released so a second call overlaps it.
type blockingRepo struct {
	repository.PromptRepository
	entered chan struct{}
	proceed chan struct{}
}

func (r *blockingRepo) ToggleLike(ctx context.Context, promptID, userID string) (bool, error) {
	r.entered <- struct{}{}
	<-r.proceed
	return r.PromptRepository.ToggleLike(ctx, promptID, userID)
}

func TestToggleLikeRejectsRacingDuplicate(t *testing.T) {
	blocking := &blockingRepo{entered: make(chan struct{}, 1), proceed: make(chan struct{})}
	env := newCatalogEnvWith(t, CatalogOptions{}, func(r repository.PromptRepository) repository.PromptRepository {
		blocking.PromptRepository = r
		return blocking
	})
	ctx := context.Background()
	id := env.create(t, "alice", "contested", true)

	type result struct {
		liked bool
		err   error
	}
	first := make(chan result, 1)
	go func() {
		liked, err := env.svc.ToggleLike(ctx, id, "bob")
		first <- result{liked, err}
	}()

	select {
	case <-blocking.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first toggle never reached the repository")
	}

	liked, err := env.svc.ToggleLike(ctx, id, "bob")
	assert.ErrorIs(t, err, ErrTransientStore)
	assert.False(t, liked)

	close(blocking.proceed)
	res := <-first
	require.NoError(t, res.err)
	assert.True(t, res.liked)

	got, err := env.svc.GetPrompt(ctx, id, "")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Likes)
}

func TestToggleLikeWithoutRedis(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCatalogService(repository.NewPromptRepository(db), nil, nil, nil, CatalogOptions{})
	ctx := context.Background()

	id, err := svc.CreatePrompt(ctx, "alice", CreatePromptInput{Title: "t", Content: "c", Category: "code", AuthorID: "alice", IsPublic: true}, nil)
	require.NoError(t, err)

	liked, err := svc.ToggleLike(ctx, id, "bob")
	require.NoError(t, err)
	assert.True(t, liked)
}

// flakyCopyRepo fails every other IncrementCopies call.
type flakyCopyRepo struct {
	repository.PromptRepository
	calls atomic.Int32
}

func (r *flakyCopyRepo) IncrementCopies(ctx context.Context, event *models.CopyEvent) error {
	if r.calls.Add(1)%2 == 0 {
		return repository.ErrTransient
	}
	return r.PromptRepository.IncrementCopies(ctx, event)
}

func TestIncrementCopyCountIsMonotonic(t *testing.T) {
	env := newCatalogEnvWith(t, CatalogOptions{}, func(r repository.PromptRepository) repository.PromptRepository {
		return &flakyCopyRepo{PromptRepository: r}
	})
	ctx := context.Background()
	id := env.create(t, "alice", "copied", true)

	previous := 0
	for i := 0; i < 6; i++ {
		env.svc.IncrementCopyCount(ctx, id, "", map[string]interface{}{"userAgent": "test"})
		got, err := env.svc.GetPrompt(ctx, id, "")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got.Copies, previous)
		assert.LessOrEqual(t, got.Copies, previous+1)
		previous = got.Copies
	}

	assert.Equal(t, 3, previous)
	assert.Equal(t, 3, env.logs.FilterMessage("Failed to increment copy count").Len())

	var events int64
	env.db.Model(&models.CopyEvent{}).Where("prompt_id = ?", id).Count(&events)
	assert.Equal(t, int64(3), events)

	env.svc.IncrementCopyCount(ctx, "missing", "bob", nil)
	assert.Equal(t, 1, env.logs.FilterMessage("Copy of unknown prompt ignored").Len())
}

func TestSearchPrompts(t *testing.T) {
	env := newCatalogEnv(t, CatalogOptions{PublicListLimit: 1})
	ctx := context.Background()

	_, err := env.svc.CreatePrompt(ctx, "alice", CreatePromptInput{Title: "Logo Design", Content: "a minimalist logo", Category: "midjourney", AuthorID: "alice", IsPublic: true}, nil)
	require.NoError(t, err)
	_, err = env.svc.CreatePrompt(ctx, "alice", CreatePromptInput{Title: "SQL helper", Content: "Optimize this QUERY", Category: "code", AuthorID: "alice", IsPublic: true}, nil)
	require.NoError(t, err)
	_, err = env.svc.CreatePrompt(ctx, "alice", CreatePromptInput{Title: "Private query", Content: "query", Category: "code", AuthorID: "alice"}, nil)
	require.NoError(t, err)

	byContent, err := env.svc.SearchPrompts(ctx, "query")
	require.NoError(t, err)
	require.Len(t, byContent, 1)
	assert.Equal(t, "SQL helper", byContent[0].Title)

	byCategory, err := env.svc.SearchPrompts(ctx, "MIDJOURNEY")
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "Logo Design", byCategory[0].Title)

	all, err := env.svc.SearchPrompts(ctx, "  ")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "SQL helper", all[0].Title)

	none, err := env.svc.SearchPrompts(ctx, "nothing like this")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLikedPromptIDsAndAuthorStats(t *testing.T) {
	env := newCatalogEnv(t, CatalogOptions{})
	ctx := context.Background()
	a := env.create(t, "alice", "a", true)
	b := env.create(t, "alice", "b", false)

	_, err := env.svc.ToggleLike(ctx, a, "bob")
	require.NoError(t, err)
	env.svc.IncrementCopyCount(ctx, a, "bob", nil)
	env.svc.IncrementCopyCount(ctx, b, "", nil)

	ids, err := env.svc.ListLikedPromptIDs(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{a}, ids)

	_, err = env.svc.ListLikedPromptIDs(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	stats, err := env.svc.AuthorStats(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, repository.AuthorStats{Prompts: 2, PublicPrompts: 1, Likes: 1, Copies: 2}, stats)
}

func TestLikeGuardDegradesWhenRedisIsDown(t *testing.T) {
	env := newCatalogEnv(t, CatalogOptions{})
	ctx := context.Background()
	id := env.create(t, "alice", "resilient", true)

	env.mr.Close()

	liked, err := env.svc.ToggleLike(ctx, id, "bob")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, env.logs.FilterMessage("Like guard unavailable").Len())
}
