package provider

import (
	"context"
	"sync"
	"testing"
	"time"

	"nafany/database"
	providerRepo "nafany/database/repository/provider"
	"nafany/models"
	"nafany/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	fixedNow = time.Date(2025, 1, 5, 9, 0, 0, 0, time.UTC)
	client   = models.SessionUser{Role: models.RoleUser, Email: "client@example.com", Name: "Ali"}
	other    = models.SessionUser{Role: models.RoleUser, Email: "other@example.com", Name: "Sara"}
	admin    = models.SessionUser{Role: models.RoleAdmin, Email: "admin", Name: "Admin"}
)

func newService(repo providerRepo.ProviderRepository) *DefaultProviderService {
	return &DefaultProviderService{
		Repo:       repo,
		Tokens:     utils.NewTokenManager("test-secret", time.Hour),
		Validator:  utils.NewValidator(),
		Cache:      utils.NewMemoryCache(),
		RankingTTL: time.Minute,
		PageSize:   2,
		Now:        func() time.Time { return fixedNow },
	}
}

func seedProvider(t *testing.T, repo providerRepo.ProviderRepository, email, governorate string) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &models.Provider{
		Email:       email,
		Name:        email,
		Role:        models.RoleProvider,
		Category:    "خدمات صحية",
		Profession:  "طبيب",
		Governorate: governorate,
	}))
}

// untouchedRepo fails the test on any store call.
type untouchedRepo struct {
	providerRepo.ProviderRepository
}

func TestReviewAggregatesFollowEveryWrite(t *testing.T) {
	ctx := context.Background()
	repo := providerRepo.NewMemoryProviderRepo()
	seedProvider(t, repo, "p@example.com", "القاهرة")
	svc := newService(repo)

	p, err := svc.AddReview(ctx, "p@example.com", client, models.ReviewInput{Rating: 5, Review: "ممتاز"})
	require.NoError(t, err)
	first := p.Reviews[0].ID

	p, err = svc.AddReview(ctx, "p@example.com", other, models.ReviewInput{Rating: 4})
	require.NoError(t, err)
	assert.Equal(t, 2, p.RatingsCount)
	assert.Equal(t, 9, p.RatingsTotal)
	assert.Equal(t, 4.5, p.AverageRating)

	p, err = svc.EditReview(ctx, "p@example.com", first, client, models.ReviewInput{Rating: 1, Review: "تغير رأيي"})
	require.NoError(t, err)
	assert.Equal(t, 2, p.RatingsCount)
	assert.Equal(t, 5, p.RatingsTotal)
	assert.Equal(t, 2.5, p.AverageRating)
	require.NotNil(t, p.Reviews[0].UpdatedAt)

	p, err = svc.DeleteReview(ctx, "p@example.com", first, client)
	require.NoError(t, err)
	assert.Equal(t, 1, p.RatingsCount)
	assert.Equal(t, 4.0, p.AverageRating)

	p, err = svc.DeleteReview(ctx, "p@example.com", "missing", client)
	require.NoError(t, err)
	assert.Equal(t, 1, p.RatingsCount)

	p, err = svc.DeleteReview(ctx, "p@example.com", p.Reviews[0].ID, admin)
	require.NoError(t, err)
	assert.Equal(t, 0, p.RatingsCount)
	assert.Equal(t, 0.0, p.AverageRating)
}

func TestAddReviewRejectsRatingBeforeStore(t *testing.T) {
	svc := newService(untouchedRepo{})

	for _, rating := range []int{0, 6, -1} {
		assert.NotPanics(t, func() {
			_, err := svc.AddReview(context.Background(), "p@example.com", client, models.ReviewInput{Rating: rating})
			assert.True(t, utils.IsValidationError(err), "rating %d", rating)
		})
	}
}

func TestConcurrentReviewsAreNotLost(t *testing.T) {
	ctx := context.Background()
	repo := providerRepo.NewMemoryProviderRepo()
	seedProvider(t, repo, "p@example.com", "")
	svc := newService(repo)

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.AddReview(ctx, "p@example.com", client, models.ReviewInput{Rating: i%5 + 1})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	p, err := repo.GetByEmail(ctx, "p@example.com")
	require.NoError(t, err)
	assert.Len(t, p.Reviews, n)
	assert.Equal(t, n, p.RatingsCount)
	agg := models.ComputeRatings(p.Reviews)
	assert.Equal(t, agg.Total, p.RatingsTotal)
}

func TestEditReviewRequiresAuthor(t *testing.T) {
	ctx := context.Background()
	repo := providerRepo.NewMemoryProviderRepo()
	seedProvider(t, repo, "p@example.com", "")
	svc := newService(repo)

	p, err := svc.AddReview(ctx, "p@example.com", client, models.ReviewInput{Rating: 3})
	require.NoError(t, err)
	id := p.Reviews[0].ID

	_, err = svc.EditReview(ctx, "p@example.com", id, other, models.ReviewInput{Rating: 1})
	assert.ErrorIs(t, err, utils.ErrForbidden)
	_, err = svc.DeleteReview(ctx, "p@example.com", id, other)
	assert.ErrorIs(t, err, utils.ErrForbidden)

	p, err = svc.EditReview(ctx, "p@example.com", id, admin, models.ReviewInput{Rating: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, p.Reviews[0].Rating)

	_, err = svc.EditReview(ctx, "p@example.com", "missing", client, models.ReviewInput{Rating: 2})
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestWorksKeepCount(t *testing.T) {
	ctx := context.Background()
	repo := providerRepo.NewMemoryProviderRepo()
	seedProvider(t, repo, "p@example.com", "")
	svc := newService(repo)

	w, err := svc.AddWork(ctx, "p@example.com", models.WorkInput{Title: "  عيادة  ", Description: "تجهيز"})
	require.NoError(t, err)
	assert.Equal(t, "عيادة", w.Title)
	_, err = svc.AddWork(ctx, "p@example.com", models.WorkInput{Title: "ثانية"})
	require.NoError(t, err)

	p, _ := repo.GetByEmail(ctx, "p@example.com")
	assert.Equal(t, 2, p.WorksCount)

	edited, err := svc.EditWork(ctx, "p@example.com", w.ID, models.WorkInput{Title: "عيادة جديدة"})
	require.NoError(t, err)
	assert.Equal(t, "عيادة جديدة", edited.Title)

	require.NoError(t, svc.DeleteWork(ctx, "p@example.com", w.ID))
	p, _ = repo.GetByEmail(ctx, "p@example.com")
	assert.Equal(t, 1, p.WorksCount)
	assert.Len(t, p.Works, 1)

	_, err = svc.AddWork(ctx, "p@example.com", models.WorkInput{Title: "x", Images: []string{"not-an-image"}})
	assert.True(t, utils.IsValidationError(err))

	_, err = svc.EditWork(ctx, "p@example.com", "missing", models.WorkInput{Title: "x"})
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func validRegistration() models.ProviderRegistration {
	return models.ProviderRegistration{
		Name:        "منى",
		Email:       "Mona@Example.com",
		Password:    "secret1",
		NationalID:  "29801011234567",
		Phone:       "01001234567",
		Address:     "شارع النيل",
		Category:    "خدمات صحية",
		Profession:  "طبيب",
		Governorate: "الجيزة",
	}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	repo := providerRepo.NewMemoryProviderRepo()
	svc := newService(repo)

	p, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)
	assert.Equal(t, "mona@example.com", p.Email)
	assert.NotEqual(t, "secret1", p.PasswordHash)
	assert.Empty(t, p.Reviews)
	assert.Zero(t, p.RatingsCount)
	assert.True(t, p.AllowContact)

	resp, err := svc.Authenticate(ctx, "MONA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleProvider, resp.User.Role)
	session, err := svc.Tokens.Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "mona@example.com", session.Email)

	_, err = svc.Authenticate(ctx, "mona@example.com", "wrong-pass")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)
}

// createForbiddenRepo fails the test when a write reaches Create.
type createForbiddenRepo struct {
	*providerRepo.MemoryProviderRepo
	t *testing.T
}

func (r createForbiddenRepo) Create(context.Context, *models.Provider) error {
	r.t.Errorf("Create called for a duplicate registration")
	return database.ErrDuplicate
}

func TestRegisterRejectsDuplicateWithoutWriting(t *testing.T) {
	ctx := context.Background()
	repo := providerRepo.NewMemoryProviderRepo()
	_, err := newService(repo).Register(ctx, validRegistration())
	require.NoError(t, err)

	svc := newService(createForbiddenRepo{MemoryProviderRepo: repo, t: t})
	req := validRegistration()
	req.Email = "  MONA@example.COM "
	_, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, database.ErrDuplicate)

	all, err := repo.List(ctx, providerRepo.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRegisterValidation(t *testing.T) {
	svc := newService(untouchedRepo{})

	req := validRegistration()
	req.Email = "not-an-email"
	req.Password = "123"
	var err error
	assert.NotPanics(t, func() { _, err = svc.Register(context.Background(), req) })

	var ve *utils.ValidationError
	require.ErrorAs(t, err, &ve)
	fields := ve.FieldMap()
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
}

func TestUpdateSettingsKeepsUnsetFields(t *testing.T) {
	ctx := context.Background()
	repo := providerRepo.NewMemoryProviderRepo()
	seedProvider(t, repo, "p@example.com", "القاهرة")
	svc := newService(repo)

	bio := "خبرة عشر سنوات"
	allow := false
	p, err := svc.UpdateSettings(ctx, "p@example.com", models.ProviderSettings{Bio: &bio, AllowContact: &allow})
	require.NoError(t, err)
	assert.Equal(t, bio, p.Bio)
	assert.False(t, p.AllowContact)
	assert.Equal(t, "القاهرة", p.Governorate)
}

func TestBrowseFacetsAndPaging(t *testing.T) {
	ctx := context.Background()
	repo := providerRepo.NewMemoryProviderRepo()
	seedProvider(t, repo, "a@example.com", "القاهرة")
	seedProvider(t, repo, "b@example.com", "الجيزة")
	seedProvider(t, repo, "c@example.com", "")
	svc := newService(repo)

	res, err := svc.Browse(ctx, BrowseQuery{Category: "خدمات صحية", Profession: "طبيب", Page: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.TotalPages)
	assert.Len(t, res.Providers, 2)
	assert.ElementsMatch(t, []string{"القاهرة", "الجيزة", unknownGovernorate}, res.Governorates)

	res, err = svc.Browse(ctx, BrowseQuery{Category: "خدمات صحية", Profession: "طبيب", Governorate: "الجيزة"})
	require.NoError(t, err)
	require.Len(t, res.Providers, 1)
	assert.Equal(t, "b@example.com", res.Providers[0].Email)
	assert.Len(t, res.Governorates, 3)

	res, err = svc.Browse(ctx, BrowseQuery{Category: "خدمات صحية", Profession: "طبيب", Page: 9})
	require.NoError(t, err)
	assert.Empty(t, res.Providers)
}

func TestBrowsePageBeyondRange(t *testing.T) {
	ctx := context.Background()
	repo := providerRepo.NewMemoryProviderRepo()
	seedProvider(t, repo, "a@example.com", "القاهرة")
	seedProvider(t, repo, "b@example.com", "الجيزة")
	seedProvider(t, repo, "c@example.com", "الجيزة")
	svc := newService(repo)

	for _, page := range []int{3, 1<<62 + 1, int(^uint(0) >> 1)} {
		var res *BrowseResult
		var err error
		require.NotPanics(t, func() {
			res, err = svc.Browse(ctx, BrowseQuery{Category: "خدمات صحية", Profession: "طبيب", Page: page})
		})
		require.NoError(t, err)
		assert.Empty(t, res.Providers, "page %d", page)
		assert.Equal(t, 3, res.Total)
		assert.Equal(t, 2, res.TotalPages)
	}

	res, err := svc.Browse(ctx, BrowseQuery{Category: "خدمات صحية", Profession: "طبيب", Page: 2})
	require.NoError(t, err)
	assert.Len(t, res.Providers, 1)
}

func TestBuildRankingOrder(t *testing.T) {
	providers := []models.Provider{
		{Email: "c@example.com", Reviews: []models.Review{{Rating: 4}}},
		{Email: "a@example.com", Reviews: []models.Review{{Rating: 4}, {Rating: 4}}},
		{Email: "b@example.com", Reviews: []models.Review{{Rating: 5}}},
		{Email: "d@example.com"},
	}
	entries := BuildRanking(providers)
	require.Len(t, entries, 4)
	assert.Equal(t, "b@example.com", entries[0].Email)
	assert.Equal(t, "a@example.com", entries[1].Email)
	assert.Equal(t, "c@example.com", entries[2].Email)
	assert.Equal(t, "d@example.com", entries[3].Email)
	assert.Equal(t, 4, entries[3].Rank)
}

func TestRankIsInvalidatedByReviews(t *testing.T) {
	ctx := context.Background()
	repo := providerRepo.NewMemoryProviderRepo()
	seedProvider(t, repo, "a@example.com", "")
	seedProvider(t, repo, "b@example.com", "")
	svc := newService(repo)

	_, err := svc.AddReview(ctx, "a@example.com", client, models.ReviewInput{Rating: 3})
	require.NoError(t, err)

	r, err := svc.Rank(ctx, "b@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, r.Rank)
	assert.Equal(t, 2, r.Total)

	_, err = svc.AddReview(ctx, "b@example.com", client, models.ReviewInput{Rating: 5})
	require.NoError(t, err)

	r, err = svc.Rank(ctx, "b@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, r.Rank)
	assert.Equal(t, 5.0, r.AverageRating)

	_, err = svc.Rank(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRefreshRankingOverwritesCache(t *testing.T) {
	ctx := context.Background()
	repo := providerRepo.NewMemoryProviderRepo()
	seedProvider(t, repo, "a@example.com", "")
	svc := newService(repo)

	_, err := svc.Rank(ctx, "a@example.com")
	require.NoError(t, err)

	// A write that bypasses the service leaves the cache stale until a refresh.
	seedProvider(t, repo, "b@example.com", "")
	_, err = svc.Rank(ctx, "b@example.com")
	assert.ErrorIs(t, err, database.ErrNotFound)

	require.NoError(t, svc.RefreshRanking(ctx))
	r, err := svc.Rank(ctx, "b@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, r.Total)
}
