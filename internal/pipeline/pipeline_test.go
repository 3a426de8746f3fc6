package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ikkim/retail-etl/config"
	"github.com/ikkim/retail-etl/internal/app/model"
	"github.com/ikkim/retail-etl/internal/app/repository"
	"github.com/ikkim/retail-etl/internal/artifact"
	"github.com/ikkim/retail-etl/internal/db"
	apperrors "github.com/ikkim/retail-etl/internal/errors"
	"github.com/ikkim/retail-etl/internal/fetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testToday = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

func strPtr(s string) *string {
	return &s
}

// fakeFetcher serves canned payloads and can fail a number of times
// first, to exercise the retry policy.
type fakeFetcher struct {
	carts     *fetch.CartsPayload
	users     *fetch.UsersPayload
	failCarts int
}

func (f *fakeFetcher) GetCarts(ctx context.Context) (*fetch.CartsPayload, error) {
	if f.failCarts > 0 {
		f.failCarts--
		return nil, fmt.Errorf("%w: connection reset", apperrors.ErrTransport)
	}
	return f.carts, nil
}

func (f *fakeFetcher) GetUsers(ctx context.Context) (*fetch.UsersPayload, error) {
	return f.users, nil
}

type captureUploader struct {
	paths []string
}

func (u *captureUploader) UploadFiles(ctx context.Context, paths []string) error {
	u.paths = append(u.paths, paths...)
	return nil
}

func testPayloads() (*fetch.CartsPayload, *fetch.UsersPayload) {
	carts := &fetch.CartsPayload{
		Carts: []model.Cart{
			{
				ID:     float64(1),
				UserID: float64(10),
				Products: []model.CartProduct{
					{ID: float64(100), Title: strPtr(" Shirt "), Price: float64(20), Quantity: float64(2), Total: float64(0)},
					{ID: float64(101), Title: strPtr("Hat"), Price: float64(25), Quantity: float64(1), Total: float64(25)},
				},
			},
			{
				ID:     float64(2),
				UserID: float64(99),
				Products: []model.CartProduct{
					{ID: float64(100), Title: strPtr("Shirt"), Price: float64(20), Quantity: float64(1), Total: float64(20)},
				},
			},
		},
	}
	users := &fetch.UsersPayload{
		Users: []model.User{
			{
				ID:        float64(10),
				FirstName: strPtr("Jo"),
				LastName:  strPtr("Doe"),
				Email:     strPtr("jo@example.com"),
				Address:   &model.Address{City: strPtr("Seoul")},
				Age:       float64(29),
				Gender:    strPtr("female"),
			},
		},
	}
	return carts, users
}

func setupPipelineTest(t *testing.T, fetcher Fetcher, opts ...Option) (*Pipeline, *gorm.DB, string) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	dir := t.TempDir()
	store := artifact.NewStore(dir)
	cfg := config.PipelineConfig{RetryAttempts: 1, RetryBackoff: time.Millisecond}

	opts = append(opts, WithClock(func() time.Time { return testToday }))
	p := New(
		fetcher,
		store,
		repository.NewSalesRepository(testDB),
		repository.NewAnalyticsRepository(testDB),
		NewMetrics(),
		cfg,
		opts...,
	)
	return p, testDB, dir
}

func TestPipeline_RunEndToEnd(t *testing.T) {
	carts, users := testPayloads()
	p, testDB, dir := setupPipelineTest(t, &fakeFetcher{carts: carts, users: users})

	require.NoError(t, p.Run(context.Background()))

	// Sink holds one row per (cart, product) pair.
	var rows []model.NormalizedRow
	require.NoError(t, testDB.Order("cart_id, product_id").Find(&rows).Error)
	require.Len(t, rows, 3)

	assert.Equal(t, "shirt", rows[0].ProductTitle)
	assert.Equal(t, 40.0, rows[0].TotalAmount)
	assert.Equal(t, "Jo Doe", rows[0].CustomerName)
	assert.Equal(t, "2024-03-15", rows[0].OrderDate)

	// Cart 2 has no matching user.
	assert.Equal(t, "No Data", rows[2].CustomerName)
	assert.Equal(t, "No Data", rows[2].Email)
	assert.Equal(t, "2024-03-14", rows[2].OrderDate)

	// Analytics tables were replaced.
	var revenue []model.ProductRevenue
	require.NoError(t, testDB.Order("total_revenue DESC").Find(&revenue).Error)
	require.Len(t, revenue, 2)
	assert.Equal(t, "shirt", revenue[0].ProductTitle)
	assert.Equal(t, 60.0, revenue[0].TotalRevenue)

	// Analytics files exported for reporting tools.
	for _, name := range []string{"revenue_by_product.csv", "customer_summary.csv", "daily_sales.csv", "analytics.xlsx"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestPipeline_RunIsIdempotent(t *testing.T) {
	carts, users := testPayloads()
	p, testDB, _ := setupPipelineTest(t, &fakeFetcher{carts: carts, users: users})

	require.NoError(t, p.Run(context.Background()))
	require.NoError(t, p.Run(context.Background()))

	var count int64
	require.NoError(t, testDB.Model(&model.NormalizedRow{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestPipeline_TransformWithoutExtractFails(t *testing.T) {
	carts, users := testPayloads()
	p, _, _ := setupPipelineTest(t, &fakeFetcher{carts: carts, users: users})

	err := p.RunStage(context.Background(), StageTransform)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrMissingInput)
}

func TestPipeline_MissingCartsCollectionFailsRun(t *testing.T) {
	_, users := testPayloads()
	fetcher := &fakeFetcher{carts: &fetch.CartsPayload{}, users: users}
	p, _, _ := setupPipelineTest(t, fetcher)

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrMissingInput)
}

func TestPipeline_RetriesTransportFailures(t *testing.T) {
	carts, users := testPayloads()
	fetcher := &fakeFetcher{carts: carts, users: users, failCarts: 1}

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	store := artifact.NewStore(t.TempDir())
	cfg := config.PipelineConfig{RetryAttempts: 2, RetryBackoff: time.Millisecond}
	p := New(
		fetcher,
		store,
		repository.NewSalesRepository(testDB),
		repository.NewAnalyticsRepository(testDB),
		NewMetrics(),
		cfg,
		WithClock(func() time.Time { return testToday }),
	)

	require.NoError(t, p.Run(context.Background()))
	assert.Zero(t, fetcher.failCarts)
}

func TestPipeline_DoesNotRetryBadInput(t *testing.T) {
	_, users := testPayloads()
	fetcher := &fakeFetcher{carts: &fetch.CartsPayload{}, users: users}

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cfg := config.PipelineConfig{RetryAttempts: 5, RetryBackoff: time.Hour}
	p := New(
		fetcher,
		artifact.NewStore(t.TempDir()),
		repository.NewSalesRepository(testDB),
		repository.NewAnalyticsRepository(testDB),
		NewMetrics(),
		cfg,
		WithClock(func() time.Time { return testToday }),
	)

	// With an hour of backoff, a retried run would hang; bad input must
	// fail immediately instead.
	done := make(chan error, 1)
	go func() {
		done <- p.Run(context.Background())
	}()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrMissingInput)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not fail fast on bad input")
	}
}

func TestPipeline_UploaderReceivesAnalyticsFiles(t *testing.T) {
	carts, users := testPayloads()
	uploader := &captureUploader{}
	p, _, dir := setupPipelineTest(t, &fakeFetcher{carts: carts, users: users}, WithUploader(uploader))

	require.NoError(t, p.Run(context.Background()))

	require.Len(t, uploader.paths, 4)
	assert.Contains(t, uploader.paths, filepath.Join(dir, "revenue_by_product.csv"))
	assert.Contains(t, uploader.paths, filepath.Join(dir, "analytics.xlsx"))
}

func TestPipeline_UnknownStage(t *testing.T) {
	carts, users := testPayloads()
	p, _, _ := setupPipelineTest(t, &fakeFetcher{carts: carts, users: users})

	err := p.RunStage(context.Background(), "compact")
	require.Error(t, err)
}
