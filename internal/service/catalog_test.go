package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/msomdec/catalog-admin/internal/domain"
	"github.com/msomdec/catalog-admin/internal/service"
	"github.com/msomdec/catalog-admin/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalog(t *testing.T) (*service.CatalogService, *memStore, int64) {
	t.Helper()
	db := newTestDB(t)
	store := newMemStore()
	c, err := service.NewCategoryService(db.Categories(), db.Materials()).Create(context.Background(), "Electronics", "")
	require.NoError(t, err)
	return service.NewCatalogService(db.Materials(), db.Categories(), store), store, c.ID
}

func TestCatalogService_CreateMaterial_ImageOrder(t *testing.T) {
	catalog, _, categoryID := newCatalog(t)
	ctx := context.Background()

	m, err := catalog.CreateMaterial(ctx, service.NewMaterial{
		Title:       "Phone",
		CategoryID:  &categoryID,
		IsPublished: true,
		Cover:       uploadPtr("a.jpg"),
		Others:      []domain.Upload{upload("b.jpg"), upload("c.jpg")},
	})
	require.NoError(t, err)
	require.NotZero(t, m.ID)

	got, err := catalog.GetMaterial(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Electronics", got.CategoryName)
	require.Len(t, got.Images, 3)

	want := []struct {
		url   string
		cover bool
		sort  int
	}{
		{"/mem/a.jpg", true, 0},
		{"/mem/b.jpg", false, 1},
		{"/mem/c.jpg", false, 2},
	}
	for i, w := range want {
		assert.Equal(t, w.url, got.Images[i].ImageURL)
		assert.Equal(t, w.cover, got.Images[i].IsCover)
		assert.Equal(t, w.sort, got.Images[i].SortOrder)
	}
	assert.Equal(t, "/mem/a.jpg", got.Cover().ImageURL)
}

func TestCatalogService_CreateMaterial_SkipsEmptyUploads(t *testing.T) {
	catalog, store, _ := newCatalog(t)

	m, err := catalog.CreateMaterial(context.Background(), service.NewMaterial{
		Title: "Uncategorized",
		Cover: uploadPtr("cover.png"),
		Others: []domain.Upload{
			{Filename: "", Data: []byte("nameless")},
			upload("one.png"),
			{Filename: "empty.png"},
			upload("two.png"),
		},
	})
	require.NoError(t, err)
	assert.Nil(t, m.CategoryID)

	require.Len(t, m.Images, 3)
	assert.Equal(t, "/mem/one.png", m.Images[1].ImageURL)
	assert.Equal(t, 1, m.Images[1].SortOrder)
	assert.Equal(t, "/mem/two.png", m.Images[2].ImageURL)
	assert.Equal(t, 2, m.Images[2].SortOrder)
	assert.Equal(t, 3, store.stores)
}

func TestCatalogService_CreateMaterial_MissingCover(t *testing.T) {
	db := newTestDB(t)
	store := newMemStore()
	catalog := service.NewCatalogService(db.Materials(), db.Categories(), store)

	for _, cover := range []*domain.Upload{nil, {Filename: "a.jpg"}, {Data: []byte("x")}} {
		_, err := catalog.CreateMaterial(context.Background(), service.NewMaterial{
			Title:  "Phone",
			Cover:  cover,
			Others: []domain.Upload{upload("b.jpg")},
		})
		require.ErrorIs(t, err, domain.ErrMissingCover)
	}

	assert.Zero(t, store.stores, "nothing is stored when validation fails")
	assert.Zero(t, countRows(t, db, "materials"))
	assert.Zero(t, countRows(t, db, "material_images"))
}

func TestCatalogService_CreateMaterial_ReportsFailuresInOrder(t *testing.T) {
	catalog, _, _ := newCatalog(t)
	unknown := int64(404)

	_, err := catalog.CreateMaterial(context.Background(), service.NewMaterial{
		Title:      "   ",
		CategoryID: &unknown,
	})

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Fields, 3)
	assert.Equal(t, "title", verr.Fields[0].Field)
	assert.Equal(t, "cover_image", verr.Fields[1].Field)
	assert.Equal(t, "material_type_id", verr.Fields[2].Field)
	assert.ErrorIs(t, err, domain.ErrMissingTitle)
	assert.ErrorIs(t, err, domain.ErrMissingCover)
	assert.ErrorIs(t, err, domain.ErrUnknownCategory)
}

func TestCatalogService_CreateMaterial_UnknownCategory(t *testing.T) {
	catalog, store, _ := newCatalog(t)
	unknown := int64(404)

	_, err := catalog.CreateMaterial(context.Background(), service.NewMaterial{
		Title:      "Phone",
		CategoryID: &unknown,
		Cover:      uploadPtr("a.jpg"),
	})
	require.ErrorIs(t, err, domain.ErrUnknownCategory)
	assert.Zero(t, store.stores)
}

// failingMaterials lets validation pass and then fails the insert.
type failingMaterials struct {
	domain.MaterialRepository
	err error
}

func (f failingMaterials) Create(ctx context.Context, m *domain.Material) error {
	return f.err
}

func TestCatalogService_CreateMaterial_RemovesFilesWhenInsertFails(t *testing.T) {
	db := newTestDB(t)
	store := newMemStore()
	insertErr := errors.New("database is locked")
	catalog := service.NewCatalogService(
		failingMaterials{MaterialRepository: db.Materials(), err: insertErr},
		db.Categories(), store,
	)

	_, err := catalog.CreateMaterial(context.Background(), service.NewMaterial{
		Title:  "Phone",
		Cover:  uploadPtr("a.jpg"),
		Others: []domain.Upload{upload("b.jpg"), upload("c.jpg")},
	})
	require.ErrorIs(t, err, insertErr)

	assert.Equal(t, 3, store.stores)
	assert.Empty(t, store.refs(), "stored files are removed again")
	assert.ElementsMatch(t, []string{"/mem/a.jpg", "/mem/b.jpg", "/mem/c.jpg"}, store.deleted)
}

func TestCatalogService_CreateMaterial_StorageFailure(t *testing.T) {
	db := newTestDB(t)
	store := newMemStore()
	store.failOn = "c.jpg"
	catalog := service.NewCatalogService(db.Materials(), db.Categories(), store)

	_, err := catalog.CreateMaterial(context.Background(), service.NewMaterial{
		Title:  "Phone",
		Cover:  uploadPtr("a.jpg"),
		Others: []domain.Upload{upload("b.jpg"), upload("c.jpg")},
	})
	require.ErrorIs(t, err, domain.ErrStorage)
	require.ErrorIs(t, err, errStoreFailed)

	assert.Empty(t, store.refs())
	assert.Zero(t, countRows(t, db, "materials"))
	assert.Zero(t, countRows(t, db, "material_images"))
}

func TestCatalogService_CreateMaterial_LocalStore(t *testing.T) {
	db := newTestDB(t)
	assets := storage.NewLocalStore(t.TempDir(), "/static/uploads")
	catalog := service.NewCatalogService(db.Materials(), db.Categories(), assets)

	m, err := catalog.CreateMaterial(context.Background(), service.NewMaterial{
		Title:  "Same names",
		Cover:  uploadPtr("photo.jpg"),
		Others: []domain.Upload{upload("photo.jpg"), upload("photo.jpg")},
	})
	require.NoError(t, err)
	require.Len(t, m.Images, 3)

	seen := map[string]bool{}
	for _, img := range m.Images {
		assert.False(t, seen[img.ImageURL], "references must be unique")
		seen[img.ImageURL] = true
	}
}

func TestCatalogService_ListMaterials(t *testing.T) {
	catalog, _, categoryID := newCatalog(t)
	ctx := context.Background()

	create := func(title string, categoryID *int64, published bool) {
		t.Helper()
		_, err := catalog.CreateMaterial(ctx, service.NewMaterial{
			Title:       title,
			CategoryID:  categoryID,
			IsPublished: published,
			Cover:       uploadPtr(title + ".jpg"),
		})
		require.NoError(t, err)
	}
	create("first", &categoryID, true)
	create("second", nil, true)
	create("third", &categoryID, false)

	all, err := catalog.ListMaterials(ctx, domain.MaterialFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"third", "second", "first"}, materialTitles(all))

	inCategory, err := catalog.ListMaterials(ctx, domain.MaterialFilter{CategoryID: &categoryID})
	require.NoError(t, err)
	assert.Equal(t, []string{"third", "first"}, materialTitles(inCategory))

	published, err := catalog.ListMaterials(ctx, domain.MaterialFilter{CategoryID: &categoryID, PublishedOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"first"}, materialTitles(published))
	require.Len(t, published[0].Images, 1)
	assert.True(t, published[0].Images[0].IsCover)
}

func TestCatalogService_DeleteMaterial(t *testing.T) {
	catalog, store, _ := newCatalog(t)
	ctx := context.Background()

	m, err := catalog.CreateMaterial(ctx, service.NewMaterial{
		Title:  "Phone",
		Cover:  uploadPtr("a.jpg"),
		Others: []domain.Upload{upload("b.jpg")},
	})
	require.NoError(t, err)

	require.NoError(t, catalog.DeleteMaterial(ctx, m.ID))
	assert.Empty(t, store.refs())

	_, err = catalog.GetMaterial(ctx, m.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.ErrorIs(t, catalog.DeleteMaterial(ctx, m.ID), domain.ErrNotFound)
}

func materialTitles(ms []domain.Material) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Title
	}
	return out
}

func TestCatalogService_CreateMaterial_RejectsNonImages(t *testing.T) {
	db := newTestDB(t)
	store := newMemStore()
	catalog := service.NewCatalogService(db.Materials(), db.Categories(), store)
	script := domain.Upload{Filename: "evil.html", Data: []byte("<script>alert(document.cookie)</script>")}

	tests := []struct {
		name  string
		in    service.NewMaterial
		field string
	}{
		{"cover", service.NewMaterial{Title: "Phone", Cover: &script}, "cover_image"},
		{"other image", service.NewMaterial{
			Title:  "Phone",
			Cover:  uploadPtr("a.jpg"),
			Others: []domain.Upload{upload("b.jpg"), script},
		}, "other_images"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := catalog.CreateMaterial(context.Background(), tc.in)
			require.ErrorIs(t, err, domain.ErrInvalidImage)
			require.ErrorIs(t, err, domain.ErrInvalidInput)

			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, tc.field, verr.Fields[0].Field)
		})
	}

	assert.Zero(t, store.stores)
	assert.Zero(t, countRows(t, db, "materials"))
}

func TestCatalogService_CreateMaterial_FixesMismatchedExtension(t *testing.T) {
	catalog, _, _ := newCatalog(t)
	png := upload("shot.png")
	png.Filename = "shot.html"
	jpeg := upload("photo.JPEG")

	m, err := catalog.CreateMaterial(context.Background(), service.NewMaterial{
		Title:  "Camera",
		Cover:  &png,
		Others: []domain.Upload{jpeg},
	})
	require.NoError(t, err)
	assert.Equal(t, "/mem/shot.png", m.Images[0].ImageURL)
	assert.Equal(t, "/mem/photo.JPEG", m.Images[1].ImageURL)
}
