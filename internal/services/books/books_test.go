package books

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wiselib/internal/models"
	"wiselib/internal/storage"
)

func testBook(id string) models.BookRecord {
	return models.BookRecord{
		ID: id, Title: "Title " + id, Author: "Author", Category: "CS",
		Copies: 3, Available: 2, Status: models.BookAvailable,
	}
}

func TestCreateValidatesAvailability(t *testing.T) {
	svc := New(storage.NewMemory(), nil)

	tests := []struct {
		name      string
		copies    int
		available int
		wantErr   bool
	}{
		{"in range", 3, 2, false},
		{"zero available", 3, 0, false},
		{"negative", 3, -1, true},
		{"above copies", 3, 4, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := testBook("B-" + tt.name)
			b.Copies = tt.copies
			b.Available = tt.available
			err := svc.Create(b)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrAvailabilityRange)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUpdatePatchesOnlySetFields(t *testing.T) {
	svc := New(storage.NewMemory(), nil)
	require.NoError(t, svc.Create(testBook("B1")))

	title := "New Title"
	avail := 1
	require.NoError(t, svc.Update("B1", Patch{Title: &title, Available: &avail}))

	got, ok := svc.Get("B1")
	require.True(t, ok)
	assert.Equal(t, "New Title", got.Title)
	assert.Equal(t, 1, got.Available)
	assert.Equal(t, "Author", got.Author)
}

func TestUpdateValidatesMergedAvailability(t *testing.T) {
	svc := New(storage.NewMemory(), nil)
	require.NoError(t, svc.Create(testBook("B1"))) // copies 3, available 2

	tests := []struct {
		name      string
		patch     Patch
		wantErr   bool
		available int
	}{
		{"available above copies", Patch{Available: intPtr(99)}, true, 2},
		{"negative available", Patch{Available: intPtr(-1)}, true, 2},
		{"copies dropped below available", Patch{Copies: intPtr(1)}, true, 2},
		{"both patched consistently", Patch{Copies: intPtr(10), Available: intPtr(10)}, false, 10},
		{"available alone in range", Patch{Available: intPtr(0)}, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Update("B1", tt.patch)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrAvailabilityRange)
			} else {
				assert.NoError(t, err)
			}
			got, ok := svc.Get("B1")
			require.True(t, ok)
			assert.Equal(t, tt.available, got.Available)
		})
	}
}

func intPtr(n int) *int { return &n }

func TestAddColumnBackfillsDefault(t *testing.T) {
	svc := New(storage.NewMemory(), nil)
	require.NoError(t, svc.Create(testBook("B1")))
	require.NoError(t, svc.Create(testBook("B2")))

	require.NoError(t, svc.AddColumn(models.CustomColumn{Key: "publisher", Label: "Publisher", Type: models.ColumnText}))
	require.NoError(t, svc.AddColumn(models.CustomColumn{Key: "edition", Label: "Edition", Type: models.ColumnNumber}))

	for _, id := range []string{"B1", "B2"} {
		b, ok := svc.Get(id)
		require.True(t, ok)
		assert.Equal(t, "", b.Extra["publisher"])
		assert.Equal(t, float64(0), b.Extra["edition"])
	}
	assert.Len(t, svc.Columns(), 2)
}

func TestAddColumnKeepsExistingValues(t *testing.T) {
	svc := New(storage.NewMemory(), nil)
	b := testBook("B1")
	b.Extra = map[string]any{"publisher": "Pearson"}
	require.NoError(t, svc.Create(b))

	require.NoError(t, svc.AddColumn(models.CustomColumn{Key: "publisher", Label: "Publisher", Type: models.ColumnText}))
	got, _ := svc.Get("B1")
	assert.Equal(t, "Pearson", got.Extra["publisher"])
}

func TestAddColumnRejectsCoreKeyAndDuplicates(t *testing.T) {
	svc := New(storage.NewMemory(), nil)

	err := svc.AddColumn(models.CustomColumn{Key: "title", Label: "Title", Type: models.ColumnText})
	assert.Error(t, err)

	require.NoError(t, svc.AddColumn(models.CustomColumn{Key: "publisher", Type: models.ColumnText}))
	err = svc.AddColumn(models.CustomColumn{Key: "publisher", Type: models.ColumnText})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestRemoveColumnStripsKey(t *testing.T) {
	svc := New(storage.NewMemory(), nil)
	require.NoError(t, svc.Create(testBook("B1")))
	require.NoError(t, svc.AddColumn(models.CustomColumn{Key: "publisher", Type: models.ColumnText}))

	require.NoError(t, svc.RemoveColumn("publisher"))

	assert.Empty(t, svc.Columns())
	b, _ := svc.Get("B1")
	_, present := b.Extra["publisher"]
	assert.False(t, present)
}

func TestLabelPayload(t *testing.T) {
	svc := New(storage.NewMemory(), nil)
	require.NoError(t, svc.Create(testBook("B1")))

	payload, err := svc.LabelPayload("B1")
	require.NoError(t, err)
	assert.Contains(t, payload, `"t":"BOOK"`)
	assert.Contains(t, payload, `"id":"B1"`)

	_, err = svc.LabelPayload("missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestEnsureSeedOnlyOnEmptyStore(t *testing.T) {
	svc := New(storage.NewMemory(), nil)
	require.NoError(t, svc.EnsureSeed())
	require.Len(t, svc.List(), 1)

	require.NoError(t, svc.EnsureSeed())
	assert.Len(t, svc.List(), 1)
}
