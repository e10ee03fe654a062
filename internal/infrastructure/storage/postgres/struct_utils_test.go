package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
)

type mockCatalog struct {
	entity.Catalog
	Kind   string  `db:"kind" json:"kind"`
	Prices []int64 `db:"-" json:"prices"`
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[mockCatalog]()

	expected := []string{"id", "deletion_mark", "version", "code", "name", "parent_id", "kind"}
	for _, col := range expected {
		assert.Contains(t, cols, col)
	}

	// "-" tagged fields are skipped
	assert.NotContains(t, cols, "prices")
}

func TestStructToMap(t *testing.T) {
	cat := mockCatalog{
		Catalog: entity.Catalog{
			BaseCatalog: entity.BaseCatalog{
				BaseEntity: entity.BaseEntity{
					ID:           id.New(),
					DeletionMark: true,
					Version:      5,
				},
			},
			Code: "TS-001",
			Name: "Basic T-Shirt",
		},
		Kind:   "simple",
		Prices: []int64{1999},
	}

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, true, m["deletion_mark"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "TS-001", m["code"])
	assert.Equal(t, "Basic T-Shirt", m["name"])
	assert.Equal(t, "simple", m["kind"])
	assert.NotContains(t, m, "prices")
}

func TestStructToMap_NilPointerFields(t *testing.T) {
	cat := mockCatalog{}
	m := StructToMap(cat)

	// nullable parent is carried as nil, not dropped
	assert.Contains(t, m, "parent_id")
	assert.Nil(t, m["parent_id"])
}
