package repository

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stockadefence/stockade/internal/material/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) (*gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Material{}, &domain.EligibilityRule{}))

	node, err := snowflake.NewNode(4)
	require.NoError(t, err)
	return db, node
}

func addMaterial(t *testing.T, db *gorm.DB, node *snowflake.Node, sku, category, subcategory string, attrs datatypes.JSONMap, active bool) {
	t.Helper()
	cost, _ := decimal.NewFromString("1.00")
	require.NoError(t, db.Create(&domain.Material{
		ID: node.Generate(), SKU: sku, Name: sku, Category: category, Subcategory: subcategory,
		Unit: "ea", UnitCost: cost, Attributes: attrs, Active: active,
	}).Error)
}

func TestListEligibleByCategoryAndSubcategory(t *testing.T) {
	db, node := newTestDB(t)
	repo := Provide()
	ctx := context.Background()

	addMaterial(t, db, node, "PICKET-CEDAR-55", "lumber", "pickets", nil, true)
	addMaterial(t, db, node, "PICKET-CEDAR-35", "lumber", "pickets", nil, true)
	addMaterial(t, db, node, "POST-4X4-8", "lumber", "posts", nil, true)
	addMaterial(t, db, node, "PICKET-OLD", "lumber", "pickets", nil, false)

	componentID := node.Generate()
	require.NoError(t, db.Create(&domain.EligibilityRule{
		ID: node.Generate(), ComponentTypeID: componentID, Category: "lumber", Subcategory: "pickets",
	}).Error)

	items, err := repo.ListEligible(ctx, db, componentID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "PICKET-CEDAR-35", items[0].SKU)
	assert.Equal(t, "PICKET-CEDAR-55", items[1].SKU)
}

func TestListEligibleBySKU(t *testing.T) {
	db, node := newTestDB(t)
	repo := Provide()
	ctx := context.Background()

	addMaterial(t, db, node, "CONCRETE-60", "concrete", "", nil, true)
	addMaterial(t, db, node, "CONCRETE-80", "concrete", "", nil, true)

	componentID := node.Generate()
	require.NoError(t, db.Create(&domain.EligibilityRule{
		ID: node.Generate(), ComponentTypeID: componentID, MaterialSKU: "CONCRETE-60",
	}).Error)

	items, err := repo.ListEligible(ctx, db, componentID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "CONCRETE-60", items[0].SKU)
}

func TestListEligibleAttributeFilter(t *testing.T) {
	db, node := newTestDB(t)
	repo := Provide()
	ctx := context.Background()

	addMaterial(t, db, node, "PICKET-CEDAR-55", "lumber", "pickets", datatypes.JSONMap{"width": 5.5}, true)
	addMaterial(t, db, node, "PICKET-CEDAR-35", "lumber", "pickets", datatypes.JSONMap{"width": 3.5}, true)
	addMaterial(t, db, node, "PICKET-PLAIN", "lumber", "pickets", nil, true)

	componentID := node.Generate()
	require.NoError(t, db.Create(&domain.EligibilityRule{
		ID: node.Generate(), ComponentTypeID: componentID,
		Category: "lumber", Subcategory: "pickets",
		AttributeName: "width", AttributeValue: "5.5",
	}).Error)

	items, err := repo.ListEligible(ctx, db, componentID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "PICKET-CEDAR-55", items[0].SKU)
}

func TestListEligibleNoRules(t *testing.T) {
	db, node := newTestDB(t)
	repo := Provide()

	addMaterial(t, db, node, "POST-4X4-8", "lumber", "posts", nil, true)

	items, err := repo.ListEligible(context.Background(), db, node.Generate())
	require.NoError(t, err)
	assert.Empty(t, items)
}
