package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stockadefence/stockade/internal/clock"
	"github.com/stockadefence/stockade/internal/config"
	estimatedomain "github.com/stockadefence/stockade/internal/estimate/domain"
	estimateservice "github.com/stockadefence/stockade/internal/estimate/service"
	templatedomain "github.com/stockadefence/stockade/internal/formulatemplate/domain"
	templaterepo "github.com/stockadefence/stockade/internal/formulatemplate/repository"
	materialdomain "github.com/stockadefence/stockade/internal/material/domain"
	materialrepo "github.com/stockadefence/stockade/internal/material/repository"
	producttypedomain "github.com/stockadefence/stockade/internal/producttype/domain"
	producttyperepo "github.com/stockadefence/stockade/internal/producttype/repository"
	"github.com/stockadefence/stockade/internal/project/domain"
	projectrepo "github.com/stockadefence/stockade/internal/project/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fixture struct {
	node *snowflake.Node
	db   *gorm.DB

	productTypeID snowflake.ID
	projectID     snowflake.ID
	lineA         snowflake.ID
	lineB         snowflake.ID
}

func newTestService(t *testing.T) (*Service, *fixture) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&producttypedomain.ProductType{},
		&producttypedomain.ProductStyle{},
		&producttypedomain.Variable{},
		&producttypedomain.ComponentType{},
		&producttypedomain.ComponentAssignment{},
		&templatedomain.FormulaTemplate{},
		&materialdomain.Material{},
		&domain.Project{},
		&domain.LineItem{},
		&domain.MaterialRowRecord{},
	))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	estimator := estimateservice.New(estimateservice.Params{
		DB:              db,
		Log:             zap.NewNop(),
		Cfg:             &config.Config{},
		ProductTypeRepo: producttyperepo.Provide(),
		TemplateRepo:    templaterepo.Provide(),
		MaterialRepo:    materialrepo.Provide(),
	})

	svc := New(Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Clock:     clock.SystemClock{},
		Estimator: estimator,
		Repo:      projectrepo.Provide(),
	}).(*Service)

	f := &fixture{node: node, db: db}
	f.seed(t)
	return svc, f
}

// seed: a wood fence with a sku-rounded post component and a project-rounded
// concrete component, plus a project with two 35ft runs (30ft net each).
func (f *fixture) seed(t *testing.T) {
	t.Helper()

	f.productTypeID = f.node.Generate()
	require.NoError(t, f.db.Create(&producttypedomain.ProductType{
		ID: f.productTypeID, Code: "wood-vertical", Name: "Wood Vertical", Active: true,
	}).Error)

	postID := f.node.Generate()
	concreteID := f.node.Generate()
	require.NoError(t, f.db.Create(&producttypedomain.ComponentType{ID: postID, Code: "post", Name: "Line Post", Unit: "ea"}).Error)
	require.NoError(t, f.db.Create(&producttypedomain.ComponentType{ID: concreteID, Code: "concrete", Name: "Concrete Bag", Unit: "bag"}).Error)
	require.NoError(t, f.db.Create(&producttypedomain.ComponentAssignment{
		ID: f.node.Generate(), ProductTypeID: f.productTypeID, ComponentTypeID: postID, DisplayOrder: 10,
	}).Error)
	require.NoError(t, f.db.Create(&producttypedomain.ComponentAssignment{
		ID: f.node.Generate(), ProductTypeID: f.productTypeID, ComponentTypeID: concreteID, DisplayOrder: 20,
	}).Error)

	require.NoError(t, f.db.Create(&templatedomain.FormulaTemplate{
		ID: f.node.Generate(), ProductTypeID: f.productTypeID, ComponentTypeID: postID,
		FormulaText: "ROUNDUP([Quantity]/8)+1", RoundingLevel: templatedomain.RoundingSku, Active: true,
	}).Error)
	require.NoError(t, f.db.Create(&templatedomain.FormulaTemplate{
		ID: f.node.Generate(), ProductTypeID: f.productTypeID, ComponentTypeID: concreteID,
		FormulaText: "[Quantity]/100", RoundingLevel: templatedomain.RoundingProject, Active: true,
	}).Error)

	postCost, _ := decimal.NewFromString("12.50")
	bagCost, _ := decimal.NewFromString("6.00")
	require.NoError(t, f.db.Create(&materialdomain.Material{
		ID: f.node.Generate(), SKU: "POST-4X4-8", Name: "4x4x8 Treated Post", Unit: "ea", UnitCost: postCost, Active: true,
	}).Error)
	require.NoError(t, f.db.Create(&materialdomain.Material{
		ID: f.node.Generate(), SKU: "CONCRETE-60", Name: "Concrete 60lb Bag", Unit: "bag", UnitCost: bagCost, Active: true,
	}).Error)

	f.projectID = f.node.Generate()
	require.NoError(t, f.db.Create(&domain.Project{ID: f.projectID, Name: "Hendricks Backyard"}).Error)

	selections := datatypes.JSONMap{"post": "POST-4X4-8", "concrete": "CONCRETE-60"}
	f.lineA = f.node.Generate()
	f.lineB = f.node.Generate()
	require.NoError(t, f.db.Create(&domain.LineItem{
		ID: f.lineA, ProjectID: f.projectID, ProductTypeID: f.productTypeID,
		TotalFootage: 35, Buffer: 5, NumberOfLines: 1, Selections: selections, DisplayOrder: 1,
	}).Error)
	require.NoError(t, f.db.Create(&domain.LineItem{
		ID: f.lineB, ProjectID: f.projectID, ProductTypeID: f.productTypeID,
		TotalFootage: 35, Buffer: 5, NumberOfLines: 1, Selections: selections, DisplayOrder: 2,
	}).Error)
}

func TestRecalculatePersistsRows(t *testing.T) {
	svc, f := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Recalculate(ctx, f.projectID.String())
	require.NoError(t, err)
	require.NotEmpty(t, resp.PassID)
	require.Len(t, resp.Rows, 2)

	// Posts round per line item: ceil(30/8)+1 = 5 each, 10 total.
	post, ok := rowFor(resp.Rows, "post")
	require.True(t, ok)
	assert.Equal(t, 10.0, post.RoundedQty)

	// Concrete rounds the aggregate: ceil(0.3+0.3) = 1, not 2.
	concrete, ok := rowFor(resp.Rows, "concrete")
	require.True(t, ok)
	assert.InDelta(t, 0.6, concrete.CalculatedQty, 1e-9)
	assert.Equal(t, 1.0, concrete.RoundedQty)

	// Net length was restamped on the line items.
	var stored domain.LineItem
	require.NoError(t, f.db.First(&stored, "id = ?", f.lineA).Error)
	assert.Equal(t, 30.0, stored.NetLength)

	// The pass stamp landed on the project.
	var project domain.Project
	require.NoError(t, f.db.First(&project, "id = ?", f.projectID).Error)
	assert.Equal(t, resp.PassID, project.LastPassID)

	// Reads reflect the persisted rows.
	rows, err := svc.Materials(ctx, f.projectID.String())
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestAdjustmentSurvivesRecalculation(t *testing.T) {
	svc, f := newTestService(t)
	ctx := context.Background()

	_, err := svc.Recalculate(ctx, f.projectID.String())
	require.NoError(t, err)

	row, err := svc.SetAdjustment(ctx, f.projectID.String(), domain.SetAdjustmentRequest{
		ComponentCode: "post", MaterialSKU: "POST-4X4-8", Adjustment: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, 5.0, row.Adjustment)
	assert.Equal(t, 15.0, row.TotalQty)
	assert.True(t, row.TotalCost.Equal(decimal.NewFromFloat(187.50)))

	// Footage changes and the project is recalculated; the manual +5 stays.
	require.NoError(t, f.db.Exec(`UPDATE line_items SET total_footage = 45 WHERE id = ?`, f.lineA).Error)
	resp, err := svc.Recalculate(ctx, f.projectID.String())
	require.NoError(t, err)

	post, ok := rowFor(resp.Rows, "post")
	require.True(t, ok)
	assert.Equal(t, 5.0, post.Adjustment)
	assert.Equal(t, post.RoundedQty+5, post.TotalQty)
}

func TestDeselectedMaterialRowDropped(t *testing.T) {
	svc, f := newTestService(t)
	ctx := context.Background()

	_, err := svc.Recalculate(ctx, f.projectID.String())
	require.NoError(t, err)

	_, err = svc.SetAdjustment(ctx, f.projectID.String(), domain.SetAdjustmentRequest{
		ComponentCode: "concrete", MaterialSKU: "CONCRETE-60", Adjustment: 3,
	})
	require.NoError(t, err)

	// Concrete deselected on both runs: the row must vanish, adjustment
	// included, rather than lingering with stale values.
	require.NoError(t, f.db.Exec(
		`UPDATE line_items SET selections = ? WHERE project_id = ?`,
		datatypes.JSONMap{"post": "POST-4X4-8"}, f.projectID,
	).Error)

	resp, err := svc.Recalculate(ctx, f.projectID.String())
	require.NoError(t, err)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, "post", resp.Rows[0].ComponentCode)
}

func TestRecalculateUnknownProject(t *testing.T) {
	svc, f := newTestService(t)

	_, err := svc.Recalculate(context.Background(), f.node.Generate().String())
	require.ErrorIs(t, err, domain.ErrProjectNotFound)

	_, err = svc.Recalculate(context.Background(), "not-a-snowflake")
	require.ErrorIs(t, err, domain.ErrInvalidProject)
}

func TestSetAdjustmentUnknownRow(t *testing.T) {
	svc, f := newTestService(t)
	ctx := context.Background()

	_, err := svc.Recalculate(ctx, f.projectID.String())
	require.NoError(t, err)

	_, err = svc.SetAdjustment(ctx, f.projectID.String(), domain.SetAdjustmentRequest{
		ComponentCode: "post", MaterialSKU: "NOPE", Adjustment: 1,
	})
	require.ErrorIs(t, err, domain.ErrRowNotFound)
}

// The sequence counter is what makes a stale pass discard its output: each
// Recalculate takes a new sequence number, and a pass only commits if its
// number is still the latest one.
func TestPassSequenceSupersedes(t *testing.T) {
	svc, f := newTestService(t)

	stale := svc.beginPass(f.projectID)
	newer := svc.beginPass(f.projectID)

	assert.NotEqual(t, stale, newer)
	assert.Equal(t, newer, svc.currentPass(f.projectID))
	assert.NotEqual(t, stale, svc.currentPass(f.projectID))
}

func rowFor(rows []estimatedomain.MaterialRow, code string) (estimatedomain.MaterialRow, bool) {
	for _, r := range rows {
		if r.ComponentCode == code {
			return r, true
		}
	}
	return estimatedomain.MaterialRow{}, false
}
