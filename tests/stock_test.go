package tests

import (
	"context"
	"testing"
	"time"

	"github.com/DataGusIT/EstacaoDoces/internal/model"
	"github.com/DataGusIT/EstacaoDoces/internal/repository"
	"github.com/DataGusIT/EstacaoDoces/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStockFixture() (*fakeProductRepo, *fakeStockMovementRepo, service.StockService) {
	products := newFakeProductRepo()
	movements := &fakeStockMovementRepo{}
	return products, movements, service.NewStockService(products, movements)
}

func TestAdjustStock_SignedDeltaWithAudit(t *testing.T) {
	products, movements, stock := newStockFixture()
	ctx := context.Background()

	p := &model.Product{Name: "Doce de leite", Quantity: 10, SalePrice: dec("7.00")}
	require.NoError(t, products.Create(ctx, p))

	require.NoError(t, stock.Adjust(ctx, p.ID, 5, "recebimento de fornecedor"))
	require.NoError(t, stock.Adjust(ctx, p.ID, -3, "perda por avaria"))

	got, _ := products.FindByID(ctx, p.ID)
	assert.Equal(t, 12, got.Quantity)

	require.Len(t, movements.movements, 2)
	assert.Equal(t, model.StockAdjustment, movements.movements[0].Kind)
	assert.Equal(t, 5, movements.movements[0].Delta)
	assert.Equal(t, 10, movements.movements[0].StockBefore)
	assert.Equal(t, 15, movements.movements[0].StockAfter)
	assert.Equal(t, -3, movements.movements[1].Delta)
}

func TestAdjustStock_Guards(t *testing.T) {
	products, _, stock := newStockFixture()
	ctx := context.Background()

	p := &model.Product{Name: "Goiabada", Quantity: 2, SalePrice: dec("9.00")}
	require.NoError(t, products.Create(ctx, p))

	err := stock.Adjust(ctx, p.ID, 0, "nada")
	assert.ErrorIs(t, err, service.ErrInvalidAmount)

	err = stock.Adjust(ctx, uuid.New(), 1, "produto fantasma")
	assert.ErrorIs(t, err, service.ErrNoSuchProduct)

	// Cannot adjust below zero: same guard as the sales path.
	err = stock.Adjust(ctx, p.ID, -5, "baixa indevida")
	var insufficient *service.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 2, insufficient.Available)
	assert.Equal(t, 5, insufficient.Requested)

	got, _ := products.FindByID(ctx, p.ID)
	assert.Equal(t, 2, got.Quantity)
}

func TestCheckAvailable(t *testing.T) {
	products, _, stock := newStockFixture()
	ctx := context.Background()

	p := &model.Product{Name: "Pé de moleque", Quantity: 4, SalePrice: dec("2.00")}
	require.NoError(t, products.Create(ctx, p))

	ok, err := stock.CheckAvailable(ctx, p.ID, 4)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = stock.CheckAvailable(ctx, p.ID, 5)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = stock.CheckAvailable(ctx, uuid.New(), 1)
	assert.ErrorIs(t, err, service.ErrNoSuchProduct)
}

func TestStockAlerts_Classification(t *testing.T) {
	products, _, stock := newStockFixture()
	ctx := context.Background()

	low := &model.Product{Name: "Bala de coco", Quantity: 2, MinQuantity: 5, SalePrice: dec("0.50")}
	require.NoError(t, products.Create(ctx, low))

	soon := time.Now().Add(10 * 24 * time.Hour)
	expiring := &model.Product{Name: "Mousse", Quantity: 20, MinQuantity: 5, SalePrice: dec("6.00"), ExpiresAt: &soon}
	require.NoError(t, products.Create(ctx, expiring))

	past := time.Now().Add(-24 * time.Hour)
	expired := &model.Product{Name: "Torta gelada", Quantity: 8, MinQuantity: 5, SalePrice: dec("25.00"), ExpiresAt: &past}
	require.NoError(t, products.Create(ctx, expired))

	healthy := &model.Product{Name: "Geleia", Quantity: 50, MinQuantity: 5, SalePrice: dec("11.00")}
	require.NoError(t, products.Create(ctx, healthy))

	alerts, err := stock.Alerts(ctx)
	require.NoError(t, err)

	kinds := map[string]string{}
	for _, a := range alerts {
		kinds[a.Name] = a.Kind
	}
	assert.Equal(t, "low_stock", kinds["Bala de coco"])
	assert.Equal(t, "expiring", kinds["Mousse"])
	assert.Equal(t, "expired", kinds["Torta gelada"])
	_, present := kinds["Geleia"]
	assert.False(t, present)
	assert.Len(t, alerts, 3)
}

func TestStockMovements_FilterByProduct(t *testing.T) {
	products, _, stock := newStockFixture()
	ctx := context.Background()

	a := &model.Product{Name: "Canjica", Quantity: 10, SalePrice: dec("5.00")}
	b := &model.Product{Name: "Arroz doce", Quantity: 10, SalePrice: dec("5.00")}
	require.NoError(t, products.Create(ctx, a))
	require.NoError(t, products.Create(ctx, b))

	require.NoError(t, stock.Adjust(ctx, a.ID, 3, "reposição"))
	require.NoError(t, stock.Adjust(ctx, b.ID, 2, "reposição"))
	require.NoError(t, stock.Adjust(ctx, a.ID, -1, "degustação"))

	movs, total, err := stock.Movements(ctx, repository.StockMovementFilter{ProductID: &a.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, movs, 2)
}
