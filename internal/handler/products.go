package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/DataGusIT/EstacaoDoces/internal/apierror"
	"github.com/DataGusIT/EstacaoDoces/internal/dto"
	"github.com/DataGusIT/EstacaoDoces/internal/repository"
	"github.com/DataGusIT/EstacaoDoces/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProductHandler struct {
	products service.ProductService
	stock    service.StockService
}

func NewProductHandler(products service.ProductService, stock service.StockService) *ProductHandler {
	return &ProductHandler{products: products, stock: stock}
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.ProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.products.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid product id"))
		return
	}
	resp, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductHandler) List(c *gin.Context) {
	var filter dto.ProductFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid product id"))
		return
	}
	var req dto.ProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.products.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid product id"))
		return
	}
	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AdjustStock applies a manual signed correction to a product's stock and
// writes the audit row.
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid product id"))
		return
	}
	var req dto.AdjustStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.stock.Adjust(c.Request.Context(), id, req.Delta, req.Reason); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Alerts returns low-stock and expiry warnings.
func (h *ProductHandler) Alerts(c *gin.Context) {
	alerts, err := h.stock.Alerts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": alerts})
}

// StockMovements lists the append-only stock audit trail.
func (h *ProductHandler) StockMovements(c *gin.Context) {
	filter := repository.StockMovementFilter{Kind: c.Query("kind")}
	if pid, err := uuid.Parse(c.Query("product_id")); err == nil {
		filter.ProductID = &pid
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "100"))

	movs, total, err := h.stock.Movements(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	type movementRow struct {
		ID          string  `json:"id"`
		ProductID   string  `json:"product_id"`
		Product     string  `json:"product"`
		Kind        string  `json:"kind"`
		Delta       int     `json:"delta"`
		StockBefore int     `json:"stock_before"`
		StockAfter  int     `json:"stock_after"`
		Reason      string  `json:"reason"`
		ReferenceID *string `json:"reference_id"`
		CreatedAt   string  `json:"created_at"`
	}
	data := make([]movementRow, 0, len(movs))
	for i := range movs {
		row := movementRow{
			ID:          movs[i].ID.String(),
			ProductID:   movs[i].ProductID.String(),
			Kind:        movs[i].Kind,
			Delta:       movs[i].Delta,
			StockBefore: movs[i].StockBefore,
			StockAfter:  movs[i].StockAfter,
			Reason:      movs[i].Reason,
			CreatedAt:   movs[i].CreatedAt.Format(time.RFC3339),
		}
		if movs[i].Product != nil {
			row.Product = movs[i].Product.Name
		}
		if movs[i].ReferenceID != nil {
			ref := movs[i].ReferenceID.String()
			row.ReferenceID = &ref
		}
		data = append(data, row)
	}
	c.JSON(http.StatusOK, gin.H{"data": data, "total": total})
}
