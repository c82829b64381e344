package transform

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/salesinsight/dwhetl/internal/etl"
	"github.com/salesinsight/dwhetl/internal/extract"
	"github.com/salesinsight/dwhetl/internal/logging"
)

// Sales joins order headers to their line items on the order id and maps
// each order/item pair to one staging sale. Unit price is derived from the
// line total when quantity is present and nonzero.
func Sales(orders []extract.RawOrder, items []extract.RawOrderItem, origin string) []etl.StagingSale {
	itemsByOrder := make(map[string][]extract.RawOrderItem, len(orders))
	for _, item := range items {
		key := strings.TrimSpace(item.OrderID)
		itemsByOrder[key] = append(itemsByOrder[key], item)
	}

	var result []etl.StagingSale
	valid := 0

	for _, order := range orders {
		orderID := strings.TrimSpace(order.OrderID)

		for _, item := range itemsByOrder[orderID] {
			staging := etl.StagingSale{
				OrderNumber:  orderID,
				CustomerCode: strings.TrimSpace(order.CustomerID),
				ProductCode:  strings.TrimSpace(item.ProductID),
				OrderDate:    parseDate(order.OrderDate),
				Quantity:     parseInt(item.Quantity),
				Total:        parseDecimal(item.TotalPrice),
				Status:       strings.TrimSpace(order.Status),
				Origin:       origin,
				CreatedAt:    time.Now(),
			}

			if staging.Total != nil && staging.Quantity != nil && *staging.Quantity > 0 {
				unit := staging.Total.Div(decimal.NewFromInt(int64(*staging.Quantity)))
				staging.UnitPrice = &unit
			}

			staging.Valid, staging.ValidationError = validateSale(staging)
			if staging.Valid {
				valid++
			}
			result = append(result, staging)
		}
	}

	logging.Info().
		Int("total", len(result)).
		Int("valid", valid).
		Int("invalid", len(result)-valid).
		Msg("Transformed sales")

	return result
}

func validateSale(s etl.StagingSale) (bool, string) {
	if s.OrderNumber == "" {
		return false, "numero de orden es requerido"
	}
	if s.CustomerCode == "" {
		return false, "codigo de cliente es requerido"
	}
	if s.ProductCode == "" {
		return false, "codigo de producto es requerido"
	}
	if s.OrderDate == nil {
		return false, "fecha de orden es requerida"
	}
	if s.Quantity == nil || *s.Quantity <= 0 {
		return false, "cantidad debe ser mayor a 0"
	}
	if s.Total == nil || !s.Total.IsPositive() {
		return false, "total de venta debe ser mayor a 0"
	}
	return true, ""
}
