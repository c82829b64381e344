package transform

import (
	"strings"
	"time"

	"github.com/salesinsight/dwhetl/internal/etl"
	"github.com/salesinsight/dwhetl/internal/extract"
	"github.com/salesinsight/dwhetl/internal/logging"
)

// Products maps raw product records to staging records, validating each
// one. Unparsable price or stock values become nil and fail validation;
// optional text fields default to empty strings.
func Products(raw []extract.RawProduct, origin string) []etl.StagingProduct {
	result := make([]etl.StagingProduct, 0, len(raw))
	valid := 0

	for _, r := range raw {
		staging := etl.StagingProduct{
			Code:      strings.TrimSpace(r.ProductID),
			Name:      strings.TrimSpace(r.ProductName),
			Category:  strings.TrimSpace(r.Category),
			Price:     parseDecimal(r.Price),
			Stock:     parseInt(r.Stock),
			Origin:    origin,
			CreatedAt: time.Now(),
		}

		staging.Valid, staging.ValidationError = validateProduct(staging)
		if staging.Valid {
			valid++
		}
		result = append(result, staging)
	}

	logging.Info().
		Int("total", len(result)).
		Int("valid", valid).
		Int("invalid", len(result)-valid).
		Msg("Transformed products")

	return result
}

func validateProduct(p etl.StagingProduct) (bool, string) {
	if p.Code == "" {
		return false, "codigo de producto es requerido"
	}
	if p.Name == "" {
		return false, "nombre de producto es requerido"
	}
	if p.Price == nil || !p.Price.IsPositive() {
		return false, "precio debe ser mayor a 0"
	}
	if p.Stock == nil || *p.Stock < 0 {
		return false, "stock no puede ser negativo"
	}
	return true, ""
}
