package transform

import (
	"strings"
	"time"

	"github.com/salesinsight/dwhetl/internal/etl"
	"github.com/salesinsight/dwhetl/internal/extract"
	"github.com/salesinsight/dwhetl/internal/logging"
)

// Customers maps raw customer records to staging records, validating each
// one. The result has one staging record per input record.
func Customers(raw []extract.RawCustomer, origin string) []etl.StagingCustomer {
	result := make([]etl.StagingCustomer, 0, len(raw))
	valid := 0

	for _, r := range raw {
		staging := etl.StagingCustomer{
			Code:      strings.TrimSpace(r.CustomerID),
			FirstName: strings.TrimSpace(r.FirstName),
			LastName:  strings.TrimSpace(r.LastName),
			Email:     strings.TrimSpace(r.Email),
			Phone:     strings.TrimSpace(r.Phone),
			City:      strings.TrimSpace(r.City),
			Country:   strings.TrimSpace(r.Country),
			Origin:    origin,
			CreatedAt: time.Now(),
		}

		staging.Valid, staging.ValidationError = validateCustomer(staging)
		if staging.Valid {
			valid++
		}
		result = append(result, staging)
	}

	logging.Info().
		Int("total", len(result)).
		Int("valid", valid).
		Int("invalid", len(result)-valid).
		Msg("Transformed customers")

	return result
}

func validateCustomer(c etl.StagingCustomer) (bool, string) {
	if c.Code == "" {
		return false, "codigo de cliente es requerido"
	}
	if c.FirstName == "" {
		return false, "nombre es requerido"
	}
	if c.LastName == "" {
		return false, "apellido es requerido"
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		return false, "email invalido"
	}
	return true, ""
}
