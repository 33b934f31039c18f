package cart

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"companyhouse/internal/domain"
)

var identityNamespace = uuid.NewMD5(uuid.NameSpaceURL, []byte("companyhouse/cart-item"))

// Identity derives the stable cart item id for a (company, report, country)
// tuple. State-scoped countries also hash the discriminant, 0 standing in
// for a company without a state, so the same pair under another state is a
// different item.
func Identity(schema domain.PricingSchema, companyID, reportID int64, country string, discriminant *int64) string {
	key := fmt.Sprintf("%d_%d_%s", companyID, reportID, strings.ToLower(country))
	if schema == domain.PricingStateScoped {
		var d int64
		if discriminant != nil {
			d = *discriminant
		}
		key = fmt.Sprintf("%s_%d", key, d)
	}
	return uuid.NewMD5(identityNamespace, []byte(key)).String()
}
