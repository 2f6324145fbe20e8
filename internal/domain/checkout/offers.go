package checkout

import "strings"

// Offer is a storefront promo code. Percent offers discount the
// subtotal; free-shipping offers zero the delivery fee instead.
type Offer struct {
	Code         string  `json:"code"`
	Description  string  `json:"description"`
	Percent      float64 `json:"percent"`
	FreeShipping bool    `json:"free_shipping"`
	MinSubtotal  int64   `json:"min_subtotal"` // paise, 0 = none
}

// Static storefront offers. Codes outside this table go to the external
// promo validation endpoint.
var offers = map[string]Offer{
	"WELCOME10": {
		Code:        "WELCOME10",
		Description: "10% off for new customers",
		Percent:     10,
	},
	"SAVE20": {
		Code:        "SAVE20",
		Description: "20% off on orders above ₹500",
		Percent:     20,
		MinSubtotal: 50000,
	},
	"FREESHIP": {
		Code:         "FREESHIP",
		Description:  "Free shipping on orders above ₹300",
		FreeShipping: true,
		MinSubtotal:  30000,
	},
	"NEWUSER": {
		Code:        "NEWUSER",
		Description: "15% off on your first order",
		Percent:     15,
	},
}

func lookupOffer(code string) (Offer, bool) {
	offer, ok := offers[strings.ToUpper(strings.TrimSpace(code))]
	return offer, ok
}
