package market

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/normalize"
)

// WhatsAppLink builds a wa.me deep link that opens a chat with the seller
// of p, prefilled with an enquiry about the listing.
func WhatsAppLink(p Product) (string, error) {
	phone := normalize.Phone(p.SellerPhone)
	if phone == "" {
		return "", ErrContactUnavailable
	}
	text := fmt.Sprintf("Hello! I'm interested in your \"%s\" on Campus Market.", p.Name)
	// wa.me wants %20 for spaces; QueryEscape already turns a literal '+' into %2B.
	encoded := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	return "https://wa.me/" + phone + "?text=" + encoded, nil
}
