package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhatsAppLink(t *testing.T) {
	link, err := WhatsAppLink(Product{Name: "Desk Lamp & Bulb", SellerPhone: "+91 98765-43210"})
	require.NoError(t, err)
	assert.Equal(t,
		"https://wa.me/919876543210?text=Hello%21%20I%27m%20interested%20in%20your%20%22Desk%20Lamp%20%26%20Bulb%22%20on%20Campus%20Market.",
		link)

	_, err = WhatsAppLink(Product{Name: "Lamp", SellerPhone: " - "})
	assert.ErrorIs(t, err, ErrContactUnavailable)
}
