package checkout

import (
	"context"
	"fmt"
	"io"

	"gearhub-client/internal/resources"
)

// HostedGateway points the user at Razorpay's hosted checkout page.
// The widget itself is opaque; the user pays in the browser and the
// poller picks the outcome up from the backend.
type HostedGateway struct {
	Out   io.Writer
	KeyID string
}

func (g *HostedGateway) OpenCheckout(ctx context.Context, sub resources.Subscription) error {
	url := sub.ShortURL
	if url == "" {
		if sub.GatewaySubscriptionID == "" {
			return fmt.Errorf("subscription %d has no gateway handle", sub.ID)
		}
		url = "https://checkout.razorpay.com/v1/subscription?key_id=" + g.KeyID +
			"&subscription_id=" + sub.GatewaySubscriptionID
	}
	_, err := fmt.Fprintf(g.Out, "Complete payment in your browser:\n\n    %s\n\n", url)
	return err
}
