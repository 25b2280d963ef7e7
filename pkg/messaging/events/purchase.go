// Package events contains the storefront's published event payloads.
package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/storefront/pkg/messaging"
)

// Pixels are the tracking identifiers the purchase should be reported to. Empty means unset.
type Pixels struct {
	Facebook string `json:"facebook,omitempty"`
	Google   string `json:"google,omitempty"`
	TikTok   string `json:"tiktok,omitempty"`
}

// PurchaseTrackedEvent is emitted once per placed order for analytics pixels.
// Total is the exact decimal order total, encoded as a JSON number.
type PurchaseTrackedEvent struct {
	OrderID   string      `json:"order_id"`
	Total     json.Number `json:"total"`
	ItemCount int         `json:"item_count"`
	Pixels    Pixels      `json:"pixels"`
	PlacedAt  time.Time   `json:"placed_at"`
}

func (e PurchaseTrackedEvent) Subject() string {
	return messaging.PurchaseTrackedSubject
}

func (e PurchaseTrackedEvent) Key() string {
	return e.OrderID
}

func (e PurchaseTrackedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
