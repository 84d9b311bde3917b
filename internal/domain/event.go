package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// eventNamespace is the fixed UUIDv5 namespace for risk event identity.
// Changing it would change every event ID, breaking downstream idempotent
// upserts, so it is a constant rather than configuration.
var eventNamespace = uuid.MustParse("9c5f1ed2-7a4b-4d5e-9c1f-3b8a2d6e4f10")

// NewEventID derives a deterministic event identity from the fields that
// make a trigger unique. Identical inputs always produce the same ID, so
// re-evaluation is replay-safe without coordination.
func NewEventID(productID string, region Region, ts time.Time, tier Tier) string {
	key := fmt.Sprintf("%s|%s|%s|%s", productID, region.District, ts.UTC().Format(time.RFC3339), tier)
	return uuid.NewSHA1(eventNamespace, []byte(key)).String()
}
