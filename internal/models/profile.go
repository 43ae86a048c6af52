package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription tiers. Each tier maps to a fixed monthly quota of plan and
// preview generations, configurable at startup.
const (
	TierFree   = "free"
	TierCasual = "casual"
	TierPro    = "pro"
)

type Profile struct {
	UserID      uuid.UUID
	Tier        string
	CreditsUsed int
	PeriodKey   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
