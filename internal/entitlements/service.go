// Package entitlements enforces the monthly plan-generation quota. The
// counter lives on the profile row; every successful Consume increments it
// exactly once, guarded by a compare-and-swap update with one retry, so
// concurrent callers can never push usage past the tier's quota.
package entitlements

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"diygenie-backend/internal/models"
)

var (
	// ErrQuotaExhausted is an expected outcome, not a fault: the caller is
	// out of credits for this period.
	ErrQuotaExhausted = errors.New("entitlements: quota exhausted")
	// ErrConsumeConflict means both CAS attempts lost to concurrent
	// consumers; the caller may repeat the whole request.
	ErrConsumeConflict = errors.New("entitlements: consume conflict")
)

// ProfileStore is the slice of the database the quota gate touches.
// ConsumeCredit must apply atomically and only when the row still matches
// the observed counter and period key.
type ProfileStore interface {
	GetProfile(userID uuid.UUID) (*models.Profile, error)
	RolloverProfile(userID uuid.UUID, staleKey, currentKey string) error
	ConsumeCredit(userID uuid.UUID, observedUsed int, periodKey string) (bool, error)
}

type Quotas struct {
	Free   int
	Casual int
	Pro    int
}

type Service struct {
	store  ProfileStore
	quotas Quotas
	now    func() time.Time
}

func NewService(store ProfileStore, quotas Quotas) *Service {
	return &Service{
		store:  store,
		quotas: quotas,
		now:    time.Now,
	}
}

// NewServiceAt fixes the clock, for tests that exercise period rollover.
func NewServiceAt(store ProfileStore, quotas Quotas, now func() time.Time) *Service {
	s := NewService(store, quotas)
	s.now = now
	return s
}

// Status is the quota view returned by Check and Consume. On
// ErrQuotaExhausted it is still populated so callers can report the
// numbers alongside the refusal.
type Status struct {
	Tier      string
	Quota     int
	Used      int
	Remaining int
}

func (s *Service) Quota(tier string) int {
	switch tier {
	case models.TierPro:
		return s.quotas.Pro
	case models.TierCasual:
		return s.quotas.Casual
	default:
		return s.quotas.Free
	}
}

// PeriodKey tags the current quota window, UTC year+month.
func (s *Service) PeriodKey() string {
	return s.now().UTC().Format("200601")
}

// current reads the profile, rolling the period over first if the stored
// key is stale. The rollover write is conditional on the stale key, so two
// racers both land on a zeroed counter; no retry needed.
func (s *Service) current(userID uuid.UUID) (*models.Profile, error) {
	profile, err := s.store.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	currentKey := s.PeriodKey()
	if profile.PeriodKey != currentKey {
		if err := s.store.RolloverProfile(userID, profile.PeriodKey, currentKey); err != nil {
			return nil, err
		}
		profile, err = s.store.GetProfile(userID)
		if err != nil {
			return nil, err
		}
	}

	return profile, nil
}

// Check reports quota state without consuming.
func (s *Service) Check(userID uuid.UUID) (Status, error) {
	profile, err := s.current(userID)
	if err != nil {
		return Status{}, err
	}
	return s.status(profile), nil
}

// Consume spends one credit. Read, check headroom, then the conditional
// increment; if another request won the race, re-read once and try again
// with the fresh counter. A second miss surfaces as ErrConsumeConflict —
// never a silent drop, never a double count.
func (s *Service) Consume(userID uuid.UUID) (Status, error) {
	for attempt := 0; attempt < 2; attempt++ {
		profile, err := s.current(userID)
		if err != nil {
			return Status{}, err
		}

		st := s.status(profile)
		if st.Remaining <= 0 {
			return st, ErrQuotaExhausted
		}

		applied, err := s.store.ConsumeCredit(userID, profile.CreditsUsed, profile.PeriodKey)
		if err != nil {
			return Status{}, err
		}
		if applied {
			st.Used++
			st.Remaining--
			return st, nil
		}
	}

	return Status{}, ErrConsumeConflict
}

func (s *Service) status(profile *models.Profile) Status {
	quota := s.Quota(profile.Tier)
	remaining := quota - profile.CreditsUsed
	if remaining < 0 {
		remaining = 0
	}
	return Status{
		Tier:      profile.Tier,
		Quota:     quota,
		Used:      profile.CreditsUsed,
		Remaining: remaining,
	}
}
