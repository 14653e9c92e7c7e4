package device

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/displayhub/internal/infrastructure/database"
	"github.com/nerrad567/displayhub/internal/infrastructure/logging"
)

// maxCodeAttempts bounds the pairing-code allocation loop.
const maxCodeAttempts = 10

// Notifier is told about committed pairing changes.
type Notifier interface {
	PairingChanged(ctx context.Context, deviceID string, paired bool) error
}

// Service implements display registration and the pairing lifecycle.
type Service struct {
	repo         Repository
	secret       []byte
	notifier     Notifier
	queryTimeout time.Duration
	logger       *logging.Logger

	// Replaced in tests.
	newCode func() (string, error)
	newName func() (string, error)
}

// ServiceDeps holds the collaborators for NewService.
type ServiceDeps struct {
	Repository Repository

	// RegistrationSecret is the shared secret baked into display firmware.
	RegistrationSecret string

	// Notifier is optional.
	Notifier Notifier

	QueryTimeout time.Duration
	Logger       *logging.Logger
}

// NewService creates the device service.
func NewService(deps ServiceDeps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{
		repo:         deps.Repository,
		secret:       []byte(deps.RegistrationSecret),
		notifier:     deps.Notifier,
		queryTimeout: deps.QueryTimeout,
		logger:       logger.With("component", "device"),
		newCode:      GeneratePairingCode,
		newName:      GenerateName,
	}
}

// RegisterDevice creates an unpaired display after checking the firmware secret.
func (s *Service) RegisterDevice(ctx context.Context, presentedSecret string) (*Device, error) {
	if len(s.secret) == 0 || subtle.ConstantTimeCompare([]byte(presentedSecret), s.secret) != 1 {
		return nil, ErrInvalidDeviceSecret
	}

	name, err := s.newName()
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, err
		}

		d := &Device{Name: name, PairingCode: code}
		err = s.tryCreate(ctx, d)
		switch {
		case err == nil:
			s.logger.Info("device registered", "device_id", d.ID, "attempts", attempt)
			return d, nil
		case errors.Is(err, ErrPairingCodeTaken):
			s.logger.Debug("pairing code collision", "attempt", attempt)
			continue
		default:
			return nil, err
		}
	}

	s.logger.Error("pairing code allocation exhausted", "attempts", maxCodeAttempts)
	return nil, ErrPairingCodeExhausted
}

// tryCreate checks the code is free, then inserts. The store's UNIQUE
// constraint catches any collision that slips in between.
func (s *Service) tryCreate(ctx context.Context, d *Device) error {
	ctx, cancel := database.WithQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	_, err := s.repo.GetByPairingCode(ctx, d.PairingCode)
	if err == nil {
		return ErrPairingCodeTaken
	}
	if !errors.Is(err, ErrDeviceNotFound) {
		return fmt.Errorf("checking pairing code: %w", err)
	}

	return s.repo.Create(ctx, d)
}

// Pair binds the display showing code to userID.
// A display that already has an owner is moved to userID.
func (s *Service) Pair(ctx context.Context, userID, code string) (*PairResult, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, ErrPairingCodeRequired)
	}

	storeCtx, cancel := database.WithQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	existing, err := s.repo.GetByPairingCode(storeCtx, code)
	if err != nil {
		return nil, err
	}

	d, err := s.repo.SetOwner(storeCtx, existing.ID, userID)
	if err != nil {
		return nil, err
	}

	result := &PairResult{Device: d}
	if existing.UserID != nil {
		result.PreviousOwnerID = *existing.UserID
		if *existing.UserID != userID {
			s.logger.Warn("device ownership transferred",
				"device_id", d.ID, "previous_user_id", *existing.UserID, "user_id", userID)
		}
	}

	s.logger.Info("device paired", "device_id", d.ID, "user_id", userID)
	s.notify(ctx, d.ID, true)
	return result, nil
}

// Disconnect unpairs a display owned by userID.
func (s *Service) Disconnect(ctx context.Context, userID, deviceID string) (*Device, error) {
	storeCtx, cancel := database.WithQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	d, err := s.repo.ClearOwner(storeCtx, deviceID, userID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("device disconnected", "device_id", d.ID, "user_id", userID)
	s.notify(ctx, d.ID, false)
	return d, nil
}

// Get returns a display owned by userID.
func (s *Service) Get(ctx context.Context, userID, deviceID string) (*Device, error) {
	ctx, cancel := database.WithQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	return s.repo.GetByIDForUser(ctx, deviceID, userID)
}

// List returns every display owned by userID.
func (s *Service) List(ctx context.Context, userID string) ([]Device, error) {
	ctx, cancel := database.WithQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	return s.repo.ListForUser(ctx, userID)
}

// Update applies patch to a display owned by userID.
func (s *Service) Update(ctx context.Context, userID, deviceID string, patch Patch) (*Device, error) {
	if patch.Name != nil {
		if err := ValidateName(*patch.Name); err != nil {
			return nil, err
		}
	}

	ctx, cancel := database.WithQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	return s.repo.Update(ctx, deviceID, userID, patch)
}

// notify delivers a pairing change. Failures are logged only.
func (s *Service) notify(ctx context.Context, deviceID string, paired bool) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.PairingChanged(context.WithoutCancel(ctx), deviceID, paired); err != nil {
		s.logger.Warn("pairing notification failed", "device_id", deviceID, "paired", paired, "error", err)
	}
}
