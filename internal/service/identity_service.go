package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/internal/models"
	appErrors "github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/pkg/errors"
)

type identityUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateAccountStatus(ctx context.Context, id string, status models.AccountStatus) error
	HasRole(ctx context.Context, userID string, role models.Role) (bool, error)
}

// IdentityService resolves the live approval status and admin flag for a user
// and backs the admin approval panel. Status and roles are read from the
// store on every resolve so admin decisions apply without token reissue.
type IdentityService struct {
	repo   identityUserRepository
	logger *zap.Logger
}

// NewIdentityService constructs an IdentityService instance.
func NewIdentityService(repo identityUserRepository, logger *zap.Logger) *IdentityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityService{repo: repo, logger: logger}
}

// Resolve loads the identity for the given user. Lookup failures are logged
// and degrade to an empty identity, which downstream gates treat as not
// approved and not admin.
func (s *IdentityService) Resolve(ctx context.Context, userID string) models.Identity {
	identity := models.Identity{}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("identity status lookup failed", zap.String("user_id", userID), zap.Error(err))
		}
	} else {
		identity.AccountStatus = user.AccountStatus
	}

	isAdmin, err := s.repo.HasRole(ctx, userID, models.RoleAdmin)
	if err != nil {
		s.logger.Warn("identity admin lookup failed", zap.String("user_id", userID), zap.Error(err))
		isAdmin = false
	}
	identity.IsAdmin = isAdmin

	return identity
}

// ListUsers returns every account, newest first, with per-status counts for
// the panel header.
func (s *IdentityService) ListUsers(ctx context.Context) ([]models.User, map[string]int, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	counts := map[string]int{
		string(models.StatusPending):  0,
		string(models.StatusApproved): 0,
		string(models.StatusRejected): 0,
	}
	for _, user := range users {
		counts[string(user.AccountStatus)]++
	}
	return users, counts, nil
}

// UpdateStatus moves an account between pending, approved and rejected. Any
// transition between the three states is allowed, so a rejection can be
// reversed later.
func (s *IdentityService) UpdateStatus(ctx context.Context, userID, status string) (*models.User, error) {
	if !models.ValidAccountStatus(status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "account_status must be pending, approved or rejected")
	}
	if err := s.repo.UpdateAccountStatus(ctx, userID, models.AccountStatus(status)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update account status")
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload user")
	}
	s.logger.Info("account status updated",
		zap.String("user_id", userID),
		zap.String("account_status", status),
		zap.Time("at", time.Now().UTC()))
	return user, nil
}
