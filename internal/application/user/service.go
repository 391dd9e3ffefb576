// Package user provides the application layer for user management
package user

import (
	"context"
	stderrors "errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/alchemorsel/foodgram/internal/application/errmap"
	"github.com/alchemorsel/foodgram/internal/domain/shared"
	"github.com/alchemorsel/foodgram/internal/domain/user"
	"github.com/alchemorsel/foodgram/internal/ports/inbound"
	"github.com/alchemorsel/foodgram/internal/ports/outbound"
	"github.com/alchemorsel/foodgram/pkg/errors"
)

// PasswordHasher turns a plaintext password into a storable hash
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

// UserService implements user management use cases
type UserService struct {
	userRepo  outbound.UserRepository
	relations outbound.RelationRepository
	hasher    PasswordHasher
	events    outbound.EventPublisher
	logger    *zap.Logger
	tracer    trace.Tracer
}

// NewUserService creates a new user service
func NewUserService(
	userRepo outbound.UserRepository,
	relations outbound.RelationRepository,
	hasher PasswordHasher,
	events outbound.EventPublisher,
	logger *zap.Logger,
) inbound.UserService {
	return &UserService{
		userRepo:  userRepo,
		relations: relations,
		hasher:    hasher,
		events:    events,
		logger:    logger.Named("user-service"),
		tracer:    otel.Tracer("foodgram/application/user"),
	}
}

// Register creates a new user account
func (s *UserService) Register(ctx context.Context, cmd inbound.RegisterCommand) (profile *user.Profile, err error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Register")
	defer func() { endSpan(span, err) }()

	if cmd.Password == "" {
		return nil, errors.NewFieldValidationError("password", "password is required")
	}
	cmd.Username = strings.TrimSpace(cmd.Username)
	cmd.Email = strings.ToLower(strings.TrimSpace(cmd.Email))
	if err := user.ValidateUsername(cmd.Username); err != nil {
		return nil, errmap.Repository("validate user", err)
	}

	taken, err := s.userRepo.ExistsByUsername(ctx, cmd.Username)
	if err != nil {
		return nil, errors.NewDatabaseError("check username", err)
	}
	if taken {
		return nil, errors.NewUsernameAlreadyExistsError(cmd.Username)
	}
	taken, err = s.userRepo.ExistsByEmail(ctx, cmd.Email)
	if err != nil {
		return nil, errors.NewDatabaseError("check email", err)
	}
	if taken {
		return nil, errors.NewEmailAlreadyExistsError(cmd.Email)
	}

	hash, err := s.hasher.HashPassword(cmd.Password)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	newUser, err := user.NewUser(cmd.Username, cmd.Email, cmd.FirstName, cmd.LastName, hash)
	if err != nil {
		return nil, errmap.Repository("validate user", err)
	}

	// The unique indexes still decide races between concurrent registrations.
	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return nil, errmap.Repository("create user", err)
	}
	span.SetAttributes(attribute.Int64("user.id", newUser.ID()))

	s.events.Publish(ctx, user.RegisteredEvent{
		UserID:       newUser.ID(),
		Username:     newUser.Username(),
		RegisteredAt: newUser.CreatedAt(),
	})

	s.logger.Info("User registered",
		zap.Int64("user_id", newUser.ID()),
		zap.String("username", newUser.Username()),
	)

	p := newUser.ToProfile(false)
	return &p, nil
}

// GetProfile returns a user as seen by viewer
func (s *UserService) GetProfile(ctx context.Context, viewer shared.Viewer, userID int64) (profile *user.Profile, err error) {
	ctx, span := s.tracer.Start(ctx, "UserService.GetProfile",
		trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer func() { endSpan(span, err) }()

	found, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, s.lookupError(userID, err)
	}

	subscribed := false
	if viewer.IsAuthenticated() && viewer.UserID != userID {
		followed, err := s.relations.FollowedAmong(ctx, viewer.UserID, []int64{userID})
		if err != nil {
			return nil, errors.NewDatabaseError("check subscription", err)
		}
		subscribed = followed[userID]
	}

	p := found.ToProfile(subscribed)
	return &p, nil
}

// Me returns the viewer's own profile
func (s *UserService) Me(ctx context.Context, viewer shared.Viewer) (profile *user.Profile, err error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Me")
	defer func() { endSpan(span, err) }()

	if !viewer.IsAuthenticated() {
		return nil, errors.NewUnauthorizedError("")
	}

	found, err := s.userRepo.FindByID(ctx, viewer.UserID)
	if err != nil {
		return nil, s.lookupError(viewer.UserID, err)
	}
	p := found.ToProfile(false)
	return &p, nil
}

func (s *UserService) lookupError(userID int64, err error) error {
	if stderrors.Is(err, user.ErrUserNotFound) {
		return errors.NewUserNotFoundError(userID)
	}
	return errors.NewDatabaseError("load user", err)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
