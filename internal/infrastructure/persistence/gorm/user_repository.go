package gorm

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/alchemorsel/foodgram/internal/domain/user"
	"github.com/alchemorsel/foodgram/internal/ports/outbound"
)

// UserRepository implements the user repository interface using GORM
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) outbound.UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	model := UserToModel(u)

	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return r.takenError(ctx, u, result.Error)
		}
		return result.Error
	}

	u.AssignID(model.ID)
	return nil
}

// takenError tells which unique column clashed. Translated driver errors
// drop the constraint name, so the email is looked up again in that case.
func (r *UserRepository) takenError(ctx context.Context, u *user.User, err error) error {
	if name := violatedConstraint(err); name != "" {
		switch {
		case strings.Contains(name, "email"):
			return user.ErrEmailTaken
		case strings.Contains(name, "username"):
			return user.ErrUsernameTaken
		}
	}
	if taken, lookupErr := r.ExistsByEmail(ctx, u.Email()); lookupErr == nil && taken {
		return user.ErrEmailTaken
	}
	return user.ErrUsernameTaken
}

// FindByID finds a user by ID
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*user.User, error) {
	var model UserModel

	result := r.db.WithContext(ctx).First(&model, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, result.Error
	}

	return ModelToUser(&model), nil
}

// FindByUsername finds a user by username
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	var model UserModel

	result := r.db.WithContext(ctx).Where("username = ?", username).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, result.Error
	}

	return ModelToUser(&model), nil
}

// Exists checks if a user exists by ID
func (r *UserRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, "id = ?", id)
}

// ExistsByEmail checks if a user exists with the given email
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", strings.ToLower(email))
}

// ExistsByUsername checks if a user exists with the given username
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username = ?", username)
}

func (r *UserRepository) exists(ctx context.Context, query string, arg interface{}) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&UserModel{}).Where(query, arg).Count(&count).Error
	return count > 0, err
}

// ListFollowing returns the authors userID follows, ordered by id
func (r *UserRepository) ListFollowing(ctx context.Context, userID int64, page outbound.Page) ([]*user.User, int64, error) {
	following := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&UserModel{}).
			Joins("JOIN follows ON follows.following_id = users.id").
			Where("follows.user_id = ?", userID)
	}

	var total int64
	if err := following().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := following().Order("users.id")
	if page.Limit > 0 {
		q = q.Limit(page.Limit)
	}
	if page.Offset > 0 {
		q = q.Offset(page.Offset)
	}

	var models []UserModel
	if err := q.Find(&models).Error; err != nil {
		return nil, 0, err
	}

	users := make([]*user.User, len(models))
	for i := range models {
		users[i] = ModelToUser(&models[i])
	}
	return users, total, nil
}
