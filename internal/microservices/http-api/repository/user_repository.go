package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User, columns ...string) error
	Activate(ctx context.Context, user *models.User, at time.Time) error
	Delete(ctx context.Context, username string) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmailAndUsername(ctx context.Context, email, username string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	List(ctx context.Context, search string, page, pageSize int) ([]models.User, int64, error)
}

// userRepository is the GORM implementation of UserRepository.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of UserRepository in a GORM implementation
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return wrapErr("create user", r.db.WithContext(ctx).Create(user).Error)
}

// Update writes only the named columns, zero values included, so fields the
// caller did not mean to touch (role, is_active) are never written back stale.
func (r *userRepository) Update(ctx context.Context, user *models.User, columns ...string) error {
	if len(columns) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(user).Select(columns).Updates(user)
	if result.Error != nil {
		return wrapErr("update user", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update user: %w", gorm.ErrRecordNotFound)
	}
	return nil
}

// Activate marks user active and stamps its login, but only if the row still
// holds the auth state user was read with. Of two requests racing on the same
// confirmation code one wins; the other gets ErrStale.
func (r *userRepository) Activate(ctx context.Context, user *models.User, at time.Time) error {
	q := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND is_active = ? AND password_hash = ? AND email = ?",
			user.ID, user.IsActive, user.Password, user.Email)
	if user.LastLogin == nil {
		q = q.Where("last_login IS NULL")
	} else {
		q = q.Where("last_login = ?", *user.LastLogin)
	}

	result := q.Updates(map[string]interface{}{
		"is_active":  true,
		"last_login": at,
	})
	if result.Error != nil {
		return wrapErr("activate user", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("activate user: %w", ErrStale)
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, username string) error {
	result := r.db.WithContext(ctx).Where("username = ?", username).Delete(&models.User{})
	if result.Error != nil {
		return wrapErr("delete user", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete user: %w", gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	// return nil on error so a zero-value user is never mistaken for a match
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, wrapErr("find user", err)
	}
	return &user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, wrapErr("find user", err)
	}
	return &user, nil
}

func (r *userRepository) FindByEmailAndUsername(ctx context.Context, email, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ? AND username = ?", email, username).First(&user).Error; err != nil {
		return nil, wrapErr("find user", err)
	}
	return &user, nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, wrapErr("check email", err)
	}
	return count > 0, nil
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, wrapErr("check username", err)
	}
	return count > 0, nil
}

// List returns users ordered by username, optionally filtered by a username fragment.
func (r *userRepository) List(ctx context.Context, search string, page, pageSize int) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Scopes(usernameContains(search)).
		Count(&total).Error; err != nil {
		return nil, 0, wrapErr("count users", err)
	}
	if err := r.db.WithContext(ctx).
		Scopes(usernameContains(search)).
		Order("username asc").
		Limit(pageSize).
		Offset(offset(page, pageSize)).
		Find(&users).Error; err != nil {
		return nil, 0, wrapErr("list users", err)
	}
	return users, total, nil
}

func usernameContains(search string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if s := strings.TrimSpace(search); s != "" {
			return db.Where("username ILIKE ?", "%"+s+"%")
		}
		return db
	}
}
