package service

import (
	"context"
	"errors"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/middleware/auth"
	"yamdb/internal/validation"
)

// UserService backs the admin /users endpoints and the caller's own /users/me.
type UserService interface {
	List(ctx context.Context, search string, page, pageSize int) (*dto.Paginated[dto.UserResponse], error)
	Get(ctx context.Context, username string) (*dto.UserResponse, error)
	Create(ctx context.Context, req dto.CreateUserDTO) (*dto.UserResponse, error)
	Update(ctx context.Context, username string, req dto.UpdateUserDTO) (*dto.UserResponse, error)
	Delete(ctx context.Context, username string) error
	UpdateMe(ctx context.Context, me *models.User, req dto.UpdateUserDTO) (*dto.UserResponse, error)
}

// profileColumns are the fields a user may edit on their own account.
var profileColumns = []string{"username", "email", "first_name", "last_name", "bio"}

type userService struct {
	userRepo repository.UserRepository
	cache    TitleCache
}

// NewUserService takes the title cache because deleting a user cascades to
// their reviews, which moves title ratings.
func NewUserService(userRepo repository.UserRepository, cache TitleCache) UserService {
	return &userService{userRepo: userRepo, cache: cacheOrNoop(cache)}
}

func (s *userService) List(ctx context.Context, search string, page, pageSize int) (*dto.Paginated[dto.UserResponse], error) {
	users, total, err := s.userRepo.List(ctx, search, page, pageSize)
	if err != nil {
		return nil, err
	}
	return dto.MapPaginated(users, total, page, pageSize, dto.FromModelToUserResponse), nil
}

func (s *userService) Get(ctx context.Context, username string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, translate("user", err)
	}
	resp := dto.FromModelToUserResponse(*user)
	return &resp, nil
}

// Create adds a user on behalf of an admin. The account stays inactive until
// its owner goes through signup and exchanges a confirmation code.
func (s *userService) Create(ctx context.Context, req dto.CreateUserDTO) (*dto.UserResponse, error) {
	role, err := parseRoleField(req.Role)
	if err != nil {
		return nil, err
	}
	if err := s.checkUsername(ctx, req.Username); err != nil {
		return nil, err
	}
	if err := s.checkEmail(ctx, req.Email); err != nil {
		return nil, err
	}

	password, err := auth.UnusablePassword()
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		Role:      role,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Password:  password,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, uniqueAsValidation("user", err)
	}

	resp := dto.FromModelToUserResponse(*user)
	return &resp, nil
}

func (s *userService) Update(ctx context.Context, username string, req dto.UpdateUserDTO) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, translate("user", err)
	}

	if req.Role != nil {
		role, err := parseRoleField(*req.Role)
		if err != nil {
			return nil, err
		}
		user.Role = role
	}
	return s.applyProfile(ctx, user, req, append(profileColumns, "role")...)
}

// UpdateMe lets the caller edit their own profile. A role in the payload is
// accepted and ignored.
func (s *userService) UpdateMe(ctx context.Context, me *models.User, req dto.UpdateUserDTO) (*dto.UserResponse, error) {
	if me == nil {
		return nil, ErrNotAuthenticated
	}
	user, err := s.userRepo.FindByID(ctx, me.ID)
	if err != nil {
		return nil, translate("user", err)
	}
	return s.applyProfile(ctx, user, req, profileColumns...)
}

func (s *userService) applyProfile(ctx context.Context, user *models.User, req dto.UpdateUserDTO, columns ...string) (*dto.UserResponse, error) {
	if req.Username != nil && *req.Username != user.Username {
		if err := s.checkUsername(ctx, *req.Username); err != nil {
			return nil, err
		}
		user.Username = *req.Username
	}
	if req.Email != nil && *req.Email != user.Email {
		if err := s.checkEmail(ctx, *req.Email); err != nil {
			return nil, err
		}
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}

	if err := s.userRepo.Update(ctx, user, columns...); err != nil {
		return nil, uniqueAsValidation("user", err)
	}
	resp := dto.FromModelToUserResponse(*user)
	return &resp, nil
}

func (s *userService) Delete(ctx context.Context, username string) error {
	if err := s.userRepo.Delete(ctx, username); err != nil {
		return translate("user", err)
	}
	// the user's reviews went with them
	s.cache.InvalidateAll(ctx)
	return nil
}

// checkUsername and checkEmail are only called for values the user does not
// already hold, so any existing row is a clash.
func (s *userService) checkUsername(ctx context.Context, username string) error {
	if validation.IsReservedUsername(username) {
		return newValidationError("username", `username "me" is not allowed`)
	}
	if !validation.IsValidUsername(username) {
		return newValidationError("username", "letters, digits and @/./+/-/_ only")
	}
	taken, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return err
	}
	if taken {
		return newValidationError("username", "a user with this username already exists")
	}
	return nil
}

func (s *userService) checkEmail(ctx context.Context, email string) error {
	taken, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if taken {
		return newValidationError("email", "a user with this email already exists")
	}
	return nil
}

func parseRoleField(raw string) (models.Role, error) {
	if raw == "" {
		return models.RoleUser, nil
	}
	role, err := models.ParseRole(raw)
	if err != nil {
		return "", newValidationError("role", err.Error())
	}
	return role, nil
}

// uniqueAsValidation reports a unique-index race as a plain 400.
func uniqueAsValidation(resource string, err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return newValidationError("", "a "+resource+" with these details already exists")
	}
	return translate(resource, err)
}
