package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"tableease/internal/model"
	"tableease/internal/repository"
	"tableease/pkg/rbac"
	"tableease/pkg/util"
)

var (
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrDuplicateName      = errors.New("display name already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidRole        = errors.New("unknown role")
)

type Service struct {
	userRepo  *repository.UserRepository
	jwtSecret string
}

func NewService(userRepo *repository.UserRepository, jwtSecret string) *Service {
	return &Service{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	Phone    string
}

// Register creates a new user. Email and display name must both be
// unused; either conflict aborts with no partial state.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if !rbac.ValidRole(in.Role) {
		return nil, ErrInvalidRole
	}

	existing, err := s.userRepo.FindByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	existing, err = s.userRepo.FindByName(ctx, in.Name)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateName
	}

	hash, err := util.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		Phone:        in.Phone,
	}

	if err := s.userRepo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

// Login checks user credentials and returns the user plus a signed JWT.
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	u, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if !util.CheckPassword(password, u.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(u.ID, u.Role, s.jwtSecret)
	if err != nil {
		return nil, "", err
	}

	return u, token, nil
}

type ProfileUpdate struct {
	Name      *string
	Phone     *string
	AvatarURL *string
}

// UpdateProfile merges the supplied fields into the stored profile.
// Only name, phone and avatar are mutable here.
func (s *Service) UpdateProfile(ctx context.Context, userID int, upd ProfileUpdate) (*model.User, error) {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	name := u.Name
	phone := u.Phone
	avatar := u.AvatarURL
	if upd.Name != nil {
		name = *upd.Name
	}
	if upd.Phone != nil {
		phone = *upd.Phone
	}
	if upd.AvatarURL != nil {
		avatar = *upd.AvatarURL
	}

	if name != u.Name {
		existing, err := s.userRepo.FindByName(ctx, name)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		if existing != nil && existing.ID != userID {
			return nil, ErrDuplicateName
		}
	}

	return s.userRepo.UpdateProfile(ctx, userID, name, phone, avatar)
}

// GetByID returns a user by id.
func (s *Service) GetByID(ctx context.Context, userID int) (*model.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}
