package services

import (
	"context"
	"errors"
	"strings"

	"github.com/jobboard/apiserver/internal/apperr"
	"github.com/jobboard/apiserver/internal/auth"
	"github.com/jobboard/apiserver/internal/ownership"
	"github.com/jobboard/apiserver/internal/store"
	"github.com/jobboard/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	GetByCPF(ctx context.Context, cpf string) (types.User, error)
	List(ctx context.Context, offset, limit int) ([]types.User, int, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	SetProfileImage(ctx context.Context, id int, key string) error
}

// Registration is the input accepted when creating an account.
type Registration struct {
	Name     string
	Surname  string
	Email    string
	CPF      string
	Number   string
	Gender   string
	Password string
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo       UserRepository
	bcryptCost int
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo, bcryptCost: bcrypt.DefaultCost}
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.User{}, notFoundAs(err, "user not found")
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, offset, limit int) ([]types.User, int, error) {
	return s.repo.List(ctx, offset, limit)
}

// Register creates an account identified by email, cpf or both.
func (s *UserService) Register(ctx context.Context, reg Registration) (types.User, error) {
	email := strings.TrimSpace(reg.Email)
	cpf := strings.TrimSpace(reg.CPF)
	if (email == "" && cpf == "") || reg.Password == "" {
		var missing []string
		if email == "" && cpf == "" {
			missing = append(missing, "email or cpf")
		}
		if reg.Password == "" {
			missing = append(missing, "password")
		}
		return types.User{}, apperr.MissingFields(missing...)
	}

	if email != "" {
		if _, err := s.repo.GetByEmail(ctx, email); err == nil {
			return types.User{}, apperr.Conflict("email already registered", nil)
		} else if !errors.Is(err, store.ErrNotFound) {
			return types.User{}, err
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.bcryptCost)
	if err != nil {
		return types.User{}, err
	}

	user := types.User{
		Name:         fullName(reg.Name, reg.Surname),
		Email:        optional(email),
		CPF:          optional(cpf),
		Number:       strings.TrimSpace(reg.Number),
		Gender:       strings.TrimSpace(reg.Gender),
		PasswordHash: string(hashed),
	}
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return types.User{}, conflictMessage(err)
	}
	return created, nil
}

// Authenticate resolves identificator as an email when it contains "@" and
// as a cpf otherwise, then checks the password.
func (s *UserService) Authenticate(ctx context.Context, identificator, password string) (types.User, error) {
	identificator = strings.TrimSpace(identificator)
	if identificator == "" || password == "" {
		var missing []string
		if identificator == "" {
			missing = append(missing, "identificator")
		}
		if password == "" {
			missing = append(missing, "password")
		}
		return types.User{}, apperr.MissingFields(missing...)
	}

	var (
		user types.User
		err  error
	)
	if strings.Contains(identificator, "@") {
		user, err = s.repo.GetByEmail(ctx, identificator)
	} else {
		user, err = s.repo.GetByCPF(ctx, identificator)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, apperr.Unauthorized("invalid credentials")
		}
		return types.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, apperr.Unauthorized("invalid credentials")
	}
	return user, nil
}

// Update applies patch to the account id. Only the account holder may do so,
// and the guard runs before the patch itself is judged.
func (s *UserService) Update(ctx context.Context, principal auth.Principal, id int, patch types.UserPatch) (types.User, error) {
	if patch.Email != nil {
		patch.Email = optional(strings.TrimSpace(*patch.Email))
	}
	if patch.CPF != nil {
		patch.CPF = optional(strings.TrimSpace(*patch.CPF))
	}

	user, err := ownership.Authorize(ctx, "user", s.repo.GetByID, id, principal)
	if err != nil {
		return types.User{}, err
	}
	if patch.Empty() {
		return types.User{}, apperr.Validation("no updatable fields provided")
	}

	patch.Apply(&user)
	if user.Email == nil && user.CPF == nil {
		return types.User{}, apperr.Validation("email or cpf must remain set", "email", "cpf")
	}

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return types.User{}, conflictMessage(notFoundAs(err, "user not found"))
	}
	return updated, nil
}

func fullName(name, surname string) string {
	return strings.TrimSpace(strings.TrimSpace(name) + " " + strings.TrimSpace(surname))
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func conflictMessage(err error) error {
	var conflict *store.ConflictError
	if !errors.As(err, &conflict) {
		return err
	}
	switch {
	case strings.Contains(conflict.Constraint, "email"):
		return apperr.Conflict("email already registered", err)
	case strings.Contains(conflict.Constraint, "cpf"):
		return apperr.Conflict("cpf already registered", err)
	default:
		return apperr.Conflict("resource already exists", err)
	}
}
