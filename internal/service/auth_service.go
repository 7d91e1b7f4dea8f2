package service

import (
	"context"
	"time"

	"veredapos/internal/config"
	"veredapos/internal/dto"
	"veredapos/internal/model"
	"veredapos/internal/state"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// pinCost is the bcrypt cost for staff PINs.
var pinCost = 12

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	ListUsers(ctx context.Context) []dto.UserResponse
	CreateUser(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error)
	UpdateUser(ctx context.Context, id string, req dto.UpdateUserRequest) (*dto.UserResponse, error)
	DeleteUser(ctx context.Context, id string) error
	// EnsureOwner creates the first owner account when there are no users.
	EnsureOwner(ctx context.Context, pin string) error
}

type authService struct {
	store *state.Store
	cfg   *config.Config
	opts  options
}

func NewAuthService(store *state.Store, cfg *config.Config, opts ...Option) AuthService {
	return &authService{store: store, cfg: cfg, opts: buildOptions(opts)}
}

func HashPIN(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), pinCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func pinMatches(u model.User, pin string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PINHash), []byte(pin)) == nil
}

func mapUser(u model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Role:        u.Role,
		Permissions: append([]model.Permission{}, u.Permissions...),
		Active:      u.Active,
	}
}

// DefaultPermissions is the profile a role starts with when the request does
// not list permissions explicitly.
func DefaultPermissions(role string) []model.Permission {
	switch role {
	case model.RoleOwner:
		return append([]model.Permission(nil), model.AllPermissions...)
	case model.RoleManager:
		return []model.Permission{
			model.PermPOSSales, model.PermPOSVoid, model.PermPOSDiscount,
			model.PermFinanceView, model.PermStockManage, model.PermStaffManage,
		}
	case model.RoleCashier:
		return []model.Permission{model.PermPOSSales, model.PermPOSDiscount}
	default:
		return []model.Permission{model.PermPOSSales}
	}
}

func (s *authService) Login(_ context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	st := s.store.Current()
	for _, u := range st.Users {
		if !u.Active || !pinMatches(u, req.PIN) {
			continue
		}
		token, err := s.generateToken(u, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
		if err != nil {
			return nil, err
		}
		log.Info().Str("user", u.Name).Msg("auth: login")
		return &dto.LoginResponse{
			AccessToken: token,
			TokenType:   "bearer",
			ExpiresIn:   s.cfg.JWTExpirationHours * 3600,
			User:        mapUser(u),
		}, nil
	}
	return nil, ErrInvalidCredentials
}

func (s *authService) ListUsers(_ context.Context) []dto.UserResponse {
	st := s.store.Current()
	out := make([]dto.UserResponse, 0, len(st.Users))
	for _, u := range st.Users {
		out = append(out, mapUser(u))
	}
	return out
}

func (s *authService) CreateUser(_ context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	hash, err := HashPIN(req.PIN)
	if err != nil {
		return nil, err
	}
	perms := req.Permissions
	if len(perms) == 0 {
		perms = DefaultPermissions(req.Role)
	}
	u := model.User{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Role:        req.Role,
		PINHash:     hash,
		Permissions: append([]model.Permission(nil), perms...),
		Active:      true,
	}
	err = s.store.Mutate(func(st *model.State) error {
		if pinTaken(st, req.PIN, "") {
			return ErrDuplicatePIN
		}
		st.Users = append(st.Users, u.Clone())
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := mapUser(u)
	return &resp, nil
}

func (s *authService) UpdateUser(_ context.Context, id string, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	var hash string
	if req.PIN != nil {
		h, err := HashPIN(*req.PIN)
		if err != nil {
			return nil, err
		}
		hash = h
	}

	var result model.User
	err := s.store.Mutate(func(st *model.State) error {
		u := st.User(id)
		if u == nil {
			return ErrUserNotFound
		}
		wasOwner := u.Role == model.RoleOwner && u.Active
		if req.Name != nil {
			u.Name = *req.Name
		}
		if req.Role != nil {
			u.Role = *req.Role
		}
		if req.Permissions != nil {
			u.Permissions = append([]model.Permission(nil), req.Permissions...)
		}
		if req.Active != nil {
			u.Active = *req.Active
		}
		if req.PIN != nil {
			if pinTaken(st, *req.PIN, id) {
				return ErrDuplicatePIN
			}
			u.PINHash = hash
		}
		if wasOwner && !(u.Role == model.RoleOwner && u.Active) && activeOwners(st) == 0 {
			return ErrLastOwner
		}
		result = u.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := mapUser(result)
	return &resp, nil
}

func (s *authService) DeleteUser(_ context.Context, id string) error {
	return s.store.Mutate(func(st *model.State) error {
		u := st.User(id)
		if u == nil {
			return ErrUserNotFound
		}
		wasOwner := u.Role == model.RoleOwner && u.Active
		kept := st.Users[:0]
		for _, other := range st.Users {
			if other.ID != id {
				kept = append(kept, other)
			}
		}
		st.Users = kept
		if wasOwner && activeOwners(st) == 0 {
			return ErrLastOwner
		}
		return nil
	})
}

func (s *authService) EnsureOwner(ctx context.Context, pin string) error {
	if len(s.store.Current().Users) > 0 {
		return nil
	}
	_, err := s.CreateUser(ctx, dto.CreateUserRequest{Name: "Proprietario", Role: model.RoleOwner, PIN: pin})
	if err == nil {
		log.Warn().Msg("auth: no users found, owner account created from OWNER_PIN")
	}
	return err
}

func (s *authService) generateToken(u model.User, duration time.Duration) (string, error) {
	now := s.opts.now()
	perms := make([]string, len(u.Permissions))
	for i, p := range u.Permissions {
		perms[i] = string(p)
	}
	claims := jwt.MapClaims{
		"user_id":     u.ID,
		"name":        u.Name,
		"role":        u.Role,
		"permissions": perms,
		"exp":         now.Add(duration).Unix(),
		"iat":         now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func pinTaken(st *model.State, pin, exceptID string) bool {
	for _, u := range st.Users {
		if u.ID != exceptID && pinMatches(u, pin) {
			return true
		}
	}
	return false
}

func activeOwners(st *model.State) int {
	n := 0
	for _, u := range st.Users {
		if u.Active && u.Role == model.RoleOwner {
			n++
		}
	}
	return n
}
