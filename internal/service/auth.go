package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/dp_pos/internal/models"
	"github.com/Skotchmaster/dp_pos/internal/notify"
	"github.com/Skotchmaster/dp_pos/internal/repo"
	"github.com/Skotchmaster/dp_pos/internal/transport"
	pkghash "github.com/Skotchmaster/dp_pos/pkg/hash"
	"github.com/Skotchmaster/dp_pos/pkg/logging"
	"github.com/Skotchmaster/dp_pos/pkg/session"
	"github.com/Skotchmaster/dp_pos/pkg/tokens"
	"github.com/Skotchmaster/dp_pos/pkg/validation"
)

const minPasswordLen = 6

type AuthService struct {
	Users           UserStore
	Notifier        Notifier
	JWTSecret       []byte
	AccessTTL       time.Duration
	AdminAlertPhone string
}

type LoginResult struct {
	AccessToken string
	AccessExp   time.Time
	User        *models.User
	Alert       *notify.Report
}

// Register creates an operator account. Only an admin may create another
// admin; allowAdmin carries that decision from the caller.
func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest, allowAdmin bool) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := validation.Var(email, "required,email"); err != nil {
		return nil, fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if len(req.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}
	role := req.Role
	if role == "" {
		role = session.RoleUser
	}
	switch role {
	case session.RoleUser:
	case session.RoleAdmin:
		if !allowAdmin {
			return nil, fmt.Errorf("%w: only an admin can create admins", ErrForbidden)
		}
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	if !models.ValidBranch(req.Branch) {
		return nil, fmt.Errorf("%w: unknown branch %q", ErrValidation, req.Branch)
	}

	pwHash, err := pkghash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}
	user := &models.User{
		Email:        email,
		PasswordHash: pwHash,
		Role:         role,
		Branch:       req.Branch,
		Phone:        strings.TrimSpace(req.Phone),
	}
	if err := s.Users.CreateUserIfNotExists(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			return nil, fmt.Errorf("%w: user already exist", ErrConflict)
		}
		return nil, err
	}

	l.Info("register_success", "user_id", user.ID, "role", role, "branch", user.Branch)
	return user, nil
}

// EnsureAdmin creates the bootstrap admin account unless it exists already.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password, branch string) error {
	_, err := s.Register(ctx, transport.RegisterRequest{
		Email:    email,
		Password: password,
		Role:     session.RoleAdmin,
		Branch:   branch,
	}, true)
	if errors.Is(err, ErrConflict) {
		return nil
	}
	return err
}

// Login checks the password and opens a server-side session whose id is the
// token's jti. Admin logins trigger a best-effort SMS alert.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	l := logging.FromContext(ctx).With("svc", "auth.login", "email", email)

	user, err := s.Users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("login_failed", "reason", "unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !pkghash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "reason", "wrong password")
		return nil, ErrInvalidCredentials
	}

	exp := time.Now().Add(s.AccessTTL)
	jti := uuid.NewString()
	if err := s.Users.CreateSession(ctx, &models.Session{
		ID:        jti,
		UserID:    user.ID,
		Role:      user.Role,
		Branch:    user.Branch,
		ExpiresAt: exp.UTC(),
	}); err != nil {
		return nil, err
	}

	token, err := tokens.NewAccessToken(s.JWTSecret, user.ID.String(), jti, user.Role, user.Branch, exp)
	if err != nil {
		return nil, err
	}

	res := &LoginResult{AccessToken: token, AccessExp: exp, User: user}
	if user.Role == session.RoleAdmin {
		res.Alert = s.loginAlert(ctx, user)
	}

	l.Info("login_success", "user_id", user.ID, "role", user.Role)
	return res, nil
}

func (s *AuthService) loginAlert(ctx context.Context, user *models.User) *notify.Report {
	if s.Notifier == nil {
		return nil
	}
	var phones []string
	for _, p := range []string{s.AdminAlertPhone, user.Phone} {
		if p != "" && (len(phones) == 0 || phones[0] != p) {
			phones = append(phones, p)
		}
	}
	if len(phones) == 0 {
		return nil
	}
	rep, _ := s.Notifier.Send(ctx, notify.KindLoginAlert, phones, notify.Data{Email: user.Email})
	return &rep
}

func (s *AuthService) Logout(ctx context.Context, sess session.Session) error {
	if sess.ID == "" {
		return fmt.Errorf("%w: no session", ErrValidation)
	}
	return s.Users.RevokeSession(ctx, sess.ID)
}
