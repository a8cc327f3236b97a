package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"catalog-admin/internal/core/auth"
	"catalog-admin/internal/core/cache"
	"catalog-admin/internal/domain"
	"catalog-admin/pkg/utils"
)

const adminCacheTTL = time.Minute

// TokenRevoker 登出后拉黑 token；未配置 redis 时为 nil，登出只清 cookie
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	Revoked(ctx context.Context, jti string) (bool, error)
}

type AuthService struct {
	admins  domain.AdminRepository
	jwt     *auth.JWTer
	revoker TokenRevoker
	cache   *cache.Cache
	log     *zap.Logger
}

// NewAuthService c 可以为 nil
func NewAuthService(admins domain.AdminRepository, j *auth.JWTer, c *cache.Cache, l *zap.Logger) *AuthService {
	s := &AuthService{admins: admins, jwt: j, log: l}
	if c != nil {
		s.cache = c
		s.revoker = c
	}
	return s
}

func (s *AuthService) CreateAdmin(ctx context.Context, email, name, password string) (*domain.Admin, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if email == "" || password == "" {
		return nil, errors.New("email and password are required")
	}
	if name == "" {
		if at := strings.IndexByte(email, '@'); at > 0 {
			name = email[:at]
		} else {
			name = "admin"
		}
	}
	existing, err := s.admins.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find admin: %w", err)
	}
	if existing != nil {
		return nil, ErrAdminExists
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	a := &domain.Admin{
		ID:           utils.NewID(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}
	if err := s.admins.Create(ctx, a); err != nil {
		if isDupKey(err) {
			return nil, ErrAdminExists
		}
		return nil, fmt.Errorf("create admin: %w", err)
	}
	return a, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.Admin, error) {
	a, err := s.admins.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", nil, fmt.Errorf("find admin: %w", err)
	}
	if a == nil || !utils.CheckPassword(password, a.PasswordHash) {
		return "", nil, ErrBadCredentials
	}
	tok, err := s.jwt.Issue(a.ID, a.Role)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	s.log.Info("admin login", zap.String("admin_id", a.ID))
	return tok, a, nil
}

// Logout 无效 token 直接忽略
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if s.revoker == nil || token == "" {
		return nil
	}
	c, err := s.jwt.Parse(token)
	if err != nil {
		return nil
	}
	ttl := time.Until(c.ExpiresAt.Time)
	if err := s.revoker.Revoke(ctx, c.ID, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// Resolve token → 管理员；任何失败都返回 error，调用方自行决定是否吞掉
func (s *AuthService) Resolve(ctx context.Context, token string) (*domain.Admin, error) {
	if token == "" {
		return nil, auth.ErrInvalidToken
	}
	c, err := s.jwt.Parse(token)
	if err != nil {
		return nil, err
	}
	if c.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("%w: role %q", auth.ErrInvalidToken, c.Role)
	}
	if s.revoker != nil {
		revoked, err := s.revoker.Revoked(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("check revoked: %w", err)
		}
		if revoked {
			return nil, fmt.Errorf("%w: revoked", auth.ErrInvalidToken)
		}
	}
	a, err := s.findAdmin(ctx, c.UID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrNotFound
	}
	return a, nil
}

func (s *AuthService) findAdmin(ctx context.Context, id string) (*domain.Admin, error) {
	if s.cache == nil {
		return s.admins.FindByID(ctx, id)
	}
	return cache.GetOrLoadJSON(s.cache, ctx, "admin:"+id, adminCacheTTL, func(ctx context.Context) (*domain.Admin, error) {
		return s.admins.FindByID(ctx, id)
	})
}
