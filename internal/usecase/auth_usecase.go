package usecase

import (
	"context"
	"crypto/subtle"
	"fmt"

	"slot-booking/config"
	"slot-booking/internal/delivery/dto"
	"slot-booking/internal/domain/entity"
	"slot-booking/internal/service"
	"slot-booking/pkg/jwt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AuthUsecase signs the single operator account in and out. Issued tokens are
// tracked in Redis so logout revokes them before they expire.
type AuthUsecase interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, username, tokenID string) error
	IsTokenValid(ctx context.Context, username, tokenID string) (bool, error)
}

type authUsecase struct {
	log          *logrus.Logger
	admin        config.AdminConfig
	jwtService   *jwt.JWTService
	redisClient  *redis.Client
	auditService service.AuditService
}

func NewAuthUsecase(
	log *logrus.Logger,
	admin config.AdminConfig,
	jwtService *jwt.JWTService,
	redisClient *redis.Client,
	auditService service.AuditService,
) AuthUsecase {
	if admin.PasswordHash == "" {
		log.Warn("ADMIN_PASSWORD_HASH is empty, administrative login is disabled")
	}
	return &authUsecase{
		log:          log,
		admin:        admin,
		jwtService:   jwtService,
		redisClient:  redisClient,
		auditService: auditService,
	}
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	if u.admin.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	// Verify password first so timing does not reveal whether the username matched
	passwordErr := bcrypt.CompareHashAndPassword([]byte(u.admin.PasswordHash), []byte(req.Password))
	userMatch := subtle.ConstantTimeCompare([]byte(req.Username), []byte(u.admin.Username)) == 1
	if passwordErr != nil || !userMatch {
		return nil, ErrInvalidCredentials
	}

	accessToken, tokenID, err := u.jwtService.GenerateAccessToken(u.admin.Username)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	if err := u.redisClient.Set(ctx, accessTokenKey(u.admin.Username, tokenID), "valid", u.jwtService.GetAccessExpiry()).Err(); err != nil {
		u.log.Warnf("Failed to store access token in Redis: %+v", err)
		return nil, err
	}

	if u.auditService != nil {
		if err := u.auditService.LogAction(ctx, u.admin.Username, entity.AuditActionAdminLogin, entity.JSON{"token_id": tokenID}); err != nil {
			u.log.Warnf("Failed to audit login of %s: %+v", u.admin.Username, err)
		}
	}

	return &dto.TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(u.jwtService.GetAccessExpiry().Seconds()),
	}, nil
}

func (u *authUsecase) Logout(ctx context.Context, username, tokenID string) error {
	if err := u.redisClient.Del(ctx, accessTokenKey(username, tokenID)).Err(); err != nil {
		u.log.Warnf("Failed to delete access token: %+v", err)
		return err
	}

	if u.auditService != nil {
		if err := u.auditService.LogAction(ctx, username, entity.AuditActionAdminLogout, entity.JSON{"token_id": tokenID}); err != nil {
			u.log.Warnf("Failed to audit logout of %s: %+v", username, err)
		}
	}
	return nil
}

// IsTokenValid reports whether the token is still registered in Redis.
func (u *authUsecase) IsTokenValid(ctx context.Context, username, tokenID string) (bool, error) {
	exists, err := u.redisClient.Exists(ctx, accessTokenKey(username, tokenID)).Result()
	if err != nil {
		u.log.Warnf("Failed to check token validity: %+v", err)
		return false, err
	}

	return exists > 0, nil
}

func accessTokenKey(username, tokenID string) string {
	return fmt.Sprintf("access_token:%s:%s", username, tokenID)
}
