// internal/services/auth_service.go
package services

import (
	"gorm.io/gorm"

	"github.com/promptbazaar/promptbazaar-backend/internal/apperrors"
	"github.com/promptbazaar/promptbazaar-backend/internal/config"
	"github.com/promptbazaar/promptbazaar-backend/internal/models"
	"github.com/promptbazaar/promptbazaar-backend/internal/utils"
)

// AuthService issues wallet-session tokens. The wallet signature itself is
// verified by the wallet-connection flow upstream of this core; by the time
// a connect request arrives the address is trusted.
type AuthService struct {
	db     *gorm.DB
	config *config.Config
}

func NewAuthService(db *gorm.DB, config *config.Config) *AuthService {
	return &AuthService{
		db:     db,
		config: config,
	}
}

type ConnectRequest struct {
	Address string `json:"address" validate:"required,eth_addr"`
}

type ConnectResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Connect lazily creates the user and returns a session token for the
// normalized address.
func (s *AuthService) Connect(req *ConnectRequest) (*ConnectResponse, error) {
	address := models.NormalizeAddress(req.Address)

	user, err := getOrCreateUser(s.db, address)
	if err != nil {
		return nil, apperrors.Storage(err, "failed to resolve user")
	}

	token, err := utils.GenerateSessionToken(address, s.config.JWT.SessionTTL)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to issue session token")
	}

	return &ConnectResponse{
		Token: token,
		User:  user,
	}, nil
}
