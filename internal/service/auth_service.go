package service

import (
	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/config"
	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/util"

	"golang.org/x/crypto/bcrypt"
)

// 服务令牌的主体标识,接口无多用户概念
const tokenSubject = "analyst"

type AuthService struct {
	Cfg *config.Config
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{Cfg: cfg}
}

// TokenResult 令牌签发结果
type TokenResult struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// IssueToken 用访问密钥换取服务令牌,密钥与配置中的哈希比对
func (s *AuthService) IssueToken(accessKey string) (*TokenResult, error) {
	if err := bcrypt.CompareHashAndPassword([]byte(s.Cfg.Auth.AccessKeyHash), []byte(accessKey)); err != nil {
		return nil, util.ErrInvalidAccessKey
	}

	token, err := util.GenerateJWT(tokenSubject, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}
	return &TokenResult{
		Token:     token,
		ExpiresIn: int64(s.Cfg.JWT.ExpireTime.Seconds()),
	}, nil
}
