package controller

import (
	"errors"

	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/service"
	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// TokenRequest 令牌申请请求
// swagger:model TokenRequest
type TokenRequest struct {
	AccessKey string `json:"access_key" binding:"required"`
}

// IssueToken godoc
// @Summary 申请服务令牌
// @Description 用访问密钥换取带有效期的 JWT
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body TokenRequest true "访问密钥"
// @Success 200 {object} util.Response{data=service.TokenResult} "签发成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 401 {object} util.Response "访问密钥错误"
// @Router /api/auth/token [post]
func (c *AuthController) IssueToken(ctx *gin.Context) {
	var req TokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.AuthService.IssueToken(req.AccessKey)
	if err != nil {
		if errors.Is(err, util.ErrInvalidAccessKey) {
			util.Unauthorized(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, result)
}
