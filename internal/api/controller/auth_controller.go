package controller

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/leon37/KindKeeper/internal/api/response"
	"github.com/leon37/KindKeeper/internal/model"
	"github.com/leon37/KindKeeper/internal/service"
)

// AuthController 处理用户认证
type AuthController struct {
	authService *service.AuthService
}

// NewAuthController 构造函数
func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Register 用户注册
// @Summary 用户注册
// @Description 创建新用户，密码加密存储，并写入默认设置
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "注册参数"
// @Success 200 {object} response.Response{data=model.User}
// @Failure 400 {object} response.Response "参数错误"
// @Failure 409 {object} response.Response "邮箱已注册"
// @Router /auth/register [post]
func (ctrl *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := ctrl.authService.Register(c.Request.Context(), strings.TrimSpace(req.Name), normalizeEmail(req.Email), req.Password)
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		response.Error(c, http.StatusConflict, "该邮箱已注册")
	case err != nil:
		fail(c, "register", err)
	default:
		slog.Info("account created", "uid", user.ID)
		response.Success(c, user)
	}
}

// Login 用户登录
// @Summary 用户登录
// @Description 校验邮箱和密码，返回 JWT 和当前用户；之后的请求带 Authorization: Bearer <token>
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "登录参数"
// @Success 200 {object} response.Response{data=LoginResponse}
// @Failure 401 {object} response.Response "邮箱或密码错误"
// @Router /auth/login [post]
func (ctrl *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	token, user, err := ctrl.authService.Login(c.Request.Context(), normalizeEmail(req.Email), req.Password)
	if err != nil {
		slog.Warn("login rejected", "err", err)
		// 不区分邮箱不存在和密码错误
		response.Error(c, http.StatusUnauthorized, "邮箱或密码错误")
		return
	}

	slog.Info("session issued", "uid", user.ID)
	response.Success(c, LoginResponse{Token: token, User: *user})
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
