package httptransport

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wazmoi/backend/internal/auth"
	jwtpkg "wazmoi/backend/internal/auth/jwt"
	"wazmoi/backend/internal/domain"
	"wazmoi/backend/internal/monitoring"
)

// AuthHandler 处理认证相关的 HTTP 请求
type AuthHandler struct {
	authService *auth.Service
	jwtManager  *jwtpkg.Manager
	metrics     *monitoring.Metrics
	log         *zap.Logger
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(authService *auth.Service, jwtManager *jwtpkg.Manager, metrics *monitoring.Metrics, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtManager:  jwtManager,
		metrics:     metrics,
		log:         log,
	}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"fullName"`
}

type loginRequest struct {
	// Identifier 可以是用户名或邮箱
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type authResponse struct {
	User         userResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int64        `json:"expiresIn"`
}

type userResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email,omitempty"`
	ProfileLink string `json:"profileLink"`
	FullName    string `json:"fullName,omitempty"`
	AvatarColor string `json:"avatarColor"`
	IsAdmin     bool   `json:"isAdmin"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		ProfileLink: u.ProfileLink,
		FullName:    u.FullName,
		AvatarColor: u.AvatarColor,
		IsAdmin:     u.IsAdmin,
	}
}

// Register 处理用户注册请求。
// 注册成功即签发令牌对，收信链接随响应返回。
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	user, err := h.authService.Register(auth.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})

	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUsernameExists) || errors.Is(err, auth.ErrEmailExists):
			Conflict(c, GetErrorMessage(err))
		case errors.Is(err, auth.ErrLinkUnavailable):
			h.log.Error("profile link generation exhausted retries", zap.String("username", req.Username))
			InternalError(c, GetErrorMessage(err))
		case errors.Is(err, domain.ErrInvalidEmail) ||
			errors.Is(err, domain.ErrInvalidUsername) ||
			errors.Is(err, domain.ErrUsernameTooShort) ||
			errors.Is(err, domain.ErrUsernameTooLong) ||
			errors.Is(err, domain.ErrPasswordTooShort) ||
			errors.Is(err, domain.ErrPasswordTooLong):
			BadRequest(c, GetErrorMessage(err))
		default:
			h.log.Error("failed to register user", zap.Error(err))
			InternalError(c, MsgInternalError)
		}
		return
	}

	tokens, err := h.jwtManager.GenerateTokenPair(user.ID, user.Username, user.IsAdmin)
	if err != nil {
		h.log.Error("failed to generate tokens", zap.Error(err))
		InternalError(c, MsgInternalError)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordUserRegistered()
	}

	h.log.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("profile_link", user.ProfileLink),
	)

	Created(c, authResponse{
		User:         toUserResponse(user),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
	})
}

// Login 处理用户登录请求。用户名和邮箱都可以作为登录标识。
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	user, err := h.authService.Login(auth.LoginInput{
		Identifier: req.Identifier,
		Password:   req.Password,
	})
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordLoginAttempt(false)
		}
		// 统一返回 401，不区分用户不存在和密码错误
		Unauthorized(c, MsgInvalidCredentials)
		return
	}

	tokens, err := h.jwtManager.GenerateTokenPair(user.ID, user.Username, user.IsAdmin)
	if err != nil {
		h.log.Error("failed to generate tokens", zap.Error(err))
		InternalError(c, MsgInternalError)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordLoginAttempt(true)
	}

	h.log.Info("user logged in",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username),
	)

	Success(c, authResponse{
		User:         toUserResponse(user),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
	})
}

// Logout 处理登出请求。
// 令牌是无状态的，这里只清掉 cookie 并确认登出。
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie("access_token", "", -1, "/", "", false, true)
	SuccessWithMsg(c, "已退出登录", nil)
}

// Me 返回当前登录用户信息
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		Unauthorized(c, MsgAuthRequired)
		return
	}

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		NotFound(c, GetErrorMessage(auth.ErrUserNotFound))
		return
	}

	Success(c, toUserResponse(user))
}
