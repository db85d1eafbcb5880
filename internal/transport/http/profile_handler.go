package httptransport

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wazmoi/backend/internal/service"
)

// ProfileHandler 处理资料页读取与更新
type ProfileHandler struct {
	profiles *service.ProfileService
	log      *zap.Logger
}

// NewProfileHandler 创建资料处理器
func NewProfileHandler(profiles *service.ProfileService, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		log:      log,
	}
}

// Get 按收信链接返回公开资料页
func (h *ProfileHandler) Get(c *gin.Context) {
	profileLink := c.Param("profileLink")

	view, err := h.profiles.GetByLink(profileLink)
	if err != nil {
		if errors.Is(err, service.ErrProfileUserNotFound) {
			NotFound(c, MsgProfileNotFound)
			return
		}
		h.log.Error("failed to get profile",
			zap.String("profile_link", profileLink),
			zap.Error(err),
		)
		InternalError(c, MsgProfileGetFailed)
		return
	}

	Success(c, view)
}

type updateProfileRequest struct {
	FullName string `json:"fullName"`
	Bio      string `json:"bio"`
	Location string `json:"location"`
	Website  string `json:"website"`
}

// Update 更新资料，只允许本人操作。收信链接不可修改。
func (h *ProfileHandler) Update(c *gin.Context) {
	username := c.Param("username")

	// 只能改自己的资料
	if c.GetString("username") != username {
		Forbidden(c, MsgPermissionDenied)
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	err := h.profiles.Update(username, service.UpdateInput{
		FullName: req.FullName,
		Bio:      req.Bio,
		Location: req.Location,
		Website:  req.Website,
	})
	if err != nil {
		if errors.Is(err, service.ErrProfileUserNotFound) {
			NotFound(c, GetErrorMessage(err))
			return
		}
		h.log.Error("failed to update profile",
			zap.String("username", username),
			zap.Error(err),
		)
		InternalError(c, MsgProfileUpdateFailed)
		return
	}

	SuccessWithMsg(c, "资料已更新", nil)
}
