package httptransport

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wazmoi/backend/internal/auth"
	"wazmoi/backend/internal/config"
	"wazmoi/backend/internal/domain"
	"wazmoi/backend/internal/service"
)

// MessageHandler 处理留言投递与收件箱读取
type MessageHandler struct {
	delivery     *service.DeliveryService
	inbox        *service.InboxService
	privateLinks *service.PrivateLinkService
	authService  *auth.Service
	cfg          config.InboxConfig
	log          *zap.Logger
}

// NewMessageHandler 创建留言处理器
func NewMessageHandler(
	delivery *service.DeliveryService,
	inbox *service.InboxService,
	privateLinks *service.PrivateLinkService,
	authService *auth.Service,
	cfg config.InboxConfig,
	log *zap.Logger,
) *MessageHandler {
	return &MessageHandler{
		delivery:     delivery,
		inbox:        inbox,
		privateLinks: privateLinks,
		authService:  authService,
		cfg:          cfg,
		log:          log,
	}
}

type sendRequest struct {
	// Receiver 收件人的收信链接，宽松模式下也接受裸笔名
	Receiver string `json:"receiver" binding:"required"`
	Content  string `json:"content" binding:"required"`
	// IsAnonymous 缺省为匿名投递
	IsAnonymous *bool `json:"isAnonymous"`
	// Sender 具名投递时自报的用户名，登录会话优先于该字段
	Sender string `json:"sender"`
}

type sendResponse struct {
	MessageID string `json:"messageId"`
}

// Send 投递一条留言。
// 匿名与否由请求决定，缺省匿名；已登录用户的具名投递以会话身份为准。
func (h *MessageHandler) Send(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	isAnonymous := true
	if req.IsAnonymous != nil {
		isAnonymous = *req.IsAnonymous
	}

	input := service.SendInput{
		ReceiverLink:   req.Receiver,
		Content:        req.Content,
		IsAnonymous:    isAnonymous,
		SenderUsername: req.Sender,
	}
	// 会话中的发件人身份优先于自报用户名
	if userID := c.GetString("userID"); userID != "" {
		input.SenderUserID = userID
	}

	message, err := h.delivery.Send(input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReceiverNotFound):
			NotFound(c, GetErrorMessage(err))
		case errors.Is(err, domain.ErrEmptyContent) || errors.Is(err, domain.ErrContentTooLong):
			BadRequest(c, GetErrorMessage(err))
		default:
			h.log.Error("failed to deliver message", zap.Error(err))
			InternalError(c, MsgMessageSendFailed)
		}
		return
	}

	Success(c, sendResponse{MessageID: message.ID})
}

type inboxResponse struct {
	Messages []service.MessageView `json:"messages"`
}

// Inbox 读取收件箱。
// 开启鉴权时只有收件人本人的会话或有效的私密链接令牌可以读取。
func (h *MessageHandler) Inbox(c *gin.Context) {
	profileLink := c.Param("profileLink")

	if h.cfg.RequireAuth && !h.canRead(c, profileLink) {
		Forbidden(c, MsgPermissionDenied)
		return
	}

	messages, err := h.inbox.List(profileLink)
	if err != nil {
		h.log.Error("failed to list inbox",
			zap.String("profile_link", profileLink),
			zap.Error(err),
		)
		InternalError(c, MsgInboxListFailed)
		return
	}

	Success(c, inboxResponse{Messages: messages})
}

// canRead 判断当前请求是否有权读取指定收件箱
func (h *MessageHandler) canRead(c *gin.Context, profileLink string) bool {
	// 本人会话
	if userID := c.GetString("userID"); userID != "" {
		if user, err := h.authService.GetUserByID(userID); err == nil && user.ProfileLink == profileLink {
			return true
		}
	}

	// 私密链接令牌
	if token := c.Query("token"); token != "" {
		if err := h.privateLinks.Verify(profileLink, token); err == nil {
			return true
		}
	}

	return false
}
