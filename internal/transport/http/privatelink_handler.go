package httptransport

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wazmoi/backend/internal/monitoring"
	"wazmoi/backend/internal/service"
)

// PrivateLinkHandler 处理私密链接的签发与访问
type PrivateLinkHandler struct {
	privateLinks *service.PrivateLinkService
	inbox        *service.InboxService
	metrics      *monitoring.Metrics
	log          *zap.Logger
}

// NewPrivateLinkHandler 创建私密链接处理器
func NewPrivateLinkHandler(
	privateLinks *service.PrivateLinkService,
	inbox *service.InboxService,
	metrics *monitoring.Metrics,
	log *zap.Logger,
) *PrivateLinkHandler {
	return &PrivateLinkHandler{
		privateLinks: privateLinks,
		inbox:        inbox,
		metrics:      metrics,
		log:          log,
	}
}

type privateLinkResponse struct {
	PrivateLink string `json:"privateLink"`
}

// Create 为笔名签发一条带令牌的私密链接。
// 重复签发会替换旧令牌，旧链接随即失效。
func (h *PrivateLinkHandler) Create(c *gin.Context) {
	pseudonym := c.Param("pseudonym")

	url, err := h.privateLinks.Issue(pseudonym)
	if err != nil {
		h.log.Error("failed to issue private link",
			zap.String("pseudonym", pseudonym),
			zap.Error(err),
		)
		InternalError(c, MsgPrivateLinkFailed)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordPrivateLinkIssued()
	}

	Success(c, privateLinkResponse{PrivateLink: url})
}

// Access 凭令牌访问笔名的收件箱。
// 令牌缺失、不匹配或笔名从未签发过链接，一律 403，不泄露笔名是否存在。
func (h *PrivateLinkHandler) Access(c *gin.Context) {
	pseudonym := c.Param("pseudonym")
	token := c.Query("token")

	if err := h.privateLinks.Verify(pseudonym, token); err != nil {
		if h.metrics != nil {
			h.metrics.RecordPrivateLinkDenial()
		}
		Forbidden(c, MsgPrivateLinkDenied)
		return
	}

	messages, err := h.inbox.List(pseudonym)
	if err != nil {
		h.log.Error("failed to list inbox via private link",
			zap.String("pseudonym", pseudonym),
			zap.Error(err),
		)
		InternalError(c, MsgInboxListFailed)
		return
	}

	Success(c, inboxResponse{Messages: messages})
}
