package httptransport

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wazmoi/backend/internal/service"
)

// AdminHandler 处理管理端点
type AdminHandler struct {
	admin *service.AdminService
	log   *zap.Logger
}

// NewAdminHandler 创建管理处理器
func NewAdminHandler(admin *service.AdminService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		admin: admin,
		log:   log,
	}
}

// Dump 导出全量数据（用户不含密码哈希、资料、留言）
func (h *AdminHandler) Dump(c *gin.Context) {
	dump, err := h.admin.Dump()
	if err != nil {
		h.log.Error("failed to dump data", zap.Error(err))
		InternalError(c, MsgDataDumpFailed)
		return
	}

	Success(c, dump)
}
