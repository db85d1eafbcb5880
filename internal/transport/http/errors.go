package httptransport

import (
	"wazmoi/backend/internal/auth"
	"wazmoi/backend/internal/domain"
	"wazmoi/backend/internal/service"
)

// 错误消息映射表（业务错误 -> 中文消息）
var errorMessages = map[error]string{
	// 校验错误
	domain.ErrInvalidEmail:     "邮箱格式无效",
	domain.ErrPasswordTooShort: "密码太短（至少8个字符）",
	domain.ErrPasswordTooLong:  "密码太长（最多72个字符）",
	domain.ErrUsernameTooShort: "用户名太短（至少3个字符）",
	domain.ErrUsernameTooLong:  "用户名太长（最多32个字符）",
	domain.ErrInvalidUsername:  "用户名格式无效",
	domain.ErrEmptyContent:     "留言内容不能为空",
	domain.ErrContentTooLong:   "留言内容超出长度限制",

	// 认证错误
	auth.ErrUsernameExists:     "该用户名已被注册",
	auth.ErrEmailExists:        "该邮箱已被注册",
	auth.ErrUserNotFound:       "用户不存在",
	auth.ErrInvalidCredentials: "用户名或密码错误",
	auth.ErrLinkUnavailable:    "收信链接生成失败，请稍后重试",

	// 投递错误
	service.ErrReceiverNotFound: "收件人不存在",

	// 资料错误
	service.ErrProfileUserNotFound: "用户不存在",
}

// GetErrorMessage 获取错误的中文消息
func GetErrorMessage(err error) string {
	if msg, ok := errorMessages[err]; ok {
		return msg
	}
	return err.Error()
}

// 通用错误消息
const (
	// 请求相关
	MsgInvalidRequest   = "请求参数格式错误"
	MsgRequestBodyEmpty = "请求体不能为空"

	// 认证相关
	MsgAuthRequired       = "需要登录认证"
	MsgInvalidCredentials = "用户名或密码错误"
	MsgTokenInvalid       = "无效的访问令牌"
	MsgPermissionDenied   = "权限不足"

	// 留言相关
	MsgMessageSendFailed = "留言发送失败"
	MsgInboxListFailed   = "获取留言列表失败"

	// 私密链接相关
	MsgPrivateLinkFailed = "生成私密链接失败"
	MsgPrivateLinkDenied = "链接无效或已失效"

	// 资料相关
	MsgProfileNotFound     = "资料页不存在"
	MsgProfileGetFailed    = "获取资料失败"
	MsgProfileUpdateFailed = "更新资料失败"

	// 管理员相关
	MsgDataDumpFailed = "导出数据失败"

	// 服务器错误
	MsgInternalError = "服务器内部错误，请稍后重试"
)
