package domain

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

// 验证相关的错误定义
var (
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrPasswordTooShort = errors.New("password too short (min 8 chars)")
	ErrPasswordTooLong  = errors.New("password too long (max 72 chars)")
	ErrUsernameTooShort = errors.New("username too short (min 3 chars)")
	ErrUsernameTooLong  = errors.New("username too long (max 32 chars)")
	ErrInvalidUsername  = errors.New("invalid username format")
	ErrEmptyContent     = errors.New("message content is empty")
	ErrContentTooLong   = errors.New("message content too long")
)

// 验证常量
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72 // bcrypt 输入上限

	MinUsernameLength = 3
	MaxUsernameLength = 32

	// MaxContentLength 加固变体下的留言长度上限（按字符计）
	MaxContentLength = 500
)

// 用户名必须以字母开头，只允许字母、数字、点、下划线和连字符
var usernameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9._-]*$`)

// ValidateEmail 验证邮箱格式
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword 验证密码强度
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

// ValidateUsername 验证用户名格式
func ValidateUsername(username string) error {
	if len(username) < MinUsernameLength {
		return ErrUsernameTooShort
	}
	if len(username) > MaxUsernameLength {
		return ErrUsernameTooLong
	}
	if !usernameRegex.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

// ValidateContent 验证留言内容。maxLength <= 0 表示不限长度
// （宽松变体），否则按字符数截断校验，恰好等于上限时合法。
func ValidateContent(content string, maxLength int) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}
	if maxLength > 0 && utf8.RuneCountInString(content) > maxLength {
		return ErrContentTooLong
	}
	return nil
}
