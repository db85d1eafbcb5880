package domain

import "time"

// AvatarPalette 注册时随机分配的头像颜色集合（固定小调色板）
var AvatarPalette = []string{
	"#e74c3c", // 红
	"#e67e22", // 橙
	"#f1c40f", // 黄
	"#2ecc71", // 绿
	"#1abc9c", // 青
	"#3498db", // 蓝
	"#9b59b6", // 紫
	"#34495e", // 深灰蓝
}

// User 表示注册用户的业务实体
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username     string    `json:"username" gorm:"uniqueIndex;type:varchar(100);not null"`
	Email        string    `json:"email,omitempty" gorm:"uniqueIndex;type:varchar(255)"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255)"` // 不返回给前端
	ProfileLink  string    `json:"profileLink" gorm:"uniqueIndex;type:varchar(120);not null"` // 公开收信链接，签发后不可变
	FullName     string    `json:"fullName,omitempty" gorm:"type:varchar(100)"`
	AvatarColor  string    `json:"avatarColor" gorm:"type:varchar(7)"`
	IsAdmin      bool      `json:"isAdmin" gorm:"default:false"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicUser 是用户的公开投影，供他人查看资料页时使用
type PublicUser struct {
	Username    string `json:"username"`
	ProfileLink string `json:"profileLink"`
	FullName    string `json:"fullName,omitempty"`
	AvatarColor string `json:"avatarColor"`
}

// Public 返回可以安全暴露给任意访问者的字段
func (u *User) Public() PublicUser {
	return PublicUser{
		Username:    u.Username,
		ProfileLink: u.ProfileLink,
		FullName:    u.FullName,
		AvatarColor: u.AvatarColor,
	}
}
