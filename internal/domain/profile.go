package domain

import "time"

// Profile 是用户的扩展资料，与 User 一对一，注册后立即创建空记录。
// 读路径必须容忍 Profile 缺失（注册与建档之间没有事务保护）。
type Profile struct {
	UserID    string    `json:"userId" gorm:"primaryKey;type:varchar(36)"`
	Bio       string    `json:"bio,omitempty" gorm:"type:varchar(500)"`
	Location  string    `json:"location,omitempty" gorm:"type:varchar(100)"`
	Website   string    `json:"website,omitempty" gorm:"type:varchar(255)"`
	UpdatedAt time.Time `json:"updatedAt"`
}
