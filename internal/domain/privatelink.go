package domain

import "time"

// PrivateLink 是私密链接变体的能力令牌：持有令牌即可读取对应
// 笔名的收件箱，无需登录会话。
//
// 每个笔名至多一个有效令牌：重新签发时整行替换，旧令牌随之失效。
// 令牌不设过期时间，替换是唯一的失效途径。
type PrivateLink struct {
	Pseudonym string    `json:"pseudonym" gorm:"primaryKey;type:varchar(100)"`
	Token     string    `json:"-" gorm:"type:varchar(64);not null"`
	CreatedAt time.Time `json:"createdAt"`
}
