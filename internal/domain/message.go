package domain

import "time"

// Message 表示投递到某个收件人的一条留言。创建后不可变。
//
// 收件人寻址是多态的：receiver_id 指向已注册用户，receiver_link
// 保存裸笔名（无账号变体）。每行只填充其中一种形式。
type Message struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ReceiverID   *string   `json:"receiverId,omitempty" gorm:"type:varchar(36);index"`
	ReceiverLink string    `json:"receiverLink,omitempty" gorm:"type:varchar(120);index"`
	Content      string    `json:"content" gorm:"type:varchar(500);not null"`
	IsAnonymous  bool      `json:"isAnonymous" gorm:"default:true"`
	SenderID     *string   `json:"-" gorm:"type:varchar(36)"` // 匿名消息即使内部存有也绝不暴露
	CreatedAt    time.Time `json:"createdAt"`
}

// ReceiverRef 收件人引用：按用户 ID 或按链接/笔名寻址。
// 两个字段都匹配时按并集查询（同一用户的两种历史寻址形式）。
type ReceiverRef struct {
	UserID string
	Link   string
}
