// Package link 生成公开收信链接（profile link）。
//
// 链接形如 "amina-kone-x3f9a"：显示名的小写 slug 加一段随机后缀。
// 生成器本身不做唯一性检查，调用方需把存储层的唯一约束冲突当作
// 可重试条件处理（重新生成再试）。
package link

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

// SuffixLength 随机后缀长度（base-36 字符数）
const SuffixLength = 5

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Generator 根据显示名生成 URL 安全的收信链接。
// 除随机源外是纯函数。
type Generator struct {
	mu     sync.Mutex
	random *rand.Rand
}

// NewGenerator 创建链接生成器。
func NewGenerator() *Generator {
	return &Generator{
		random: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Generate 由显示名产出一个候选链接。
// 规则：全部小写；连续空白折叠为单个连字符；[a-z0-9-] 之外的
// 字符全部剔除；末尾追加 "-" 和 SuffixLength 位随机 base-36 后缀。
func (g *Generator) Generate(displayName string) string {
	slug := Slugify(displayName)

	var sb strings.Builder
	if slug != "" {
		sb.WriteString(slug)
		sb.WriteByte('-')
	}

	g.mu.Lock()
	for i := 0; i < SuffixLength; i++ {
		sb.WriteByte(suffixAlphabet[g.random.Intn(len(suffixAlphabet))])
	}
	g.mu.Unlock()

	return sb.String()
}

// Slugify 把显示名规整为小写 slug：空白折叠为连字符，
// 剔除 [a-z0-9-] 之外的字符，并去掉首尾多余的连字符。
func Slugify(name string) string {
	lowered := strings.ToLower(name)

	var sb strings.Builder
	lastHyphen := false
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastHyphen = false
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			if !lastHyphen && sb.Len() > 0 {
				sb.WriteByte('-')
				lastHyphen = true
			}
		case r == '-':
			if !lastHyphen && sb.Len() > 0 {
				sb.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.Trim(sb.String(), "-")
}
