package model

import "time"

// previewLen 日志里只打印正文开头
const previewLen = 15

// Post 帖子；社区被删除时 group_id 置空，作者被删除时级联删除
type Post struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	AuthorID  uint64    `gorm:"not null;index:idx_author_time,priority:1" json:"author_id"`
	Author    *User     `gorm:"constraint:OnDelete:CASCADE" json:"author,omitempty"`
	GroupID   *uint64   `gorm:"index:idx_group_time,priority:1" json:"group_id"`
	Group     *Group    `gorm:"constraint:OnDelete:SET NULL" json:"group,omitempty"`
	Image     string    `gorm:"size:255" json:"image,omitempty"`
	CreatedAt time.Time `gorm:"not null;index;index:idx_author_time,priority:2;index:idx_group_time,priority:2" json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

func (p Post) Preview() string {
	r := []rune(p.Text)
	if len(r) > previewLen {
		r = r[:previewLen]
	}
	return string(r)
}
