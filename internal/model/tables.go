package model

// Tables 建表顺序：被引用的表在前
func Tables() []any {
	return []any{
		&User{},
		&Group{},
		&Post{},
		&Comment{},
		&Follow{},
		&SocialOutbox{},
	}
}
