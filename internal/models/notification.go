package models

// Notification is an in-app message shown to a single user.
type Notification struct {
	BaseModel
	UserID  string `gorm:"size:36;index;not null" json:"userId"`
	Title   string `gorm:"size:200;not null" json:"title"`
	Message string `gorm:"type:text" json:"message"`
	IsRead  bool   `gorm:"default:false" json:"isRead"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
