package models

type User struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Email          string `gorm:"uniqueIndex;not null" json:"email"`
	HashedPassword string `gorm:"not null" json:"-"`
	UserName       string `json:"user_name"`
	IsActive       bool   `gorm:"default:true" json:"is_active"`
	IsAdmin        bool   `gorm:"default:false" json:"is_admin"`

	Invoices []Invoice `gorm:"foreignKey:TechID" json:"-"`
}
