package models

import "time"

type AdminUser struct {
	ID           uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"column:email;size:100;unique;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;size:255;not null" json:"-"`
	ShopDomain   string    `gorm:"column:shop_domain;size:255;not null" json:"shopDomain"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (AdminUser) TableName() string {
	return "admin_users"
}
