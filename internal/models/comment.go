package models

type Comment struct {
	BaseModel

	Content  string `gorm:"not null"`
	TaskID   uint   `gorm:"not null;index"`
	AuthorID uint   `gorm:"not null;index"`

	// Relationships
	Task   Task `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Author User `gorm:"foreignKey:AuthorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
