package models

type Task struct {
	BaseModel

	Title        string `gorm:"not null"`
	Description  string
	Status       string `gorm:"not null;default:todo"` // "todo", "in-progress", "done"
	ProjectID    uint   `gorm:"not null;index"`
	AssignedToID *uint

	// Relationships
	Project    Project   `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	AssignedTo *User     `gorm:"foreignKey:AssignedToID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Comments   []Comment `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
