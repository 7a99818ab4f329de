package types

import "time"

// Narrow per-endpoint view types. The password hash never appears in
// any of these.

type UserResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type ProjectResponse struct {
	ID          uint           `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Owner       UserResponse   `json:"owner"`
	Members     []UserResponse `json:"members"`
	CreatedAt   time.Time      `json:"created_at"`
}

type TaskResponse struct {
	ID           uint          `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Status       string        `json:"status"`
	ProjectID    uint          `json:"project_id"`
	ProjectTitle string        `json:"project_title"`
	AssignedTo   *UserResponse `json:"assigned_to"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

type CommentResponse struct {
	ID        uint         `json:"id"`
	Content   string       `json:"content"`
	TaskID    uint         `json:"task_id"`
	Author    UserResponse `json:"author"`
	CreatedAt time.Time    `json:"created_at"`
}
