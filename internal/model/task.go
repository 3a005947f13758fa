package model

type Task struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Source      string `json:"source"`
	Link        string `json:"link"`
	Cover       string `json:"cover"`
	Balance     int64  `json:"balance"`
}

type TaskTitle struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

type CreateTaskRequest struct {
	Titles       map[string]string `json:"titles"`
	Descriptions map[string]string `json:"descriptions"`
	Link         string            `json:"link"`
	Cover        string            `json:"cover"`
	Balance      int64             `json:"balance"`
}

type CreateTaskResponse struct {
	ID int64 `json:"id"`
}

type UpdateTaskRequest struct {
	ID           int64             `json:"id"`
	Titles       map[string]string `json:"titles"`
	Descriptions map[string]string `json:"descriptions"`
	Link         string            `json:"link"`
	Cover        string            `json:"cover"`
	Balance      int64             `json:"balance"`
}

type UpdateTaskResponse Task

type DeleteTaskRequest struct {
	ID int64 `json:"id"`
}

type DeleteTaskResponse struct{}

type GetTaskRequest struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"user_id"`
	Locale string `json:"locale"`
}

type GetTaskResponse struct {
	Task      Task `json:"task"`
	Completed bool `json:"completed"`
}

type GetIncompleteTasksRequest struct {
	UserID int64  `json:"user_id"`
	Locale string `json:"locale"`
}

type GetIncompleteTasksResponse struct {
	Tasks []TaskTitle `json:"tasks"`
}

type CheckTaskRequest struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user_id"`
}

type CheckTaskResponse struct {
	Reward  int64 `json:"reward"`
	Balance int64 `json:"balance"`
}
