package entity

import "time"

type Task struct {
	TaskID       int64   `gorm:"primaryKey;autoIncrement:false" json:"task_id"`
	Titles       Locales `gorm:"not null" json:"titles"`
	Descriptions Locales `json:"descriptions"`
	Source       string  `gorm:"size:64" json:"source"`
	Link         string  `json:"link"`
	Cover        string  `json:"cover"`
	Balance      int64   `gorm:"not null" json:"balance"`

	Completions []UserTask `gorm:"foreignKey:TaskID;references:TaskID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *Task) Title(locale string) string {
	if s, ok := t.Titles.Get(locale); ok {
		return s
	}

	return NoTitle
}

func (t *Task) Description(locale string) string {
	s, _ := t.Descriptions.Get(locale)
	return s
}

func (t *Task) Localize(locale string) *LocalizedTask {
	return &LocalizedTask{
		TaskID:      t.TaskID,
		Title:       t.Title(locale),
		Description: t.Description(locale),
		Source:      t.Source,
		Link:        t.Link,
		Cover:       t.Cover,
		Balance:     t.Balance,
	}
}

// LocalizedTask is a task projected to a single locale.
type LocalizedTask struct {
	TaskID      int64
	Title       string
	Description string
	Source      string
	Link        string
	Cover       string
	Balance     int64
}

type TaskTitle struct {
	TaskID int64
	Title  string
}

// UserTask marks a task as completed by a user. Status is always true.
// The foreign keys to users and tasks are declared by the has-many fields of
// User and Task.
type UserTask struct {
	UserID    int64 `gorm:"primaryKey;autoIncrement:false"`
	TaskID    int64 `gorm:"primaryKey;autoIncrement:false"`
	Status    bool  `gorm:"not null;default:true"`
	CreatedAt time.Time
}
