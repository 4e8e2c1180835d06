// Package dummydb provides in-memory repositories for tests and local
// development without a database.
package dummydb

import (
	"sync"

	"github.com/studyhubapp/studyhub/core/chat"
	"github.com/studyhubapp/studyhub/core/reminder"
	"github.com/studyhubapp/studyhub/core/subject"
	"github.com/studyhubapp/studyhub/core/task"
	"github.com/studyhubapp/studyhub/core/timer"
	"github.com/studyhubapp/studyhub/core/user"
)

type (
	DB struct {
		user     *userTable
		task     *taskTable
		timer    *timerTable
		subject  *subjectTable
		reminder *reminderTable
		chat     *chatTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	taskTable struct {
		sync.RWMutex
		table map[string]*task.Task
	}

	timerTable struct {
		sync.RWMutex
		table map[string][]timer.Run // keyed by owner
	}

	subjectTable struct {
		sync.RWMutex
		subjects map[string]*subject.Subject
		marks    map[string]*subject.Mark
	}

	reminderTable struct {
		sync.RWMutex
		table map[string]*reminder.Reminder
	}

	chatTable struct {
		sync.RWMutex
		table map[string]*chat.SavedResponse
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:     &userTable{table: make(map[string]*user.User)},
		task:     &taskTable{table: make(map[string]*task.Task)},
		timer:    &timerTable{table: make(map[string][]timer.Run)},
		subject:  &subjectTable{subjects: make(map[string]*subject.Subject), marks: make(map[string]*subject.Mark)},
		reminder: &reminderTable{table: make(map[string]*reminder.Reminder)},
		chat:     &chatTable{table: make(map[string]*chat.SavedResponse)},
	}
	return db, nil
}
