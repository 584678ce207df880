package core

import "sync"

// Loop runs posted tasks one at a time, in posting order. At most one
// goroutine drains the loop; it exits once the mailbox is empty and a new one
// is started by the next Post. Everything a task touches is therefore owned
// by a single logical thread of control.
type Loop struct {
	mu      sync.Mutex
	tasks   []func()
	running bool
}

func NewLoop() *Loop {
	return &Loop{}
}

// Post enqueues task without blocking.
func (l *Loop) Post(task func()) {
	l.mu.Lock()
	l.tasks = append(l.tasks, task)
	if l.running {
		l.mu.Unlock()
		return
	}
	l.running = true
	l.mu.Unlock()

	go l.drain()
}

func (l *Loop) drain() {
	for {
		l.mu.Lock()
		if len(l.tasks) == 0 {
			l.running = false
			l.mu.Unlock()
			return
		}
		task := l.tasks[0]
		l.tasks[0] = nil
		l.tasks = l.tasks[1:]
		l.mu.Unlock()

		task()
	}
}

// Pending returns the number of tasks waiting to run.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks)
}
