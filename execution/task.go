package execution

import "github.com/google/uuid"

// TaskContext is the per-execution view of a session handed to plan nodes.
type TaskContext struct {
	sessionID string
	taskID    string
	config    SessionConfig
	runtime   *RuntimeEnv
}

// NewTaskContext creates a task context with a fresh task ID.
// A nil runtime is replaced by a default one.
func NewTaskContext(sessionID string, cfg SessionConfig, rt *RuntimeEnv) *TaskContext {
	if rt == nil {
		rt = DefaultRuntimeEnv()
	}
	return &TaskContext{
		sessionID: sessionID,
		taskID:    uuid.NewString(),
		config:    cfg,
		runtime:   rt,
	}
}

// SessionID returns the ID of the session the task was derived from.
func (t *TaskContext) SessionID() string { return t.sessionID }

// TaskID returns the unique ID of this task.
func (t *TaskContext) TaskID() string { return t.taskID }

// Config returns the task's configuration.
func (t *TaskContext) Config() SessionConfig { return t.config }

// Runtime returns the runtime environment.
func (t *TaskContext) Runtime() *RuntimeEnv { return t.runtime }

// MemoryPool is a shortcut for Runtime().MemoryPool.
func (t *TaskContext) MemoryPool() MemoryPool { return t.runtime.MemoryPool }

// DiskManager is a shortcut for Runtime().DiskManager.
func (t *TaskContext) DiskManager() *DiskManager { return t.runtime.DiskManager }
