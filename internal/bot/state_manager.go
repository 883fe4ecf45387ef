package bot

import (
	"sync"

	"github.com/UnknownOlympus/hazira/internal/models"
)

// Step is the input the bot expects next from a user.
type Step string

const (
	StepName        Step = "name"
	StepIDNum       Step = "id_num"
	StepPhone       Step = "phone"
	StepDesignation Step = "designation"
	StepPhoto       Step = "photo"
	StepSearch      Step = "search"
)

// UserState saves a context for next message from user.
type UserState struct {
	Step  Step
	Draft models.WorkerDraft // worker being added, filled step by step
}

// StateManager manages the states of all users.
type StateManager struct {
	mu     sync.Mutex
	states map[int64]UserState
}

func NewStateManager() *StateManager {
	return &StateManager{states: make(map[int64]UserState)}
}

// Set sets the state for the user.
func (sm *StateManager) Set(userID int64, state UserState) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.states[userID] = state
}

// Get returns the user state without removing it.
func (sm *StateManager) Get(userID int64) (UserState, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	state, ok := sm.states[userID]
	return state, ok
}

// Clear drops the user state and reports whether there was one.
func (sm *StateManager) Clear(userID int64) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	_, ok := sm.states[userID]
	delete(sm.states, userID)
	return ok
}
