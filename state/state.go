package state

import (
	"errors"
	"sync"

	"github.com/alphabill-org/alphabill-fees/types"
)

var (
	ErrUnitNotFound      = errors.New("unit not found")
	ErrUnitAlreadyExists = errors.New("unit already exists")
)

type (
	// State is a data structure that keeps track of units.
	//
	// State can be changed by calling Apply function with one or more Action function. Savepoint method can be used
	// to add a special marker to the state that allows all actions that are executed after savepoint was established
	// to be rolled back. In the other words, savepoint lets you roll back part of the state changes instead of the
	// entire state. Calling a Commit method commits and releases all savepoints.
	State struct {
		mutex         sync.RWMutex
		degree        int
		committedTree *tree

		// savepoint is a special marker that allows all actions that are executed after tree was established to
		// be rolled back, restoring the state to what it was at the time of the tree.
		savepoints []*tree
	}
)

func NewEmptyState(opts ...Option) *State {
	options := loadOptions(opts...)
	t := newTree(options.degree)
	return &State{
		degree:        options.degree,
		committedTree: t,
		savepoints:    []*tree{t.Clone()},
	}
}

func (s *State) Clone() *State {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return &State{
		degree:        s.degree,
		committedTree: s.committedTree.Clone(),
		savepoints:    []*tree{s.latestSavepoint().Clone()},
	}
}

// GetUnit returns a copy of the unit. If committed is true the unit is looked up from the
// last committed state, otherwise from the latest savepoint.
func (s *State) GetUnit(id types.UnitID, committed bool) (*Unit, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	t := s.latestSavepoint()
	if committed {
		t = s.committedTree
	}
	u, err := t.Get(id)
	if err != nil {
		return nil, err
	}
	return u.Clone(), nil
}

// Apply applies given actions to the state. All Action functions are executed together as a single atomic operation. If
// any of the Action functions returns an error all previous state changes made by any of the action function will be
// reverted.
func (s *State) Apply(actions ...Action) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	id := s.createSavepoint()
	for _, action := range actions {
		if err := action(s.latestSavepoint()); err != nil {
			s.rollbackToSavepoint(id)
			return err
		}
	}
	s.releaseToSavepoint(id)
	return nil
}

// Commit makes the changes in the latest savepoint permanent.
func (s *State) Commit() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sp := s.latestSavepoint()
	sp.dirty = false
	s.committedTree = sp.Clone()
	s.savepoints = []*tree{sp}
}

// Revert rolls back all changes made to the state.
func (s *State) Revert() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.savepoints = []*tree{s.committedTree.Clone()}
}

// Savepoint creates a new savepoint and returns an id of the savepoint. Use RollbackToSavepoint to roll back all
// changes made after calling Savepoint method. Use ReleaseToSavepoint to save all changes made to the state.
func (s *State) Savepoint() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.createSavepoint()
}

// RollbackToSavepoint destroys savepoints without keeping the changes in the state tree. All actions that were executed
// after the savepoint was established are rolled back, restoring the state to what it was at the time of the savepoint.
func (s *State) RollbackToSavepoint(id int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.rollbackToSavepoint(id)
}

// ReleaseToSavepoint destroys all savepoints, keeping all state changes after it was created. If a savepoint with given
// id does not exist then this method does nothing.
func (s *State) ReleaseToSavepoint(id int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.releaseToSavepoint(id)
}

// IsCommitted returns true if there are no uncommitted changes in the state.
func (s *State) IsCommitted() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.savepoints) == 1 && !s.savepoints[0].dirty
}

// Traverse calls visit for every unit in ascending unit id order until visit returns false.
func (s *State) Traverse(committed bool, visit func(u *Unit) bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	t := s.latestSavepoint()
	if committed {
		t = s.committedTree
	}
	t.units.Ascend(func(u *Unit) bool {
		return visit(u.Clone())
	})
}

// Size returns the number of units in the latest savepoint.
func (s *State) Size() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.latestSavepoint().Len()
}

func (s *State) createSavepoint() int {
	s.savepoints = append(s.savepoints, s.latestSavepoint().Clone())
	return len(s.savepoints) - 1
}

func (s *State) rollbackToSavepoint(id int) {
	// savepoint 0 is the working copy of the committed tree and can't be removed
	if id < 1 || id >= len(s.savepoints) {
		return
	}
	s.savepoints = s.savepoints[0:id]
}

func (s *State) releaseToSavepoint(id int) {
	if id < 1 || id >= len(s.savepoints) {
		// nothing to release
		return
	}
	s.savepoints[id-1] = s.latestSavepoint()
	s.savepoints = s.savepoints[0:id]
}

// latestSavepoint returns the latest savepoint.
func (s *State) latestSavepoint() *tree {
	l := len(s.savepoints)
	return s.savepoints[l-1]
}
