package task

type State string

const (
	StateActive           State = "active"
	StateCompleted        State = "completed"
	StateTrashed          State = "trashed"
	StateTrashedCompleted State = "trashed_completed"

	// StateRemoved не хранится: задача удаляется из раздела
	StateRemoved State = "removed"
)

type Transition string

const (
	TransitionComplete Transition = "complete"
	TransitionReopen   Transition = "reopen"
	TransitionTrash    Transition = "trash"
	TransitionRestore  Transition = "restore"
	TransitionPurge    Transition = "purge"
)

var transitions = map[State]map[Transition]State{
	StateActive: {
		TransitionComplete: StateCompleted,
		TransitionTrash:    StateTrashed,
	},
	StateCompleted: {
		TransitionReopen: StateActive,
		TransitionTrash:  StateTrashedCompleted,
	},
	StateTrashed: {
		TransitionRestore: StateActive,
		TransitionPurge:   StateRemoved,
	},
	StateTrashedCompleted: {
		TransitionRestore: StateCompleted,
		TransitionPurge:   StateRemoved,
	},
}

func (s State) Can(tr Transition) bool {
	_, ok := transitions[s][tr]
	return ok
}

// StateFromFlags восстанавливает состояние из флагов хранимого документа
func StateFromFlags(isCompleted, isDeleted bool) State {
	switch {
	case isCompleted && isDeleted:
		return StateTrashedCompleted
	case isDeleted:
		return StateTrashed
	case isCompleted:
		return StateCompleted
	default:
		return StateActive
	}
}
