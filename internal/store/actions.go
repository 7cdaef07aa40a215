package store

import (
	"fintrack/internal/core"
)

// Action is a state transition intent. The set is closed: only the types in
// this file implement it.
type Action interface {
	Name() string
	isAction()
}

type (
	// Initialize replaces the whole state, typically with a persisted snapshot.
	Initialize struct{ State core.AppState }

	// AddTransaction prepends a transaction.
	AddTransaction struct{ Transaction core.Transaction }

	// UpdateTransaction replaces the transaction with the same ID.
	UpdateTransaction struct{ Transaction core.Transaction }

	// DeleteTransaction removes the transaction with the given ID.
	DeleteTransaction struct{ ID string }

	// UpdateUser shallow-merges the set fields of Patch into the user.
	UpdateUser struct{ Patch core.UserPatch }

	ToggleDarkMode struct{}
)

func (Initialize) Name() string        { return "INITIALIZE" }
func (AddTransaction) Name() string    { return "ADD_TRANSACTION" }
func (UpdateTransaction) Name() string { return "UPDATE_TRANSACTION" }
func (DeleteTransaction) Name() string { return "DELETE_TRANSACTION" }
func (UpdateUser) Name() string        { return "UPDATE_USER" }
func (ToggleDarkMode) Name() string    { return "TOGGLE_DARK_MODE" }

func (Initialize) isAction()        {}
func (AddTransaction) isAction()    {}
func (UpdateTransaction) isAction() {}
func (DeleteTransaction) isAction() {}
func (UpdateUser) isAction()        {}
func (ToggleDarkMode) isAction()    {}

// Reduce applies action to state and returns the next state. It is pure and
// total: the input is never modified, and actions that do not apply (unknown
// IDs, a duplicate ID on add) return the state unchanged.
func Reduce(state core.AppState, action Action) core.AppState {
	switch a := action.(type) {
	case Initialize:
		return dedupe(a.State)

	case AddTransaction:
		if indexOf(state.Transactions, a.Transaction.ID) >= 0 {
			return state
		}
		next := state
		next.Transactions = make([]core.Transaction, 0, len(state.Transactions)+1)
		next.Transactions = append(next.Transactions, a.Transaction)
		next.Transactions = append(next.Transactions, state.Transactions...)
		return next

	case UpdateTransaction:
		i := indexOf(state.Transactions, a.Transaction.ID)
		if i < 0 {
			return state
		}
		next := state.Clone()
		next.Transactions[i] = a.Transaction
		return next

	case DeleteTransaction:
		i := indexOf(state.Transactions, a.ID)
		if i < 0 {
			return state
		}
		next := state
		next.Transactions = make([]core.Transaction, 0, len(state.Transactions)-1)
		next.Transactions = append(next.Transactions, state.Transactions[:i]...)
		next.Transactions = append(next.Transactions, state.Transactions[i+1:]...)
		return next

	case UpdateUser:
		next := state
		next.User = state.User.Apply(a.Patch)
		return next

	case ToggleDarkMode:
		next := state
		next.DarkMode = !state.DarkMode
		return next

	default:
		return state
	}
}

func indexOf(txs []core.Transaction, id string) int {
	for i, t := range txs {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// dedupe copies s keeping the first transaction seen for each ID.
func dedupe(s core.AppState) core.AppState {
	out := s
	out.Transactions = make([]core.Transaction, 0, len(s.Transactions))
	seen := make(map[string]struct{}, len(s.Transactions))
	for _, t := range s.Transactions {
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}
		out.Transactions = append(out.Transactions, t)
	}
	return out
}
