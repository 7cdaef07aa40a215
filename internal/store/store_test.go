package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/finance"
	"fintrack/internal/storage"
)

// flakyRepository wraps a memory repository and fails on demand.
type flakyRepository struct {
	*storage.MemoryRepository
	mu       sync.Mutex
	saveErr  error
	loadErr  error
	clearErr error
	saves    int
}

func newFlaky() *flakyRepository {
	return &flakyRepository{MemoryRepository: storage.NewMemoryRepository()}
}

func (r *flakyRepository) Save(ctx context.Context, s core.AppState) error {
	r.mu.Lock()
	r.saves++
	err := r.saveErr
	r.mu.Unlock()
	if err != nil {
		return err
	}
	return r.MemoryRepository.Save(ctx, s)
}

func (r *flakyRepository) Load(ctx context.Context) (core.AppState, error) {
	if r.loadErr != nil {
		return core.AppState{}, r.loadErr
	}
	return r.MemoryRepository.Load(ctx)
}

func (r *flakyRepository) Clear(ctx context.Context) error {
	if r.clearErr != nil {
		return r.clearErr
	}
	return r.MemoryRepository.Clear(ctx)
}

func TestNewStoreStartsWithDefaults(t *testing.T) {
	s := New(nil)
	assert.Equal(t, core.DefaultState(), s.State())
}

func TestDispatchPersistsEveryTransition(t *testing.T) {
	ctx := context.Background()
	repo := newFlaky()
	s := New(repo)

	_, err := s.Dispatch(ctx, AddTransaction{Transaction: salary()})
	require.NoError(t, err)
	_, err = s.Dispatch(ctx, ToggleDarkMode{})
	require.NoError(t, err)

	saved, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.State(), saved)
	assert.Equal(t, 2, repo.saves)
}

func TestDispatchRejectsInvalidPayloads(t *testing.T) {
	ctx := context.Background()
	repo := newFlaky()
	s := New(repo)
	_, err := s.Dispatch(ctx, AddTransaction{Transaction: salary()})
	require.NoError(t, err)
	before := s.State()

	zero := salary()
	zero.ID = "other"
	zero.Amount = core.Money{}

	tests := []struct {
		name   string
		action Action
		want   error
	}{
		{"duplicate id", AddTransaction{Transaction: salary()}, core.ErrDuplicateID},
		{"zero amount", AddTransaction{Transaction: zero}, core.ErrInvalidAmount},
		{"update with bad type", UpdateTransaction{Transaction: core.Transaction{ID: "t-salary", Type: "x"}}, core.ErrInvalidType},
		{"unknown currency", UpdateUser{Patch: core.UserPatch{Currency: ptr("ZZZ")}}, core.ErrInvalidCurrency},
		{"blank name", UpdateUser{Patch: core.UserPatch{Name: ptr("  ")}}, core.ErrEmptyName},
		{"nil action", nil, ErrUnknownAction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Dispatch(ctx, tt.action)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, got)
			assert.Equal(t, before, s.State())
		})
	}
	assert.Equal(t, 1, repo.saves, "rejected actions must not be persisted")
}

func TestDispatchNormalizesUserPatch(t *testing.T) {
	s := New(nil)
	got, err := s.Dispatch(context.Background(), UpdateUser{Patch: core.UserPatch{Currency: ptr(" eur ")}})
	require.NoError(t, err)
	assert.Equal(t, "EUR", got.User.Currency)

	formatted, err := finance.FormatCurrency(core.Money{Cents: 1000}, got.User.Currency)
	require.NoError(t, err)
	assert.Equal(t, "€10", formatted)
}

func TestPersistenceFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	repo := newFlaky()
	repo.saveErr = errors.New("quota exceeded")

	var changes []Change
	s := New(repo, WithSubscriber(func(c Change) { changes = append(changes, c) }))

	got, err := s.Dispatch(ctx, AddTransaction{Transaction: salary()})
	require.NoError(t, err)
	assert.Len(t, got.Transactions, 1)
	assert.Len(t, s.State().Transactions, 1)
	assert.ErrorIs(t, s.LastPersistError(), ErrStorage)

	require.Len(t, changes, 1)
	assert.ErrorIs(t, changes[0].PersistErr, ErrStorage)

	repo.saveErr = nil
	_, err = s.Dispatch(ctx, ToggleDarkMode{})
	require.NoError(t, err)
	assert.NoError(t, s.LastPersistError())
}

func TestHydrate(t *testing.T) {
	ctx := context.Background()

	t.Run("missing record keeps defaults", func(t *testing.T) {
		s := New(newFlaky())
		require.NoError(t, s.Hydrate(ctx))
		assert.Equal(t, core.DefaultState(), s.State())
	})

	t.Run("restores persisted snapshot", func(t *testing.T) {
		repo := newFlaky()
		first := New(repo)
		_, err := first.Dispatch(ctx, AddTransaction{Transaction: salary()})
		require.NoError(t, err)
		_, err = first.Dispatch(ctx, UpdateUser{Patch: core.UserPatch{Name: ptr("Ana")}})
		require.NoError(t, err)

		second := New(repo)
		require.NoError(t, second.Hydrate(ctx))
		assert.Equal(t, first.State(), second.State())
	})

	t.Run("load failure keeps defaults", func(t *testing.T) {
		repo := newFlaky()
		repo.loadErr = errors.New("corrupt")
		s := New(repo)
		err := s.Hydrate(ctx)
		assert.ErrorIs(t, err, ErrStorage)
		assert.Equal(t, core.DefaultState(), s.State())
	})
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	repo := newFlaky()
	s := New(repo)
	_, err := s.Dispatch(ctx, AddTransaction{Transaction: salary()})
	require.NoError(t, err)

	require.NoError(t, s.Reset(ctx))
	assert.Equal(t, core.DefaultState(), s.State())
	_, err = repo.Load(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	repo.clearErr = errors.New("locked")
	assert.ErrorIs(t, s.Reset(ctx), ErrStorage)
	assert.Equal(t, core.DefaultState(), s.State())
}

func TestSubscribersSeeTransitionsInOrder(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	var dark []bool
	var names []string
	s.Subscribe(func(c Change) {
		dark = append(dark, c.State.DarkMode)
		names = append(names, c.Action.Name())
	})

	for i := 0; i < 3; i++ {
		_, err := s.Dispatch(ctx, ToggleDarkMode{})
		require.NoError(t, err)
	}
	_, err := s.Dispatch(ctx, DeleteTransaction{ID: "nothing"})
	require.NoError(t, err)

	assert.Equal(t, []bool{true, false, true, true}, dark)
	assert.Equal(t, []string{"TOGGLE_DARK_MODE", "TOGGLE_DARK_MODE", "TOGGLE_DARK_MODE", "DELETE_TRANSACTION"}, names)
}

func TestSnapshotsAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	_, err := s.Dispatch(ctx, AddTransaction{Transaction: salary()})
	require.NoError(t, err)

	snap := s.State()
	snap.Transactions[0].Amount = core.Money{Cents: 1}
	assert.Equal(t, int64(500000), s.State().Transactions[0].Amount.Cents)
}

func TestConcurrentReadersDuringDispatch(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewMemoryRepository())

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				st := s.State()
				sum := finance.CalculateSummary(st.Transactions)
				if sum.Balance.Cents != sum.Income.Cents-sum.Expense.Cents {
					t.Error("inconsistent snapshot")
					return
				}
			}
		}()
	}

	for i := 0; i < 200; i++ {
		_, err := s.Dispatch(ctx, AddTransaction{Transaction: food(int64(i+1))})
		require.NoError(t, err)
	}
	close(stop)
	wg.Wait()
	assert.Len(t, s.State().Transactions, 200)
}
