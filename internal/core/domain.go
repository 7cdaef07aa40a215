package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/currency"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	DefaultUserName = "User"
	DefaultCurrency = "USD"
)

type (
	TransactionType string

	Transaction struct {
		ID       string          `json:"id"`
		Type     TransactionType `json:"type"`
		Amount   Money           `json:"amount"`
		Category string          `json:"category"`
		Date     Timestamp       `json:"date"`
		Note     string          `json:"note,omitempty"`
	}

	User struct {
		Name     string `json:"name"`
		Currency string `json:"currency"`
	}

	// UserPatch carries a partial user update; nil fields are left untouched.
	UserPatch struct {
		Name     *string
		Currency *string
	}

	// AppState is the aggregate root persisted as a single document.
	// Transactions are ordered newest-first by insertion.
	AppState struct {
		Transactions []Transaction `json:"transactions"`
		User         User          `json:"user"`
		DarkMode     bool          `json:"darkMode"`
	}
)

var (
	ErrEmptyID         = errors.New("empty transaction id")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEmptyCategory   = errors.New("empty category")
	ErrUnknownCategory = errors.New("unknown category")
	ErrInvalidDate     = errors.New("invalid date")
	ErrEmptyName       = errors.New("empty user name")
	ErrNameTooLong     = errors.New("user name too long (max 50 characters)")
	ErrInvalidCurrency = errors.New("invalid currency code")
	ErrDuplicateID     = errors.New("duplicate transaction id")
)

var validationErrors = []error{
	ErrEmptyID, ErrInvalidType, ErrInvalidAmount, ErrEmptyCategory, ErrUnknownCategory,
	ErrInvalidDate, ErrEmptyName, ErrNameTooLong, ErrInvalidCurrency, ErrDuplicateID,
}

// IsValidationError reports whether err was caused by rejected input.
func IsValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (t TransactionType) IsValid() bool {
	switch t {
	case Income, Expense:
		return true
	default:
		return false
	}
}

func (t TransactionType) String() string {
	return string(t)
}

// ParseTransactionType accepts the type name in any letter case.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", ErrInvalidType
	}
	return t, nil
}

// NewTransaction builds a transaction with a fresh random identifier.
func NewTransaction(typ TransactionType, amount Money, category string, date time.Time, note string) Transaction {
	return Transaction{
		ID:       uuid.NewString(),
		Type:     typ,
		Amount:   amount,
		Category: strings.TrimSpace(category),
		Date:     NewTimestamp(date),
		Note:     strings.TrimSpace(note),
	}
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrEmptyID
	}
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// DefaultState is the state used on first run and after a reset.
func DefaultState() AppState {
	return AppState{
		Transactions: []Transaction{},
		User:         User{Name: DefaultUserName, Currency: DefaultCurrency},
		DarkMode:     false,
	}
}

// Clone returns a copy that shares no mutable memory with s.
func (s AppState) Clone() AppState {
	out := s
	out.Transactions = make([]Transaction, len(s.Transactions))
	copy(out.Transactions, s.Transactions)
	return out
}

// Find returns the transaction with the given id.
func (s AppState) Find(id string) (Transaction, bool) {
	for _, t := range s.Transactions {
		if t.ID == id {
			return t, true
		}
	}
	return Transaction{}, false
}

// NormalizeCurrency upper-cases and validates an ISO 4217 code.
func NormalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", ErrInvalidCurrency
	}
	if _, err := currency.ParseISO(code); err != nil {
		return "", ErrInvalidCurrency
	}
	return code, nil
}

// Normalize trims and validates the patch fields that are set.
func (p UserPatch) Normalize() (UserPatch, error) {
	var out UserPatch
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return UserPatch{}, ErrEmptyName
		}
		if len(name) > 50 {
			return UserPatch{}, ErrNameTooLong
		}
		out.Name = &name
	}
	if p.Currency != nil {
		code, err := NormalizeCurrency(*p.Currency)
		if err != nil {
			return UserPatch{}, err
		}
		out.Currency = &code
	}
	return out, nil
}

// Apply merges the set fields of p into u.
func (u User) Apply(p UserPatch) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Currency != nil {
		u.Currency = *p.Currency
	}
	return u
}
