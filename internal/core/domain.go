package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type (
	// Member is a registered club member. Email and phone are optional;
	// the empty string means absent.
	Member struct {
		ID        int64
		Name      string
		Email     string
		Phone     string
		CreatedAt time.Time
	}

	// EntryLog records a single court check-in. Records are immutable once
	// created; the member reference is logical only.
	EntryLog struct {
		ID        int64
		MemberID  int64
		Timestamp time.Time
		Notes     string
	}

	// PaymentLog records a single payment. Immutable once created.
	PaymentLog struct {
		ID        int64
		MemberID  int64
		Amount    Money
		Timestamp time.Time
		Notes     string
	}
)

var (
	// ErrInvalidAmount is the parent of every amount validation failure.
	// The specific kinds below wrap it, so errors.Is(err, ErrInvalidAmount)
	// matches all of them.
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrAmountNotNumber   = fmt.Errorf("%w: not a number", ErrInvalidAmount)
	ErrAmountPrecision   = fmt.Errorf("%w: must have at most 2 decimal places", ErrInvalidAmount)
	ErrAmountNotPositive = fmt.Errorf("%w: must be greater than 0", ErrInvalidAmount)
	ErrAmountTooLarge    = fmt.Errorf("%w: must not exceed 1000.00", ErrInvalidAmount)

	ErrInvalidMemberID = errors.New("member id must be greater than 0")
	ErrEmptyName       = errors.New("name cannot be blank")
	ErrNameTooLong     = errors.New("name too long (max 255 characters)")
	ErrEmailTooLong    = errors.New("email too long (max 255 characters)")
	ErrPhoneTooLong    = errors.New("phone too long (max 20 characters)")
	ErrNotesTooLong    = errors.New("notes too long (max 255 characters)")
)

func (m Member) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	if len(m.Name) > 255 {
		return ErrNameTooLong
	}
	if len(m.Email) > 255 {
		return ErrEmailTooLong
	}
	if len(m.Phone) > 20 {
		return ErrPhoneTooLong
	}
	return nil
}

func (e EntryLog) Validate() error {
	if e.MemberID <= 0 {
		return ErrInvalidMemberID
	}
	if len(e.Notes) > 255 {
		return ErrNotesTooLong
	}
	return nil
}

func (p PaymentLog) Validate() error {
	if p.MemberID <= 0 {
		return ErrInvalidMemberID
	}
	if err := p.Amount.Validate(); err != nil {
		return err
	}
	if len(p.Notes) > 255 {
		return ErrNotesTooLong
	}
	return nil
}
