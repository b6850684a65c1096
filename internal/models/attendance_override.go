package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"attendance-bot/pkg/holidays"
)

// Status is the attendance decision of a company for a holiday.
// StatusUndecided means no row is stored; it is never persisted.
type Status int

const (
	StatusUndecided Status = iota
	StatusAttend
	StatusAbsent
)

const (
	labelAttend = "Sim"
	labelAbsent = "Não"
)

// StatusFromBool maps an explicit yes/no decision.
func StatusFromBool(willAttend bool) Status {
	if willAttend {
		return StatusAttend
	}
	return StatusAbsent
}

// ParseStatus accepts the yes/no words operators type.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sim", "s", "yes", "y", "1":
		return StatusAttend, nil
	case "não", "nao", "n", "no", "0":
		return StatusAbsent, nil
	default:
		return StatusUndecided, fmt.Errorf("%w: status %q, use sim or não", ErrInvalidInput, s)
	}
}

func (s Status) Decided() bool {
	return s == StatusAttend || s == StatusAbsent
}

func (s Status) String() string {
	switch s {
	case StatusAttend:
		return labelAttend
	case StatusAbsent:
		return labelAbsent
	default:
		return "Indefinido"
	}
}

// UndecidedPolicy chooses how a surface renders a company with no stored row.
type UndecidedPolicy int

const (
	// AssumeAttend renders undecided as "service continues".
	AssumeAttend UndecidedPolicy = iota
	// AssumeAbsent renders undecided as "no service".
	AssumeAbsent
)

// WillAttend renders the status as a yes/no value under policy p.
func (s Status) WillAttend(p UndecidedPolicy) bool {
	switch s {
	case StatusAttend:
		return true
	case StatusAbsent:
		return false
	default:
		return p == AssumeAttend
	}
}

func (Status) GormDataType() string {
	return "varchar(10)"
}

func (s Status) Value() (driver.Value, error) {
	if !s.Decided() {
		return nil, fmt.Errorf("%w: undecided status cannot be stored", ErrInvalidInput)
	}
	return s.String(), nil
}

func (s *Status) Scan(src any) error {
	var v string
	switch t := src.(type) {
	case string:
		v = t
	case []byte:
		v = string(t)
	default:
		return fmt.Errorf("cannot scan %T into models.Status", src)
	}

	switch v {
	case labelAttend:
		*s = StatusAttend
	case labelAbsent:
		*s = StatusAbsent
	default:
		return fmt.Errorf("unknown status_operacao %q", v)
	}
	return nil
}

// Key identifies an override: one holiday date, one company.
type Key struct {
	Date      holidays.Date
	CompanyID uint
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%d", k.Date, k.CompanyID)
}

// AttendanceOverride records whether a company operates on a holiday date.
type AttendanceOverride struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	Date           holidays.Date `gorm:"column:date;not null;uniqueIndex:idx_operacao_feriado_chave,priority:1" json:"date"`
	CompanyID      uint          `gorm:"column:empresa_id;not null;uniqueIndex:idx_operacao_feriado_chave,priority:2;index" json:"empresa_id"`
	Status         Status        `gorm:"column:status_operacao;not null" json:"status_operacao"`
	AddedBy        *string       `gorm:"column:quem_adicionou" json:"quem_adicionou"`
	URAResponsible *string       `gorm:"column:responsavel_ura" json:"responsavel_ura"`
	Note           *string       `gorm:"column:observacao" json:"observacao"`
	Version        int64         `gorm:"not null;default:1" json:"version"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func (AttendanceOverride) TableName() string {
	return "operacao_feriados"
}

func (o *AttendanceOverride) Key() Key {
	return Key{Date: o.Date, CompanyID: o.CompanyID}
}

// WillAttend is the stored decision. Rows are always decided.
func (o *AttendanceOverride) WillAttend() bool {
	return o.Status == StatusAttend
}

// OverridePayload holds the mutable fields written by an upsert.
type OverridePayload struct {
	Status         Status
	AddedBy        *string
	URAResponsible *string
	Note           *string
	UpdatedAt      time.Time
}

// IsValid checks the payload before it reaches the store.
func (p OverridePayload) IsValid() bool {
	return p.Status.Decided() && !p.UpdatedAt.IsZero()
}

// StringPtr returns nil for blank strings so empty fields are stored as NULL.
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// StringValue dereferences p, treating nil as "".
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
