package models

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// CashFenceStatus представляет статус кассовой смены
type CashFenceStatus int

const (
	CashFenceStatusDraft  CashFenceStatus = 0 // Смена открыта
	CashFenceStatusClosed CashFenceStatus = 2 // Смена закрыта (проведена)
)

// String возвращает текстовое представление статуса
func (s CashFenceStatus) String() string {
	switch s {
	case CashFenceStatusDraft:
		return "DRAFT"
	case CashFenceStatusClosed:
		return "CLOSED"
	}
	return "UNKNOWN(" + strconv.Itoa(int(s)) + ")"
}

// CashFence представляет кассовую смену POS-терминала
type CashFence struct {
	ID           uint            `gorm:"column:rowid;primaryKey;autoIncrement" json:"id"`
	Entity       int             `gorm:"column:entity;not null;index" json:"entity"`
	Ref          string          `gorm:"-" json:"ref"`
	Label        string          `gorm:"column:label;size:255;not null" json:"label"`
	Opening      decimal.Decimal `gorm:"column:opening;type:numeric(24,8);not null" json:"opening"`
	Cash         decimal.Decimal `gorm:"column:cash;type:numeric(24,8);not null" json:"cash"`
	Cheque       decimal.Decimal `gorm:"column:cheque;type:numeric(24,8);not null" json:"cheque"`
	DayClose     *int            `gorm:"column:day_close" json:"dayClose"`
	MonthClose   *int            `gorm:"column:month_close" json:"monthClose"`
	YearClose    *int            `gorm:"column:year_close" json:"yearClose"`
	PosModule    string          `gorm:"column:posmodule;size:30;not null" json:"posModule"`
	PosNumber    string          `gorm:"column:posnumber;size:30;not null" json:"posNumber"`
	DateCreation time.Time       `gorm:"column:date_creation;not null" json:"dateCreation"`
	Tms          time.Time       `gorm:"column:tms;autoUpdateTime;not null" json:"tms"`
	ImportKey    *string         `gorm:"column:import_key;size:14" json:"-"`
	Status       CashFenceStatus `gorm:"column:status;not null;index" json:"status"`
}

// TableName возвращает имя таблицы для модели CashFence
func (CashFence) TableName() string {
	return "pos_cash_fence"
}

// IsClosed сообщает, закрыта ли смена
func (f *CashFence) IsClosed() bool {
	return f.Status == CashFenceStatusClosed
}

// SyncRef выставляет ссылку смены по ее идентификатору
func (f *CashFence) SyncRef() {
	if f.ID != 0 {
		f.Ref = strconv.FormatUint(uint64(f.ID), 10)
	}
}
