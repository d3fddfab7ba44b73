package adapters

import (
	"time"

	"market_backend/internal/feature/identity/domain/entity"
)

// ExchangeModel is the GORM model for the exchanges table.
type ExchangeModel struct {
	ID        uint   `gorm:"primaryKey"`
	Code      string `gorm:"size:32;not null;uniqueIndex"`
	Name      string `gorm:"size:255;not null"`
	Country   string `gorm:"size:8;not null;default:'US'"`
	Currency  string `gorm:"size:8;not null;default:'USD'"`
	Timezone  string `gorm:"size:64;not null"`
	OpenTime  string `gorm:"size:8"`
	CloseTime string `gorm:"size:8"`
	IsOpen    bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM.
func (ExchangeModel) TableName() string {
	return "exchanges"
}

// SymbolModel is the GORM model for the symbols table.
// ticker is globally unique; the composite index backs per-exchange listings.
type SymbolModel struct {
	ID            uint     `gorm:"primaryKey"`
	Ticker        string   `gorm:"column:symbol;size:32;not null;uniqueIndex;index:idx_symbols_exchange_symbol,priority:2"`
	Name          string   `gorm:"size:255;not null"`
	ExchangeID    uint     `gorm:"not null;index:idx_symbols_exchange_symbol,priority:1"`
	Currency      string   `gorm:"size:8;not null;default:'USD'"`
	Sector        string   `gorm:"size:128"`
	Industry      string   `gorm:"size:128"`
	IsInPortfolio bool     `gorm:"not null;default:false;index"`
	IsActive      bool     `gorm:"not null;default:true;index"`
	AltNames      []string `gorm:"serializer:json;type:text"`
	IsHalal       *bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName returns the table name for GORM.
func (SymbolModel) TableName() string {
	return "symbols"
}

func exchangeToEntity(m *ExchangeModel) *entity.Exchange {
	return &entity.Exchange{
		ID:        m.ID,
		Code:      m.Code,
		Name:      m.Name,
		Country:   m.Country,
		Currency:  m.Currency,
		Timezone:  m.Timezone,
		OpenTime:  m.OpenTime,
		CloseTime: m.CloseTime,
		IsOpen:    m.IsOpen,
	}
}

func exchangeFromEntity(e *entity.Exchange) *ExchangeModel {
	return &ExchangeModel{
		Code:      e.Code,
		Name:      e.Name,
		Country:   e.Country,
		Currency:  e.Currency,
		Timezone:  e.Timezone,
		OpenTime:  e.OpenTime,
		CloseTime: e.CloseTime,
		IsOpen:    e.IsOpen,
	}
}

func symbolToEntity(m *SymbolModel, exchangeCode string) *entity.Symbol {
	return &entity.Symbol{
		ID:           m.ID,
		Ticker:       m.Ticker,
		Name:         m.Name,
		ExchangeID:   m.ExchangeID,
		ExchangeCode: exchangeCode,
		Currency:     m.Currency,
		Sector:       m.Sector,
		Industry:     m.Industry,
		IsTracked:    m.IsInPortfolio,
		IsActive:     m.IsActive,
		AltNames:     m.AltNames,
		IsCompliant:  m.IsHalal,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func symbolFromEntity(e *entity.Symbol) *SymbolModel {
	return &SymbolModel{
		Ticker:        e.Ticker,
		Name:          e.Name,
		ExchangeID:    e.ExchangeID,
		Currency:      e.Currency,
		Sector:        e.Sector,
		Industry:      e.Industry,
		IsInPortfolio: e.IsTracked,
		IsActive:      e.IsActive,
		AltNames:      e.AltNames,
		IsHalal:       e.IsCompliant,
	}
}
