package adapters

import "time"

// SymbolPriceModel is the GORM model for the symbol_prices table.
// symbol_id is unique: the row is the symbol's current snapshot and is replaced on every sync.
type SymbolPriceModel struct {
	ID            uint      `gorm:"primaryKey"`
	SymbolID      uint      `gorm:"not null;uniqueIndex"`
	Price         float64   `gorm:"not null"`
	Change        float64   `gorm:"not null;default:0"`
	ChangePercent float64   `gorm:"not null;default:0"`
	Volume        *int64
	MarketCap     *float64
	High52        *float64  `gorm:"column:week_52_high"`
	Low52         *float64  `gorm:"column:week_52_low"`
	DividendYield *float64
	DataSource    string    `gorm:"size:32;not null"`
	MarketSession string    `gorm:"size:16;not null;default:'regular'"`
	FetchedAt     time.Time `gorm:"not null;index"`
	UpdatedAt     time.Time
}

// TableName returns the table name for GORM.
func (SymbolPriceModel) TableName() string {
	return "symbol_prices"
}

// TrackedIndexModel is the GORM model for the tracked_indices table.
type TrackedIndexModel struct {
	ID        uint   `gorm:"primaryKey"`
	Symbol    string `gorm:"size:32;not null;uniqueIndex"`
	Name      string `gorm:"size:255;not null"`
	Currency  string `gorm:"size:8;not null;default:'USD'"`
	IsActive  bool   `gorm:"not null;default:true"`
	SortOrder int    `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM.
func (TrackedIndexModel) TableName() string {
	return "tracked_indices"
}

// IndexPriceModel is the GORM model for the index_prices table.
type IndexPriceModel struct {
	ID             uint      `gorm:"primaryKey"`
	TrackedIndexID uint      `gorm:"not null;uniqueIndex"`
	Price          float64   `gorm:"not null"`
	Change         float64   `gorm:"not null;default:0"`
	ChangePercent  float64   `gorm:"not null;default:0"`
	DataSource     string    `gorm:"size:32;not null"`
	FetchedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time
}

// TableName returns the table name for GORM.
func (IndexPriceModel) TableName() string {
	return "index_prices"
}

// Models returns every model owned by the prices feature, for migration.
func Models() []any {
	return []any{&SymbolPriceModel{}, &TrackedIndexModel{}, &IndexPriceModel{}}
}
