// Package adapters はidentityフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"market_backend/internal/feature/identity/domain/entity"
	"market_backend/internal/feature/identity/usecase"
)

// pgUniqueViolation は PostgreSQL の一意制約違反の SQLSTATE です。
const pgUniqueViolation = "23505"

// identityGorm は IdentityRepository の GORM 実装です。
type identityGorm struct {
	db *gorm.DB
}

// identityGormがIdentityRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.IdentityRepository = (*identityGorm)(nil)

// NewIdentityRepository は指定された gorm.DB 接続で identityGorm の新しいインスタンスを生成します。
func NewIdentityRepository(db *gorm.DB) *identityGorm {
	return &identityGorm{db: db}
}

// isUniqueViolation は一意制約違反かどうかをドライバーに依存せず判定します。
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true
	}
	// SQLite はエラーメッセージでしか判別できない
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// FindSymbolByTicker はティッカーで銘柄を取得します。
func (r *identityGorm) FindSymbolByTicker(ctx context.Context, ticker string) (*entity.Symbol, error) {
	var m SymbolModel
	if err := r.db.WithContext(ctx).Where("symbol = ?", ticker).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrSymbolNotFound
		}
		return nil, err
	}
	return r.withExchangeCode(ctx, &m)
}

// FindSymbolByID は ID で銘柄を取得します。
func (r *identityGorm) FindSymbolByID(ctx context.Context, id uint) (*entity.Symbol, error) {
	var m SymbolModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrSymbolNotFound
		}
		return nil, err
	}
	return r.withExchangeCode(ctx, &m)
}

func (r *identityGorm) withExchangeCode(ctx context.Context, m *SymbolModel) (*entity.Symbol, error) {
	var code string
	if err := r.db.WithContext(ctx).
		Model(&ExchangeModel{}).
		Where("id = ?", m.ExchangeID).
		Pluck("code", &code).Error; err != nil {
		return nil, err
	}
	return symbolToEntity(m, code), nil
}

// FindExchangeByCode は取引所コードで取引所を取得します。
func (r *identityGorm) FindExchangeByCode(ctx context.Context, code string) (*entity.Exchange, error) {
	var m ExchangeModel
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrExchangeNotFound
		}
		return nil, err
	}
	return exchangeToEntity(&m), nil
}

// CreateExchange は取引所を追加し、採番された ID を ex に設定します。
func (r *identityGorm) CreateExchange(ctx context.Context, ex *entity.Exchange) error {
	m := exchangeFromEntity(ex)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return usecase.ErrDuplicate
		}
		return err
	}
	ex.ID = m.ID
	return nil
}

// CreateSymbol は銘柄を追加し、採番された ID を s に設定します。
func (r *identityGorm) CreateSymbol(ctx context.Context, s *entity.Symbol) error {
	m := symbolFromEntity(s)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return usecase.ErrDuplicate
		}
		return err
	}
	s.ID = m.ID
	s.CreatedAt = m.CreatedAt
	s.UpdatedAt = m.UpdatedAt
	return nil
}

// SetTracked は is_in_portfolio フラグを更新します。
func (r *identityGorm) SetTracked(ctx context.Context, id uint, tracked bool) error {
	res := r.db.WithContext(ctx).
		Model(&SymbolModel{}).
		Where("id = ?", id).
		Update("is_in_portfolio", tracked)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrSymbolNotFound
	}
	return nil
}

// Deactivate は銘柄を無効化し、最新価格の行を同じトランザクションで削除します。
func (r *identityGorm) Deactivate(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&SymbolModel{}).
			Where("id = ?", id).
			Updates(map[string]any{"is_active": false, "is_in_portfolio": false})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return usecase.ErrSymbolNotFound
		}
		return tx.Exec("DELETE FROM symbol_prices WHERE symbol_id = ?", id).Error
	})
}
