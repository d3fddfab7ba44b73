package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"market_backend/internal/feature/identity/domain/entity"
)

// IdentityRepository は取引所と銘柄の永続化レイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type IdentityRepository interface {
	// FindSymbolByTicker は大文字化済みのティッカーで銘柄を検索します。存在しない場合は ErrSymbolNotFound。
	FindSymbolByTicker(ctx context.Context, ticker string) (*entity.Symbol, error)
	// FindSymbolByID は ID で銘柄を検索します。存在しない場合は ErrSymbolNotFound。
	FindSymbolByID(ctx context.Context, id uint) (*entity.Symbol, error)
	// FindExchangeByCode は取引所コードで検索します。存在しない場合は ErrExchangeNotFound。
	FindExchangeByCode(ctx context.Context, code string) (*entity.Exchange, error)
	// CreateExchange は取引所を追加します。一意制約違反の場合は ErrDuplicate。
	CreateExchange(ctx context.Context, ex *entity.Exchange) error
	// CreateSymbol は銘柄を追加します。一意制約違反の場合は ErrDuplicate。
	CreateSymbol(ctx context.Context, s *entity.Symbol) error
	// SetTracked は同期対象フラグを更新します。
	SetTracked(ctx context.Context, id uint, tracked bool) error
	// Deactivate は銘柄を無効化し、同じトランザクションで最新価格の行を削除します。
	Deactivate(ctx context.Context, id uint) error
}

// PriceCache は最新価格一覧のキャッシュを破棄する口です。
// 銘柄の無効化で価格行が削除されたとき、キャッシュに残った価格を配信しないために使います。
type PriceCache interface {
	InvalidateLatestPrices(ctx context.Context) error
}

// IdentityUsecase は銘柄の識別情報の解決と登録を行います。
type IdentityUsecase struct {
	repo   IdentityRepository
	prices PriceCache
}

// NewIdentityUsecase は IdentityUsecase の新しいインスタンスを生成します。
func NewIdentityUsecase(repo IdentityRepository) *IdentityUsecase {
	return &IdentityUsecase{repo: repo}
}

// WithPriceCache は無効化時に破棄する価格キャッシュを設定します。nil の場合は何もしません。
func (u *IdentityUsecase) WithPriceCache(c PriceCache) *IdentityUsecase {
	u.prices = c
	return u
}

// Resolve は I/O を伴わずにティッカーの識別情報を推定します。
func (u *IdentityUsecase) Resolve(raw string) entity.SymbolInfo {
	return Resolve(raw)
}

// EnsureIdentity はティッカーに対応する銘柄 ID を返し、存在しなければ取引所と銘柄を作成します。
// exchangeOverride が指定された場合はパターン推定より優先します。
//
// 同じティッカーで並行に呼ばれても銘柄は 1 行だけ作成されます。
// 一意制約で挿入に負けた側は再検索して勝った側の ID を返します。
func (u *IdentityUsecase) EnsureIdentity(ctx context.Context, rawTicker, displayName, exchangeOverride, currencyOverride string) (uint, error) {
	ticker := strings.ToUpper(strings.TrimSpace(rawTicker))
	if ticker == "" {
		return 0, &IdentityCreationError{Ticker: rawTicker, Stage: StageValidate, Err: ErrInvalidTicker}
	}

	existing, err := u.repo.FindSymbolByTicker(ctx, ticker)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, ErrSymbolNotFound) {
		return 0, &IdentityCreationError{Ticker: ticker, Stage: StageLookup, Err: err}
	}

	info := resolveWithOverride(ticker, exchangeOverride, currencyOverride)

	ex, err := u.getOrCreateExchange(ctx, info)
	if err != nil {
		return 0, &IdentityCreationError{Ticker: ticker, Stage: StageExchange, Err: err}
	}

	name := strings.TrimSpace(displayName)
	if name == "" {
		name = ticker
	}
	sym := &entity.Symbol{
		Ticker:       ticker,
		Name:         name,
		ExchangeID:   ex.ID,
		ExchangeCode: ex.Code,
		Currency:     info.Currency,
		IsActive:     true,
	}
	if err := u.repo.CreateSymbol(ctx, sym); err != nil {
		if !errors.Is(err, ErrDuplicate) {
			return 0, &IdentityCreationError{Ticker: ticker, Stage: StageSymbol, Err: err}
		}
		// 別の呼び出しが先に作成した
		winner, ferr := u.repo.FindSymbolByTicker(ctx, ticker)
		if ferr != nil {
			return 0, &IdentityCreationError{Ticker: ticker, Stage: StageSymbol, Err: errors.Join(err, ferr)}
		}
		return winner.ID, nil
	}

	slog.Info("symbol created", "ticker", ticker, "exchange", ex.Code, "currency", info.Currency, "id", sym.ID)
	return sym.ID, nil
}

func (u *IdentityUsecase) getOrCreateExchange(ctx context.Context, info entity.SymbolInfo) (*entity.Exchange, error) {
	ex, err := u.repo.FindExchangeByCode(ctx, info.ExchangeCode)
	if err == nil {
		return ex, nil
	}
	if !errors.Is(err, ErrExchangeNotFound) {
		return nil, err
	}

	created := entity.NewExchange(info.ExchangeCode, info.Currency)
	if err := u.repo.CreateExchange(ctx, &created); err != nil {
		if !errors.Is(err, ErrDuplicate) {
			return nil, err
		}
		return u.repo.FindExchangeByCode(ctx, info.ExchangeCode)
	}
	slog.Info("exchange created", "code", created.Code, "currency", created.Currency)
	return &created, nil
}

// EnsureTracked は EnsureIdentity を行った上で銘柄を同期対象にします。
// 保有銘柄を手動で追加したときに使用します。
func (u *IdentityUsecase) EnsureTracked(ctx context.Context, rawTicker, displayName, exchangeOverride, currencyOverride string) (uint, error) {
	id, err := u.EnsureIdentity(ctx, rawTicker, displayName, exchangeOverride, currencyOverride)
	if err != nil {
		return 0, err
	}
	if err := u.repo.SetTracked(ctx, id, true); err != nil {
		return 0, &IdentityCreationError{Ticker: strings.ToUpper(strings.TrimSpace(rawTicker)), Stage: StageSymbol, Err: err}
	}
	return id, nil
}

// Untrack は最後の保有が削除されたときに同期対象から外します。
func (u *IdentityUsecase) Untrack(ctx context.Context, symbolID uint) error {
	return u.repo.SetTracked(ctx, symbolID, false)
}

// Deactivate は銘柄を無効化します。銘柄は物理削除されません。
// 価格行の削除がコミットされた後、最新価格のキャッシュを破棄します。
func (u *IdentityUsecase) Deactivate(ctx context.Context, symbolID uint) error {
	if err := u.repo.Deactivate(ctx, symbolID); err != nil {
		return err
	}
	if u.prices != nil {
		if err := u.prices.InvalidateLatestPrices(ctx); err != nil {
			// DB は更新済みなのでエラーにはせず、TTL 切れまでの残存をログに残す
			slog.Warn("failed to invalidate cached prices", "symbol_id", symbolID, "error", err)
		}
	}
	slog.Info("symbol deactivated", "symbol_id", symbolID)
	return nil
}

// GetSymbol は ID で銘柄を取得します。
func (u *IdentityUsecase) GetSymbol(ctx context.Context, symbolID uint) (*entity.Symbol, error) {
	return u.repo.FindSymbolByID(ctx, symbolID)
}
