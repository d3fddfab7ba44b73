// Package usecase は価格同期オーケストレーターのビジネスロジックを実装します。
package usecase

import "errors"

var (
	// ErrCommitFailure はストアがバッチの書き込みを拒否したことを示します。元のエラーもラップされます。
	ErrCommitFailure = errors.New("failed to commit price batch")

	// ErrNoProviders はプロバイダーが 1 つも設定されていない場合に返されます。
	ErrNoProviders = errors.New("no quote providers configured")
)
