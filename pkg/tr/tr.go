package tr

import (
	"context"

	"github.com/DRSN-tech/catalog-admin/pkg/e"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	trmcontext "github.com/avito-tech/go-transaction-manager/trm/v2/context"
)

// TrOrDB возвращает активную транзакцию из контекста, а если её нет, то переданный пул.
func TrOrDB(ctx context.Context, db trmpgx.Tr) trmpgx.Tr {
	return trmpgx.DefaultCtxGetter.DefaultTrOrDB(ctx, db)
}

// TxFromCtx извлекает объект транзакции из контекста.
// Используется там, где запрос обязан выполняться внутри транзакции.
func TxFromCtx(ctx context.Context) (trmpgx.Tr, error) {
	if trmcontext.DefaultManager.Default(ctx) == nil {
		return nil, e.ErrTransactionNotFound
	}

	// nil-пул безопасен: при наличии транзакции DefaultTrOrDB его не возвращает
	return trmpgx.DefaultCtxGetter.DefaultTrOrDB(ctx, nil), nil
}
