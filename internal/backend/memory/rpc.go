package memory

import (
	"context"
	"fmt"
	"net/http"

	"orcs/internal/backend"
)

type rpcFunc func(b *Backend, args row) (any, error)

var functions = map[string]rpcFunc{
	backend.FnConfirmKeyTransfer: confirmKeyTransfer,
}

// RPC calls a stored function. Each function runs under the backend lock,
// so its writes land together or not at all.
func (b *Backend) RPC(ctx context.Context, fn string, args any, dest any) error {
	if err := b.before(ctx, "rpc", fn); err != nil {
		return err
	}
	f, ok := functions[fn]
	if !ok {
		return &backend.Error{
			Status:  http.StatusNotFound,
			Code:    "PGRST202",
			Message: fmt.Sprintf("Could not find the function public.%s", fn),
		}
	}
	a, err := toRow(args)
	if err != nil {
		return badRequest(err.Error())
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out, err := f(b, a)
	if err != nil {
		return err
	}
	return backend.Decode(out, dest)
}

// confirmKeyTransfer marks the transfer confirmed and hands the key to its
// recipient. It raises PT404 for an unknown transfer or key and PT409 when the
// transfer was already confirmed. A failed key write restores the transfer.
func confirmKeyTransfer(b *Backend, args row) (any, error) {
	id := args["transfer_id"]
	if id == nil {
		return nil, badRequest("transfer_id is required")
	}
	transfers := b.selectRows(backend.From(backend.TableKeyTransfers).Eq("id", id))
	if len(transfers) == 0 {
		return nil, &backend.Error{Status: http.StatusNotFound, Code: "PT404", Message: "key transfer not found"}
	}
	t := transfers[0]
	if confirmed, _ := t["confirmed"].(bool); confirmed {
		return nil, &backend.Error{Status: http.StatusConflict, Code: "PT409", Message: "key transfer already confirmed"}
	}
	keyQuery := backend.From(backend.TableKeys).Eq("id", t["key_id"])
	if len(b.selectRows(keyQuery)) == 0 {
		return nil, &backend.Error{Status: http.StatusNotFound, Code: "PT404", Message: "key not found"}
	}

	now := timestamp(b.clock())
	pending := backend.From(backend.TableKeyTransfers).Eq("id", id)
	if _, err := b.updateRows(pending.Eq("confirmed", false), row{"confirmed": true, "confirmed_at": now}); err != nil {
		return nil, err
	}
	n, err := b.updateRows(keyQuery, row{"current_holder_id": t["to_user_id"], "status": "held", "updated_at": now})
	if err == nil && n == 0 {
		err = &backend.Error{Status: http.StatusNotFound, Code: "PT404", Message: "key not found"}
	}
	if err != nil {
		if _, undoErr := b.updateRows(pending, row{"confirmed": false, "confirmed_at": nil}); undoErr != nil {
			return nil, fmt.Errorf("%w (restoring transfer: %v)", err, undoErr)
		}
		return nil, err
	}

	t["confirmed"] = true
	t["confirmed_at"] = now
	return t, nil
}
