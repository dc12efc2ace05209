package memstore

import (
	"context"
	"fmt"

	"github.com/scalien/sdbp-go/pkg/common/log"
	"github.com/scalien/sdbp-go/pkg/transport"
)

// Handler serves transport requests from a Store
type Handler struct {
	store  *Store
	logger log.Logger
}

var _ transport.RequestHandler = (*Handler)(nil)

// NewHandler creates a handler for store
func NewHandler(store *Store) *Handler {
	return &Handler{
		store:  store,
		logger: log.GetDefaultLogger().WithField("component", "memstore"),
	}
}

// HandleRequest processes a request and returns a response. Application level
// failures such as an unknown table are reported through the result status;
// the returned error is reserved for malformed requests.
func (h *Handler) HandleRequest(ctx context.Context, request transport.Request) (transport.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch request.Type() {
	case transport.TypeListKeys:
		return h.handleListKeys(request.Payload())
	case transport.TypeListKeyValues:
		return h.handleListKeyValues(request.Payload())
	case transport.TypeGetTableID:
		return h.handleGetTableID(request.Payload())
	case transport.TypeSet:
		return h.handleSet(request.Payload())
	default:
		err := fmt.Errorf("%w: unsupported request type %q", transport.ErrInvalidRequest, request.Type())
		return transport.NewErrorResponse(err), err
	}
}

func noTable(id uint64) transport.ResultHeader {
	return transport.ResultHeader{
		Status:  transport.StatusBadSchema,
		Message: fmt.Sprintf("no table with id %d", id),
	}
}

func (h *Handler) handleListKeys(payload []byte) (transport.Response, error) {
	var req transport.ListPayload
	if err := transport.Decode(payload, &req); err != nil {
		return transport.NewErrorResponse(err), err
	}

	var result transport.ListKeysResult
	if t, ok := h.store.TableByID(req.TableID); ok {
		result.Keys = t.ListKeys(req)
	} else {
		result.ResultHeader = noTable(req.TableID)
	}

	h.logger.Debug("list keys table=%d start=%q skip=%v count=%d returned=%d",
		req.TableID, req.StartKey, req.Skip, req.Count, len(result.Keys))
	return transport.EncodeResponse(transport.TypeListKeys, result)
}

func (h *Handler) handleListKeyValues(payload []byte) (transport.Response, error) {
	var req transport.ListPayload
	if err := transport.Decode(payload, &req); err != nil {
		return transport.NewErrorResponse(err), err
	}

	var result transport.ListKeyValuesResult
	if t, ok := h.store.TableByID(req.TableID); ok {
		result.Items = t.ListKeyValues(req)
	} else {
		result.ResultHeader = noTable(req.TableID)
	}

	h.logger.Debug("list key values table=%d start=%q forward=%v skip=%v count=%d returned=%d",
		req.TableID, req.StartKey, req.Forward, req.Skip, req.Count, len(result.Items))
	return transport.EncodeResponse(transport.TypeListKeyValues, result)
}

func (h *Handler) handleGetTableID(payload []byte) (transport.Response, error) {
	var req transport.GetTableIDPayload
	if err := transport.Decode(payload, &req); err != nil {
		return transport.NewErrorResponse(err), err
	}

	var result transport.GetTableIDResult
	if t, ok := h.store.Table(req.Name); ok {
		result.TableID = t.ID()
	} else {
		result.ResultHeader = transport.ResultHeader{
			Status:  transport.StatusBadSchema,
			Message: fmt.Sprintf("no table with name '%s'", req.Name),
		}
	}
	return transport.EncodeResponse(transport.TypeGetTableID, result)
}

func (h *Handler) handleSet(payload []byte) (transport.Response, error) {
	var req transport.SetPayload
	if err := transport.Decode(payload, &req); err != nil {
		return transport.NewErrorResponse(err), err
	}

	var result transport.SetResult
	if t, ok := h.store.TableByID(req.TableID); ok {
		t.Set(req.Key, req.Value)
	} else {
		result.ResultHeader = noTable(req.TableID)
	}
	return transport.EncodeResponse(transport.TypeSet, result)
}
