package rpc

import (
	"errors"

	"propnet/go-core/internal/app"
	"propnet/go-core/internal/engine"
	"propnet/go-core/internal/network"
	"propnet/go-core/internal/storage"
)

// JSON-RPC error codes. -32600..-32700 are the standard protocol codes; the
// -320xx range is reserved for this service.
const (
	codeInvalidParams   = -32602
	codeNotFound        = -32040
	codeBadConnection   = -32021
	codeValidation      = -32022
	codeDiverged        = -32023
	codeGadgetOutput    = -32024
	codeNameTaken       = -32025
	codeRootImmutable   = -32026
	codeSnapshotMissing = -32030
	codeStoreDisabled   = -32031
	codeInternal        = -32050
)

func toRPCError(err error) *rpcError {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, network.ErrGadgetOutput):
		return &rpcError{Code: codeGadgetOutput, Message: err.Error()}
	case errors.Is(err, network.ErrNameTaken):
		return &rpcError{Code: codeNameTaken, Message: err.Error()}
	case errors.Is(err, network.ErrRootGroup):
		return &rpcError{Code: codeRootImmutable, Message: err.Error()}
	case errors.Is(err, network.ErrNotFound):
		return &rpcError{Code: codeNotFound, Message: err.Error()}
	case errors.Is(err, engine.ErrDiverged):
		return &rpcError{Code: codeDiverged, Message: err.Error()}
	case errors.Is(err, storage.ErrNoSnapshot):
		return &rpcError{Code: codeSnapshotMissing, Message: err.Error()}
	case errors.Is(err, app.ErrNoStore):
		return &rpcError{Code: codeStoreDisabled, Message: err.Error()}
	}

	var connErr *network.ConnectionError
	if errors.As(err, &connErr) {
		return &rpcError{Code: codeBadConnection, Message: connErr.Error()}
	}
	var valErr *network.ValidationError
	if errors.As(err, &valErr) {
		return &rpcError{Code: codeValidation, Message: valErr.Error()}
	}
	return &rpcError{Code: codeInternal, Message: err.Error()}
}
