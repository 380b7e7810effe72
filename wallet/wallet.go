package wallet

import (
	"context"
	"errors"
	"math/big"
)

var ErrNotConnected = errors.New("no wallet session connected")

// Txn is an unsigned transaction request. The session owns signing and
// submission; callers never see private key material.
type Txn struct {
	To    string
	Data  []byte
	Value *big.Int
}

// Session is an established wallet connection. Two providers exist: the
// classic wallet-connector bridge and the embedded social-login wallet. Call
// sites only ever see this interface.
type Session interface {
	Address() string
	SignMessage(ctx context.Context, msg []byte) ([]byte, error)
	SendTransaction(ctx context.Context, txn Txn) (string, error)
}
