package wallet

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ConnectorSession drives a classic wallet through its JSON-RPC bridge
// (eth_accounts, eth_sendTransaction, personal_sign). The bridge holds the
// keys; every call here is a request to sign-and-submit, not a local signing.
// One session is shared across all in-flight checkouts.
type ConnectorSession struct {
	url     string
	address string
	http    *http.Client
	logger  *zap.Logger
	nextID  atomic.Int64
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int64  `json:"id"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// ConnectConnector opens a session against the bridge and pins the first
// exposed account as the session address.
func ConnectConnector(ctx context.Context, url string, logger *zap.Logger) (*ConnectorSession, error) {
	s := &ConnectorSession{
		url:    url,
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}

	var accounts []string
	if err := s.call(ctx, "eth_accounts", nil, &accounts); err != nil {
		return nil, fmt.Errorf("failed to query connector accounts: %w", err)
	}
	if len(accounts) == 0 {
		return nil, ErrNotConnected
	}
	s.address = accounts[0]

	logger.Info("Wallet connector session established", zap.String("address", s.address))
	return s, nil
}

func (s *ConnectorSession) Address() string {
	return s.address
}

func (s *ConnectorSession) SignMessage(ctx context.Context, msg []byte) ([]byte, error) {
	var sigHex string
	params := []any{"0x" + hex.EncodeToString(msg), s.address}
	if err := s.call(ctx, "personal_sign", params, &sigHex); err != nil {
		return nil, fmt.Errorf("failed to sign message: %w", err)
	}
	return decodeHex(sigHex)
}

func (s *ConnectorSession) SendTransaction(ctx context.Context, txn Txn) (string, error) {
	param := map[string]string{
		"from": s.address,
		"to":   txn.To,
		"data": "0x" + hex.EncodeToString(txn.Data),
	}
	if txn.Value != nil && txn.Value.Sign() > 0 {
		param["value"] = "0x" + txn.Value.Text(16)
	}

	var hash string
	if err := s.call(ctx, "eth_sendTransaction", []any{param}, &hash); err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}

	s.logger.Info("Transaction submitted via connector",
		zap.String("to", txn.To),
		zap.String("hash", hash),
	)
	return hash, nil
}

func (s *ConnectorSession) call(ctx context.Context, method string, params []any, out any) error {
	id := s.nextID.Add(1)
	if params == nil {
		params = []any{}
	}
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", Method: method, Params: params, ID: id})
	if err != nil {
		return fmt.Errorf("failed to marshal rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to build rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("connector unreachable: %w", err)
	}
	defer resp.Body.Close()

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("failed to decode rpc response: %w", err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if out != nil {
		if err := json.Unmarshal(rpcResp.Result, out); err != nil {
			return fmt.Errorf("failed to unmarshal rpc result: %w", err)
		}
	}
	return nil
}

func decodeHex(s string) ([]byte, error) {
	if len(s) >= 2 && s[:2] == "0x" {
		s = s[2:]
	}
	return hex.DecodeString(s)
}
