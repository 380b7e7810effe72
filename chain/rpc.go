package chain

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type ReceiptStatus string

const (
	ReceiptStatusSuccess  ReceiptStatus = "success"
	ReceiptStatusReverted ReceiptStatus = "reverted"
)

type Receipt struct {
	TxHash      string        `json:"transactionHash"`
	Status      ReceiptStatus `json:"-"`
	BlockNumber string        `json:"blockNumber"`
	GasUsed     string        `json:"gasUsed"`
}

// Reader is the read side of the chain: contract calls and receipt lookups.
// Writes go through the wallet session, never through here.
type Reader interface {
	CallContract(ctx context.Context, to string, data []byte) ([]byte, error)
	TransactionReceipt(ctx context.Context, hash string) (*Receipt, error)
}

// RPCClient implements Reader over the node's JSON-RPC endpoint.
type RPCClient struct {
	url    string
	http   *http.Client
	logger *zap.Logger
}

func NewRPCClient(url string, logger *zap.Logger) *RPCClient {
	return &RPCClient{
		url:    url,
		http:   &http.Client{Timeout: 15 * time.Second},
		logger: logger,
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int    `json:"id"`
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

func (c *RPCClient) CallContract(ctx context.Context, to string, data []byte) ([]byte, error) {
	params := []any{
		map[string]string{"to": to, "data": "0x" + hex.EncodeToString(data)},
		"latest",
	}
	var resultHex string
	if err := c.call(ctx, "eth_call", params, &resultHex); err != nil {
		return nil, err
	}
	if len(resultHex) >= 2 && resultHex[:2] == "0x" {
		resultHex = resultHex[2:]
	}
	out, err := hex.DecodeString(resultHex)
	if err != nil {
		return nil, fmt.Errorf("invalid eth_call result: %w", err)
	}
	return out, nil
}

// TransactionReceipt returns nil, nil while the transaction is still pending.
func (c *RPCClient) TransactionReceipt(ctx context.Context, hash string) (*Receipt, error) {
	var raw struct {
		TransactionHash string `json:"transactionHash"`
		Status          string `json:"status"`
		BlockNumber     string `json:"blockNumber"`
		GasUsed         string `json:"gasUsed"`
	}
	var result json.RawMessage
	if err := c.call(ctx, "eth_getTransactionReceipt", []any{hash}, &result); err != nil {
		return nil, err
	}
	if len(result) == 0 || string(result) == "null" {
		return nil, nil
	}
	if err := json.Unmarshal(result, &raw); err != nil {
		return nil, fmt.Errorf("invalid receipt: %w", err)
	}

	receipt := &Receipt{
		TxHash:      raw.TransactionHash,
		BlockNumber: raw.BlockNumber,
		GasUsed:     raw.GasUsed,
	}
	if raw.Status == "0x1" {
		receipt.Status = ReceiptStatusSuccess
	} else {
		receipt.Status = ReceiptStatusReverted
	}
	return receipt, nil
}

func (c *RPCClient) call(ctx context.Context, method string, params []any, out any) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", Method: method, Params: params, ID: 1})
	if err != nil {
		return fmt.Errorf("failed to marshal rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to build rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("chain node unreachable: %w", err)
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
