package wallet

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

// SocialSession wraps the embedded social-login wallet, which exposes a plain
// HTTPS API authenticated by the user's login token instead of a JSON-RPC
// bridge.
type SocialSession struct {
	baseURL string
	token   string
	address string
	http    *http.Client
	logger  *zap.Logger
}

func ConnectSocial(ctx context.Context, baseURL, token string, logger *zap.Logger) (*SocialSession, error) {
	s := &SocialSession{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}

	var account struct {
		Address string `json:"address"`
	}
	if err := s.do(ctx, http.MethodGet, "/wallet/account", nil, &account); err != nil {
		return nil, fmt.Errorf("failed to load social wallet account: %w", err)
	}
	if account.Address == "" {
		return nil, ErrNotConnected
	}
	s.address = account.Address

	logger.Info("Social wallet session established", zap.String("address", s.address))
	return s, nil
}

func (s *SocialSession) Address() string {
	return s.address
}

func (s *SocialSession) SignMessage(ctx context.Context, msg []byte) ([]byte, error) {
	req := map[string]string{"message": "0x" + hex.EncodeToString(msg)}
	var resp struct {
		Signature string `json:"signature"`
	}
	if err := s.do(ctx, http.MethodPost, "/wallet/sign", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to sign message: %w", err)
	}
	return decodeHex(resp.Signature)
}

func (s *SocialSession) SendTransaction(ctx context.Context, txn Txn) (string, error) {
	req := map[string]string{
		"to":   txn.To,
		"data": "0x" + hex.EncodeToString(txn.Data),
	}
	if txn.Value != nil && txn.Value.Sign() > 0 {
		req["value"] = "0x" + txn.Value.Text(16)
	}

	var resp struct {
		Hash string `json:"hash"`
	}
	if err := s.do(ctx, http.MethodPost, "/wallet/transactions", req, &resp); err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}

	s.logger.Info("Transaction submitted via social wallet",
		zap.String("to", txn.To),
		zap.String("hash", resp.Hash),
	)
	return resp.Hash, nil
}

func (s *SocialSession) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("social wallet unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("social wallet returned status %d", resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
