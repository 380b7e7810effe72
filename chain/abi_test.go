package chain

import (
	"bytes"
	"encoding/hex"
	"math/big"
	"testing"
)

const (
	ownerAddr   = "0x1111111111111111111111111111111111111111"
	spenderAddr = "0x2222222222222222222222222222222222222222"
)

func TestAllowanceCallData_SelectorAndLayout(t *testing.T) {
	data, err := allowanceCallData(ownerAddr, spenderAddr)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Canonical ERC-20 selector for allowance(address,address).
	if got := hex.EncodeToString(data[:4]); got != "dd62ed3e" {
		t.Errorf("Expected selector dd62ed3e, got %s", got)
	}
	if len(data) != 4+64 {
		t.Errorf("Expected 68 bytes, got %d", len(data))
	}

	ownerWord, _ := packAddress(ownerAddr)
	if !bytes.Equal(data[4:36], ownerWord) {
		t.Error("Owner word not at offset 4")
	}
	spenderWord, _ := packAddress(spenderAddr)
	if !bytes.Equal(data[36:68], spenderWord) {
		t.Error("Spender word not at offset 36")
	}
}

func TestApproveCallData_Selector(t *testing.T) {
	data, err := approveCallData(spenderAddr, big.NewInt(150000000))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Canonical ERC-20 selector for approve(address,uint256).
	if got := hex.EncodeToString(data[:4]); got != "095ea7b3" {
		t.Errorf("Expected selector 095ea7b3, got %s", got)
	}

	amount, err := unpackUint(data[36:68])
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if amount.Int64() != 150000000 {
		t.Errorf("Expected amount 150000000, got %s", amount)
	}
}

func TestPayWithTokenCallData_DynamicStringLayout(t *testing.T) {
	tokenAddr := "0xdac17f958d2ee523a2206206994597c13d831ec7"
	data, err := payWithTokenCallData(tokenAddr, big.NewInt(150000000), ownerAddr, "USDT", "TX-REF-001")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	head := data[4:]
	symbolOffset, _ := unpackUint(head[96:128])
	referenceOffset, _ := unpackUint(head[128:160])

	if symbolOffset.Int64() != 160 {
		t.Errorf("Expected symbol offset 160, got %s", symbolOffset)
	}

	symbolLen, _ := unpackUint(head[symbolOffset.Int64() : symbolOffset.Int64()+32])
	if symbolLen.Int64() != 4 {
		t.Errorf("Expected symbol length 4, got %s", symbolLen)
	}
	symbolStart := symbolOffset.Int64() + 32
	if got := string(head[symbolStart : symbolStart+4]); got != "USDT" {
		t.Errorf("Expected symbol USDT, got %q", got)
	}

	refLen, _ := unpackUint(head[referenceOffset.Int64() : referenceOffset.Int64()+32])
	if refLen.Int64() != 10 {
		t.Errorf("Expected reference length 10, got %s", refLen)
	}
	refStart := referenceOffset.Int64() + 32
	if got := string(head[refStart : refStart+10]); got != "TX-REF-001" {
		t.Errorf("Expected reference TX-REF-001, got %q", got)
	}

	// Tails are padded to 32-byte boundaries.
	if len(head)%32 != 0 {
		t.Errorf("Encoded arguments not word-aligned: %d bytes", len(head))
	}
}

func TestPackAddress_RejectsBadInput(t *testing.T) {
	for _, addr := range []string{"", "0x1234", "not-an-address"} {
		if _, err := packAddress(addr); err == nil {
			t.Errorf("Expected error for %q", addr)
		}
	}
}
