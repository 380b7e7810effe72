package chain

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Minimal ABI encoding for the three contract calls this service makes:
// allowance(address,address), approve(address,uint256) and
// payWithToken(address,uint256,address,string,string). A full ABI codec would
// be dead weight here.

func methodID(signature string) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(signature))
	return h.Sum(nil)[:4]
}

func packAddress(addr string) ([]byte, error) {
	s := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(addr)), "0x")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", addr, err)
	}
	if len(raw) != 20 {
		return nil, fmt.Errorf("invalid address length %d for %q", len(raw), addr)
	}
	word := make([]byte, 32)
	copy(word[12:], raw)
	return word, nil
}

func packUint(v *big.Int) ([]byte, error) {
	if v.Sign() < 0 {
		return nil, fmt.Errorf("negative uint: %s", v)
	}
	raw := v.Bytes()
	if len(raw) > 32 {
		return nil, fmt.Errorf("uint overflows 256 bits: %s", v)
	}
	word := make([]byte, 32)
	copy(word[32-len(raw):], raw)
	return word, nil
}

func packString(s string) []byte {
	data := []byte(s)
	length, _ := packUint(big.NewInt(int64(len(data))))
	padded := len(data)
	if rem := padded % 32; rem != 0 {
		padded += 32 - rem
	}
	out := make([]byte, 0, 32+padded)
	out = append(out, length...)
	out = append(out, data...)
	out = append(out, make([]byte, padded-len(data))...)
	return out
}

// allowanceCallData encodes allowance(owner, spender).
func allowanceCallData(owner, spender string) ([]byte, error) {
	ownerWord, err := packAddress(owner)
	if err != nil {
		return nil, err
	}
	spenderWord, err := packAddress(spender)
	if err != nil {
		return nil, err
	}
	data := methodID("allowance(address,address)")
	data = append(data, ownerWord...)
	data = append(data, spenderWord...)
	return data, nil
}

// approveCallData encodes approve(spender, amount).
func approveCallData(spender string, amount *big.Int) ([]byte, error) {
	spenderWord, err := packAddress(spender)
	if err != nil {
		return nil, err
	}
	amountWord, err := packUint(amount)
	if err != nil {
		return nil, err
	}
	data := methodID("approve(address,uint256)")
	data = append(data, spenderWord...)
	data = append(data, amountWord...)
	return data, nil
}

// payWithTokenCallData encodes payWithToken(token, amount, recipient, symbol,
// reference). The two strings are dynamic, so the head holds their offsets
// and the tail their length-prefixed padded bytes.
func payWithTokenCallData(token string, amount *big.Int, recipient, symbol, reference string) ([]byte, error) {
	tokenWord, err := packAddress(token)
	if err != nil {
		return nil, err
	}
	amountWord, err := packUint(amount)
	if err != nil {
		return nil, err
	}
	recipientWord, err := packAddress(recipient)
	if err != nil {
		return nil, err
	}

	symbolTail := packString(symbol)
	referenceTail := packString(reference)

	headSize := 5 * 32
	symbolOffset, _ := packUint(big.NewInt(int64(headSize)))
	referenceOffset, _ := packUint(big.NewInt(int64(headSize + len(symbolTail))))

	data := methodID("payWithToken(address,uint256,address,string,string)")
	data = append(data, tokenWord...)
	data = append(data, amountWord...)
	data = append(data, recipientWord...)
	data = append(data, symbolOffset...)
	data = append(data, referenceOffset...)
	data = append(data, symbolTail...)
	data = append(data, referenceTail...)
	return data, nil
}

// unpackUint decodes a single uint256 return word.
func unpackUint(data []byte) (*big.Int, error) {
	if len(data) < 32 {
		return nil, fmt.Errorf("short return data: %d bytes", len(data))
	}
	return new(big.Int).SetBytes(data[:32]), nil
}
