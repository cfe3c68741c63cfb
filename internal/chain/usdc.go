// Package chain reads on-chain wallet state. The dashboard only needs one
// call: the USDC balance of a live task's wallet on Polygon.
package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// USDC (PoS) on Polygon, 6 decimals.
const usdcContract = "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"

// balanceOf(address) selector.
var balanceOfSelector = []byte{0x70, 0xa0, 0x82, 0x31}

var usdcDivisor = big.NewFloat(1e6)

// BalanceReader reads USDC balances over a Polygon JSON-RPC endpoint.
// The connection is established lazily on first use.
type BalanceReader struct {
	rpcURL string

	once    sync.Once
	client  *ethclient.Client
	dialErr error
}

// NewBalanceReader creates a BalanceReader against the given RPC endpoint.
func NewBalanceReader(rpcURL string) *BalanceReader {
	return &BalanceReader{rpcURL: rpcURL}
}

// Balance returns the wallet's USDC balance in whole dollars. Callers fall
// back to the last recorded balance when this errors.
func (r *BalanceReader) Balance(ctx context.Context, wallet string) (float64, error) {
	wallet = strings.TrimSpace(wallet)
	if !common.IsHexAddress(wallet) {
		return 0, fmt.Errorf("chain: invalid wallet address %q", wallet)
	}

	client, err := r.connect(ctx)
	if err != nil {
		return 0, err
	}

	contract := common.HexToAddress(usdcContract)
	data := append(balanceOfSelector, common.LeftPadBytes(common.HexToAddress(wallet).Bytes(), 32)...)

	result, err := client.CallContract(ctx, ethereum.CallMsg{
		To:   &contract,
		Data: data,
	}, nil)
	if err != nil {
		return 0, fmt.Errorf("chain: balanceOf call for %s: %w", wallet, err)
	}
	if len(result) == 0 {
		return 0, fmt.Errorf("chain: empty balanceOf result for %s", wallet)
	}

	raw := new(big.Int).SetBytes(result)
	balance, _ := new(big.Float).Quo(new(big.Float).SetInt(raw), usdcDivisor).Float64()
	return balance, nil
}

func (r *BalanceReader) connect(ctx context.Context) (*ethclient.Client, error) {
	r.once.Do(func() {
		client, err := ethclient.DialContext(ctx, r.rpcURL)
		if err != nil {
			r.dialErr = fmt.Errorf("chain: dial %s: %w", r.rpcURL, err)
			return
		}
		r.client = client
	})
	if r.dialErr != nil {
		return nil, r.dialErr
	}
	return r.client, nil
}

// Close releases the underlying RPC connection.
func (r *BalanceReader) Close() {
	if r.client != nil {
		r.client.Close()
	}
}
