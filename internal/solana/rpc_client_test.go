package solana

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// rpcServer answers every JSON-RPC request with the result built by fn.
func rpcServer(t *testing.T, method string, fn func(req rpcRequest) interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}

		if req.Method != method {
			t.Errorf("expected method %s, got %s", method, req.Method)
		}

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  fn(req),
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestHTTPClient_GetSignaturesForAddress(t *testing.T) {
	server := rpcServer(t, "getSignaturesForAddress", func(req rpcRequest) interface{} {
		if len(req.Params) != 2 {
			t.Errorf("expected 2 params, got %d", len(req.Params))
		}
		return []map[string]interface{}{
			{"signature": "sig1", "slot": int64(100), "blockTime": int64(1700000000), "err": nil},
			{"signature": "sig2", "slot": int64(101), "blockTime": nil, "err": nil},
		}
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)

	sigs, err := client.GetSignaturesForAddress(context.Background(), "addr", &SignaturesOpts{Limit: 2})
	if err != nil {
		t.Fatalf("GetSignaturesForAddress: %v", err)
	}

	if len(sigs) != 2 {
		t.Fatalf("expected 2 signatures, got %d", len(sigs))
	}

	if sigs[0].Signature != "sig1" || sigs[0].BlockTime == nil {
		t.Errorf("unexpected first signature: %+v", sigs[0])
	}

	if sigs[1].BlockTime != nil {
		t.Errorf("expected nil blockTime, got %v", *sigs[1].BlockTime)
	}
}

func TestHTTPClient_GetTokenLargestAccounts(t *testing.T) {
	server := rpcServer(t, "getTokenLargestAccounts", func(req rpcRequest) interface{} {
		return map[string]interface{}{
			"context": map[string]interface{}{"slot": 1},
			"value": []map[string]interface{}{
				{"address": "acc1", "amount": "5000", "decimals": 2, "uiAmount": 50.0, "uiAmountString": "50"},
				{"address": "acc2", "amount": "3000", "decimals": 2, "uiAmount": 30.0, "uiAmountString": "30"},
				{"address": "acc3", "amount": "100", "decimals": 2, "uiAmount": nil, "uiAmountString": ""},
			},
		}
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)

	accounts, err := client.GetTokenLargestAccounts(context.Background(), "mint")
	if err != nil {
		t.Fatalf("GetTokenLargestAccounts: %v", err)
	}

	if len(accounts) != 3 {
		t.Fatalf("expected 3 accounts, got %d", len(accounts))
	}

	if accounts[0].Address != "acc1" || accounts[0].Amount != 50 {
		t.Errorf("unexpected first account: %+v", accounts[0])
	}

	if accounts[2].Amount != 0 {
		t.Errorf("expected zero amount for missing ui amount, got %v", accounts[2].Amount)
	}
}

func TestHTTPClient_GetTokenSupply(t *testing.T) {
	server := rpcServer(t, "getTokenSupply", func(req rpcRequest) interface{} {
		return map[string]interface{}{
			"value": map[string]interface{}{"amount": "1000000000", "decimals": 6, "uiAmountString": "1000"},
		}
	})
	defer server.Close()

	supply, err := NewHTTPClient(server.URL).GetTokenSupply(context.Background(), "mint")
	if err != nil {
		t.Fatalf("GetTokenSupply: %v", err)
	}

	if supply != 1000 {
		t.Errorf("expected supply 1000, got %v", supply)
	}
}

func TestHTTPClient_Retry(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count := attempts.Add(1)
		if count < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}

		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  map[string]interface{}{"value": map[string]interface{}{"uiAmountString": "7"}},
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL,
		WithMaxRetries(3),
		WithRetryDelay(10*time.Millisecond),
	)

	supply, err := client.GetTokenSupply(context.Background(), "mint")
	if err != nil {
		t.Fatalf("GetTokenSupply: %v", err)
	}

	if supply != 7 {
		t.Errorf("expected supply 7, got %v", supply)
	}

	if attempts.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts.Load())
	}
}

func TestHTTPClient_NoRetryByDefault(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewHTTPClient(server.URL).GetTokenSupply(context.Background(), "mint")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %T", err)
	}

	if statusErr.StatusCode != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", statusErr.StatusCode)
	}

	if attempts.Load() != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts.Load())
	}
}

func TestHTTPClient_RPCError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error": map[string]interface{}{
				"code":    -32602,
				"message": "Invalid param: not a Token mint",
			},
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	_, err := NewHTTPClient(server.URL).GetTokenLargestAccounts(context.Background(), "mint")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected RPCError, got %T", err)
	}

	if rpcErr.Code != -32602 {
		t.Errorf("expected code -32602, got %d", rpcErr.Code)
	}
}

func TestHTTPClient_GetAccountInfo(t *testing.T) {
	server := rpcServer(t, "getAccountInfo", func(req rpcRequest) interface{} {
		return map[string]interface{}{
			"context": map[string]interface{}{"slot": 1},
			"value": map[string]interface{}{
				"lamports":   uint64(1461600),
				"owner":      TokenProgramID,
				"data":       []string{"AQID", "base64"},
				"executable": false,
				"rentEpoch":  uint64(361),
			},
		}
	})
	defer server.Close()

	info, err := NewHTTPClient(server.URL).GetAccountInfo(context.Background(), "mint")
	if err != nil {
		t.Fatalf("GetAccountInfo: %v", err)
	}

	if info == nil {
		t.Fatal("expected account info, got nil")
	}

	if info.Owner != TokenProgramID {
		t.Errorf("expected token program owner, got %s", info.Owner)
	}

	if info.Data != "AQID" {
		t.Errorf("expected data AQID, got %s", info.Data)
	}
}

func TestHTTPClient_GetAccountInfo_NotFound(t *testing.T) {
	server := rpcServer(t, "getAccountInfo", func(req rpcRequest) interface{} {
		return map[string]interface{}{
			"context": map[string]interface{}{"slot": 1},
			"value":   nil,
		}
	})
	defer server.Close()

	info, err := NewHTTPClient(server.URL).GetAccountInfo(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetAccountInfo: %v", err)
	}

	if info != nil {
		t.Errorf("expected nil for missing account, got %+v", info)
	}
}

func TestHTTPClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewHTTPClient(server.URL).GetTokenSupply(ctx, "mint")
	if err == nil {
		t.Fatal("expected error on cancelled context")
	}

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}
