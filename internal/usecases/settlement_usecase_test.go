package usecases

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chain-bridge.backend/internal/domain/entities"
	domainerrors "chain-bridge.backend/internal/domain/errors"
	"chain-bridge.backend/pkg/utils"
)

const (
	testToken    = "0xtoken"
	testSender   = "0xa11ce00000000000000000000000000000000001"
	testReceiver = "0xb0b0000000000000000000000000000000000002"
	testEscrow   = "bridge:escrow"
	testFeeRec   = "0xfee0000000000000000000000000000000000003"
)

type settlementFixture struct {
	usecase   *SettlementUsecase
	requests  *bridgeRequestRepoMem
	chains    *chainRepoMem
	tokens    *tokenRepoMem
	settings  *settingsRepoMem
	balances  *balanceRepoMem
	fees      *dynamicFeeRepoMem
	vals      *validatorRepoMem
	roots     *merkleRepoMem
	registry  *TokenRegistryUsecase
	engine    *FeeEngineUsecase
	validator *ValidatorUsecase
}

// newSettlementFixture wires the full settlement graph over in-memory
// repositories: timeout 1h, global fee 100 bps (1%), one enabled chain 137,
// source chain 1, sender funded with 1e6 units.
func newSettlementFixture(t *testing.T) *settlementFixture {
	t.Helper()
	f := &settlementFixture{
		requests: newBridgeRequestRepoMem(),
		chains:   newChainRepoMem(),
		tokens:   newTokenRepoMem(),
		balances: newBalanceRepoMem(),
		fees:     newDynamicFeeRepoMem(),
		vals:     newValidatorRepoMem(),
		roots:    newMerkleRepoMem(),
	}
	f.settings = newSettingsRepoMem(&entities.BridgeSettings{
		Enabled:            true,
		CurrentChainID:     1,
		TransactionTimeout: time.Hour,
		FeePercentageBps:   100,
		MinimumAmount:      "1",
		MaximumAmount:      "1000000000",
		FeeRecipient:       testFeeRec,
		EscrowAccount:      testEscrow,
		Threshold:          1,
		Stats:              entities.BridgeStats{TotalVolume: "0", TotalFeesCollected: "0"},
	})

	uow := &uowMem{}
	f.registry = NewTokenRegistryUsecase(f.tokens, f.settings)
	f.engine = NewFeeEngineUsecase(f.fees, time.Hour)
	f.validator = NewValidatorUsecase(f.vals, f.roots, f.settings, uow)
	f.usecase = NewSettlementUsecase(f.requests, f.chains, f.settings, f.balances, f.registry, f.engine, f.validator, uow)

	require.NoError(t, f.chains.Create(context.Background(), &entities.ChainConfig{
		ChainID:        137,
		Name:           "Polygon",
		Enabled:        true,
		MinAmount:      "1",
		MaxAmount:      "100000000",
		DailyVolume:    "0",
		MaxDailyVolume: "500000000",
		LastResetTime:  time.Now(),
	}))
	require.NoError(t, f.balances.Mint(context.Background(), testToken, testSender, "1000000"))
	return f
}

func (f *settlementFixture) setTimeout(t *testing.T, timeout time.Duration) {
	t.Helper()
	settings, err := f.settings.Get(context.Background())
	require.NoError(t, err)
	settings.TransactionTimeout = timeout
	require.NoError(t, f.settings.Update(context.Background(), settings))
}

func (f *settlementFixture) mustBalance(t *testing.T, account string) *big.Int {
	t.Helper()
	raw, err := f.balances.BalanceOf(context.Background(), testToken, account)
	require.NoError(t, err)
	value, ok := new(big.Int).SetString(raw, 10)
	require.True(t, ok)
	return value
}

func initiateInput(amount string) *entities.InitiateBridgeInput {
	return &entities.InitiateBridgeInput{
		Sender:        testSender,
		Receiver:      testReceiver,
		Token:         testToken,
		Amount:        amount,
		ChainID:       137,
		SourceChainID: 1,
		DestChainID:   137,
	}
}

func TestSettlement_InitiateGlobalDefaultFee(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()

	// 1000 with global 1% and no token config: fee 10, net 990
	resp, err := f.usecase.Initiate(ctx, initiateInput("1000"))
	require.NoError(t, err)
	require.Equal(t, "10", resp.Fee)
	require.Equal(t, "990", resp.Amount)
	require.Equal(t, entities.RequestStatusCreated, resp.Status)
	require.NotZero(t, resp.RequestID)
	require.NotEmpty(t, resp.TxHash)

	stats, err := f.usecase.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), stats.TotalTransactions)
	require.Equal(t, int64(1), stats.PendingTransactions)
	require.Equal(t, "1000", stats.TotalVolume)

	// gross amount locked in escrow
	require.Equal(t, int64(1000), f.mustBalance(t, testEscrow).Int64())
	require.Equal(t, int64(999000), f.mustBalance(t, testSender).Int64())
}

func TestSettlement_InitiateValidationFailures(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()

	cases := []struct {
		name    string
		mutate  func(in *entities.InitiateBridgeInput)
		wantErr error
	}{
		{"same chain", func(in *entities.InitiateBridgeInput) {
			in.SourceChainID = 137
		}, domainerrors.ErrSameChain},
		{"wrong source", func(in *entities.InitiateBridgeInput) {
			in.SourceChainID = 42
		}, domainerrors.ErrWrongSource},
		{"dest mismatch", func(in *entities.InitiateBridgeInput) {
			in.DestChainID = 42
		}, domainerrors.ErrWrongDest},
		{"unknown chain", func(in *entities.InitiateBridgeInput) {
			in.ChainID = 999
			in.DestChainID = 999
		}, domainerrors.ErrChainDisabled},
		{"zero amount", func(in *entities.InitiateBridgeInput) {
			in.Amount = "0"
		}, domainerrors.ErrInvalidAmount},
		{"garbage amount", func(in *entities.InitiateBridgeInput) {
			in.Amount = "12,5"
		}, domainerrors.ErrInvalidAmount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := initiateInput("1000")
			tc.mutate(in)
			_, err := f.usecase.Initiate(ctx, in)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}

	// nothing was recorded by any rejected attempt
	stats, err := f.usecase.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(0), stats.TotalTransactions)
	require.Equal(t, int64(0), f.mustBalance(t, testEscrow).Int64())
}

func TestSettlement_InitiatePaused(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()

	settings, err := f.settings.Get(ctx)
	require.NoError(t, err)
	settings.Enabled = false
	require.NoError(t, f.settings.Update(ctx, settings))

	_, err = f.usecase.Initiate(ctx, initiateInput("1000"))
	require.ErrorIs(t, err, domainerrors.ErrBridgePaused)
}

func TestSettlement_InitiateInsufficientBalance(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()

	_, err := f.usecase.Initiate(ctx, initiateInput("2000000"))
	require.ErrorIs(t, err, domainerrors.ErrAboveMaximum)

	// raise the caps so only the balance stops it
	settings, err := f.settings.Get(ctx)
	require.NoError(t, err)
	settings.MaximumAmount = "10000000000"
	require.NoError(t, f.settings.Update(ctx, settings))
	chain, err := f.chains.GetByChainID(ctx, 137)
	require.NoError(t, err)
	chain.MaxAmount = "10000000000"
	chain.MaxDailyVolume = "10000000000"
	require.NoError(t, f.chains.Update(ctx, chain))

	_, err = f.usecase.Initiate(ctx, initiateInput("2000000"))
	require.ErrorIs(t, err, domainerrors.ErrInsufficientFunds)

	stats, err := f.usecase.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(0), stats.TotalTransactions)
}

func TestSettlement_CompleteConservation(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()
	require.NoError(t, f.validator.Add(ctx, &entities.AddValidatorInput{Address: "0x1111111111111111111111111111111111111111"}))

	resp, err := f.usecase.Initiate(ctx, initiateInput("1000"))
	require.NoError(t, err)

	// attest via merkle proof against a batch root
	root, proofs, err := BuildMerkleTree([]string{resp.TxHash, otherCommitment})
	require.NoError(t, err)
	require.NoError(t, f.validator.SetMerkleRoot(ctx, &entities.SetMerkleRootInput{
		ChainID:   137,
		Root:      root,
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}))

	completed, err := f.usecase.Complete(ctx, &entities.CompleteBridgeInput{
		RequestID:   resp.RequestID,
		TxHash:      resp.TxHash,
		MerkleProof: proofs[resp.TxHash],
	})
	require.NoError(t, err)
	require.Equal(t, entities.RequestStatusCompleted, completed.Status)

	// conservation: locked 1000 == released 990 + fee 10
	require.Equal(t, int64(990), f.mustBalance(t, testReceiver).Int64())
	require.Equal(t, int64(10), f.mustBalance(t, testFeeRec).Int64())
	require.Equal(t, int64(0), f.mustBalance(t, testEscrow).Int64())

	stats, err := f.usecase.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(0), stats.PendingTransactions)
	require.Equal(t, int64(1), stats.CompletedTransactions)
	require.Equal(t, "10", stats.TotalFeesCollected)

	// no double settlement
	_, err = f.usecase.Complete(ctx, &entities.CompleteBridgeInput{
		RequestID:   resp.RequestID,
		TxHash:      resp.TxHash,
		MerkleProof: proofs[resp.TxHash],
	})
	require.ErrorIs(t, err, domainerrors.ErrAlreadyFinalized)
	_, err = f.usecase.Cancel(ctx, &entities.CancelBridgeInput{RequestID: resp.RequestID, Sender: testSender})
	require.ErrorIs(t, err, domainerrors.ErrAlreadyFinalized)
}

// otherCommitment pads attestation batches so proofs are non-empty
const otherCommitment = "0xdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef"

func TestSettlement_CompleteRejectsTamperedCommitment(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()

	first, err := f.usecase.Initiate(ctx, initiateInput("1000"))
	require.NoError(t, err)
	second, err := f.usecase.Initiate(ctx, initiateInput("2000"))
	require.NoError(t, err)

	// a registered commitment belonging to a different request
	_, err = f.usecase.Complete(ctx, &entities.CompleteBridgeInput{
		RequestID:   first.RequestID,
		TxHash:      second.TxHash,
		MerkleProof: []string{},
	})
	require.ErrorIs(t, err, domainerrors.ErrHashMismatch)

	// a commitment never registered at all
	_, err = f.usecase.Complete(ctx, &entities.CompleteBridgeInput{
		RequestID:   first.RequestID,
		TxHash:      "0x1234567890123456789012345678901234567890123456789012345678901234",
		MerkleProof: []string{},
	})
	require.ErrorIs(t, err, domainerrors.ErrUnknownCommitment)

	// no fund movement, request still open
	request, err := f.usecase.Get(ctx, first.RequestID)
	require.NoError(t, err)
	require.False(t, request.Finalized())
	require.Equal(t, int64(0), f.mustBalance(t, testReceiver).Int64())
	require.Equal(t, int64(3000), f.mustBalance(t, testEscrow).Int64())
}

func TestSettlement_CompleteRequiresAttestation(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()

	resp, err := f.usecase.Initiate(ctx, initiateInput("1000"))
	require.NoError(t, err)

	_, err = f.usecase.Complete(ctx, &entities.CompleteBridgeInput{
		RequestID: resp.RequestID,
		TxHash:    resp.TxHash,
	})
	require.ErrorIs(t, err, domainerrors.ErrInsufficientSignatures)
}

func TestSettlement_WindowExclusivity(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()

	// inside the window: cancel refused, complete window open
	resp, err := f.usecase.Initiate(ctx, initiateInput("1000"))
	require.NoError(t, err)
	_, err = f.usecase.Cancel(ctx, &entities.CancelBridgeInput{RequestID: resp.RequestID, Sender: testSender})
	require.ErrorIs(t, err, domainerrors.ErrWindowNotElapsed)

	// collapse the window: complete refused, cancel allowed
	f.setTimeout(t, time.Nanosecond)
	time.Sleep(time.Millisecond)

	_, err = f.usecase.Complete(ctx, &entities.CompleteBridgeInput{
		RequestID:   resp.RequestID,
		TxHash:      resp.TxHash,
		MerkleProof: []string{},
	})
	require.ErrorIs(t, err, domainerrors.ErrExpiredWindow)

	cancelled, err := f.usecase.Cancel(ctx, &entities.CancelBridgeInput{RequestID: resp.RequestID, Sender: testSender})
	require.NoError(t, err)
	require.Equal(t, entities.RequestStatusCancelled, cancelled.Status)

	// full gross refund, fee included; escrow drained
	require.Equal(t, int64(1000000), f.mustBalance(t, testSender).Int64())
	require.Equal(t, int64(0), f.mustBalance(t, testEscrow).Int64())
	require.Equal(t, int64(0), f.mustBalance(t, testFeeRec).Int64())

	stats, err := f.usecase.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(0), stats.PendingTransactions)
	require.Equal(t, int64(1), stats.CancelledTransactions)
}

func TestSettlement_CancelOnlySender(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()
	f.setTimeout(t, time.Nanosecond)

	resp, err := f.usecase.Initiate(ctx, initiateInput("1000"))
	require.NoError(t, err)
	time.Sleep(time.Millisecond)

	_, err = f.usecase.Cancel(ctx, &entities.CancelBridgeInput{RequestID: resp.RequestID, Sender: testReceiver})
	require.ErrorIs(t, err, domainerrors.ErrNotSender)

	_, err = f.usecase.Cancel(ctx, &entities.CancelBridgeInput{RequestID: 999, Sender: testSender})
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestSettlement_TokenConfigFeeAndVolume(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()

	enabled := true
	_, err := f.registry.Upsert(ctx, &entities.UpsertTokenConfigInput{
		Token:          testToken,
		Symbol:         "USDX",
		Enabled:        &enabled,
		MinAmount:      "100",
		MaxAmount:      "100000",
		MaxDailyVolume: "2500",
		FeeRateBps:     200, // 2%
		MinFee:         "5",
		MaxFee:         "500",
	})
	require.NoError(t, err)

	resp, err := f.usecase.Initiate(ctx, initiateInput("1000"))
	require.NoError(t, err)
	require.Equal(t, "20", resp.Fee)
	require.Equal(t, "980", resp.Amount)

	cfg, err := f.tokens.GetByToken(ctx, testToken)
	require.NoError(t, err)
	require.Equal(t, "1000", cfg.DailyVolume, "volume committed at initiate")

	// second transfer fits; third exceeds the daily cap
	_, err = f.usecase.Initiate(ctx, initiateInput("1000"))
	require.NoError(t, err)
	_, err = f.usecase.Initiate(ctx, initiateInput("1000"))
	require.ErrorIs(t, err, domainerrors.ErrVolumeExceeded)

	// per-transaction bounds
	_, err = f.usecase.Initiate(ctx, initiateInput("50"))
	require.ErrorIs(t, err, domainerrors.ErrBelowMinimum)
}

func TestSettlement_StatisticsCommitAtComplete(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()

	enabled := true
	_, err := f.registry.Upsert(ctx, &entities.UpsertTokenConfigInput{
		Token:          testToken,
		Enabled:        &enabled,
		MinAmount:      "1",
		MaxAmount:      "100000",
		MaxDailyVolume: "1000000",
		FeeRateBps:     100,
		MinFee:         "0",
		MaxFee:         "1000",
	})
	require.NoError(t, err)

	resp, err := f.usecase.Initiate(ctx, initiateInput("1000"))
	require.NoError(t, err)

	cfg, err := f.tokens.GetByToken(ctx, testToken)
	require.NoError(t, err)
	require.Equal(t, int64(0), cfg.TransactionCount, "statistics wait for settlement")

	root, proofs, err := BuildMerkleTree([]string{resp.TxHash, otherCommitment})
	require.NoError(t, err)
	require.NoError(t, f.validator.SetMerkleRoot(ctx, &entities.SetMerkleRootInput{
		ChainID: 137, Root: root, ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}))
	_, err = f.usecase.Complete(ctx, &entities.CompleteBridgeInput{
		RequestID:   resp.RequestID,
		TxHash:      resp.TxHash,
		MerkleProof: proofs[resp.TxHash],
	})
	require.NoError(t, err)

	cfg, err = f.tokens.GetByToken(ctx, testToken)
	require.NoError(t, err)
	require.Equal(t, int64(1), cfg.TransactionCount)
	require.Equal(t, "990", cfg.TotalTransferred)
	require.Equal(t, "10", cfg.TotalFeesCollected)
	require.Equal(t, "990", cfg.AverageTransactionValue)
	require.Equal(t, int64(BpsDenominator), cfg.SuccessRateBps)
}

func TestSettlement_ConcurrentInitiatesAggregateStats(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()

	require.NoError(t, f.validator.Add(ctx, &entities.AddValidatorInput{Address: "0x1111111111111111111111111111111111111111"}))
	require.NoError(t, f.validator.Add(ctx, &entities.AddValidatorInput{Address: "0x2222222222222222222222222222222222222222"}))

	// widen the read-modify-write window so lost updates would surface
	f.settings.getDelay = 3 * time.Millisecond

	const workers = 8
	tokens := make([]string, workers)
	for i := range tokens {
		tokens[i] = fmt.Sprintf("0xtoken%02d", i)
		require.NoError(t, f.chains.Create(ctx, &entities.ChainConfig{
			ChainID:        uint64(200 + i),
			Name:           fmt.Sprintf("chain-%d", 200+i),
			Enabled:        true,
			MinAmount:      "1",
			MaxAmount:      "100000000",
			DailyVolume:    "0",
			MaxDailyVolume: "500000000",
			LastResetTime:  time.Now(),
		}))
		require.NoError(t, f.balances.Mint(ctx, tokens[i], testSender, "10000"))
	}

	// transfers on disjoint tokens and chains race only on the shared
	// counters; an admin threshold raise runs alongside them
	var wg sync.WaitGroup
	errs := make(chan error, workers+1)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := initiateInput("1000")
			in.Token = tokens[i]
			in.ChainID = uint64(200 + i)
			in.DestChainID = in.ChainID
			_, err := f.usecase.Initiate(ctx, in)
			errs <- err
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		errs <- f.validator.SetThreshold(ctx, 2)
	}()
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stats, err := f.usecase.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(workers), stats.TotalTransactions)
	require.Equal(t, int64(workers), stats.PendingTransactions)
	require.Equal(t, "8000", stats.TotalVolume)

	// the settlement writes never touched the attestation columns
	settings, err := f.settings.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), settings.Threshold)
	require.Equal(t, int64(2), settings.ValidatorCount)
}

func TestSettlement_ListAndGet(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()

	first, err := f.usecase.Initiate(ctx, initiateInput("1000"))
	require.NoError(t, err)
	_, err = f.usecase.Initiate(ctx, initiateInput("2000"))
	require.NoError(t, err)

	request, err := f.usecase.Get(ctx, first.RequestID)
	require.NoError(t, err)
	require.Equal(t, first.TxHash, request.TxHash)

	created := entities.RequestStatusCreated
	items, total, err := f.usecase.List(ctx, &created, utils.GetPaginationParams(1, 10))
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, items, 2)
}
