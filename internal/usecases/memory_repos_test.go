package usecases

import (
	"context"
	"math/big"
	"sort"
	"strings"
	"sync"
	"time"

	"chain-bridge.backend/internal/domain/entities"
	domainerrors "chain-bridge.backend/internal/domain/errors"
	"chain-bridge.backend/pkg/utils"
)

// In-memory repository fixtures. They mirror the semantics the gorm
// implementations provide (monotonic ids, unique tx_hash, not-found
// sentinels) so usecase tests run without a database.

type uowMem struct{}

func (u *uowMem) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type bridgeRequestRepoMem struct {
	mu     sync.Mutex
	nextID uint64
	byID   map[uint64]*entities.BridgeRequest
	byHash map[string]uint64
}

func newBridgeRequestRepoMem() *bridgeRequestRepoMem {
	return &bridgeRequestRepoMem{
		byID:   make(map[uint64]*entities.BridgeRequest),
		byHash: make(map[string]uint64),
	}
}

func (r *bridgeRequestRepoMem) Create(_ context.Context, request *entities.BridgeRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.byHash[request.TxHash]; dup {
		return domainerrors.ErrReplayedTxHash
	}
	r.nextID++
	request.RequestID = r.nextID
	clone := *request
	r.byID[request.RequestID] = &clone
	r.byHash[request.TxHash] = request.RequestID
	return nil
}

func (r *bridgeRequestRepoMem) GetByID(_ context.Context, requestID uint64) (*entities.BridgeRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[requestID]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	clone := *stored
	return &clone, nil
}

func (r *bridgeRequestRepoMem) GetByTxHash(_ context.Context, txHash string) (*entities.BridgeRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byHash[txHash]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	clone := *r.byID[id]
	return &clone, nil
}

func (r *bridgeRequestRepoMem) TxHashSeen(_ context.Context, txHash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byHash[txHash]
	return ok, nil
}

func (r *bridgeRequestRepoMem) finalize(requestID uint64, status entities.RequestStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[requestID]
	if !ok {
		return domainerrors.ErrNotFound
	}
	if stored.Status != entities.RequestStatusCreated {
		return domainerrors.ErrAlreadyFinalized
	}
	stored.Status = status
	stored.CompletedAt.SetValid(time.Now())
	return nil
}

func (r *bridgeRequestRepoMem) MarkCompleted(_ context.Context, requestID uint64) error {
	return r.finalize(requestID, entities.RequestStatusCompleted)
}

func (r *bridgeRequestRepoMem) MarkCancelled(_ context.Context, requestID uint64) error {
	return r.finalize(requestID, entities.RequestStatusCancelled)
}

func (r *bridgeRequestRepoMem) List(_ context.Context, status *entities.RequestStatus, pagination utils.PaginationParams) ([]*entities.BridgeRequest, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*entities.BridgeRequest
	for _, stored := range r.byID {
		if status != nil && stored.Status != *status {
			continue
		}
		clone := *stored
		items = append(items, &clone)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].RequestID > items[j].RequestID })
	total := int64(len(items))
	if pagination.Limit > 0 {
		offset := pagination.CalculateOffset()
		if offset > len(items) {
			offset = len(items)
		}
		end := offset + pagination.Limit
		if end > len(items) {
			end = len(items)
		}
		items = items[offset:end]
	}
	return items, total, nil
}

type chainRepoMem struct {
	mu    sync.Mutex
	items map[uint64]*entities.ChainConfig
}

func newChainRepoMem() *chainRepoMem {
	return &chainRepoMem{items: make(map[uint64]*entities.ChainConfig)}
}

func (r *chainRepoMem) GetByChainID(_ context.Context, chainID uint64) (*entities.ChainConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[chainID]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	clone := *stored
	return &clone, nil
}

func (r *chainRepoMem) List(_ context.Context) ([]*entities.ChainConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*entities.ChainConfig
	for _, stored := range r.items {
		clone := *stored
		items = append(items, &clone)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ChainID < items[j].ChainID })
	return items, nil
}

func (r *chainRepoMem) Create(_ context.Context, config *entities.ChainConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *config
	r.items[config.ChainID] = &clone
	return nil
}

func (r *chainRepoMem) Update(_ context.Context, config *entities.ChainConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[config.ChainID]; !ok {
		return domainerrors.ErrNotFound
	}
	clone := *config
	r.items[config.ChainID] = &clone
	return nil
}

func (r *chainRepoMem) UpdateVolume(_ context.Context, chainID uint64, dailyVolume string, lastResetTime time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[chainID]
	if !ok {
		return domainerrors.ErrNotFound
	}
	stored.DailyVolume = dailyVolume
	stored.LastResetTime = lastResetTime
	return nil
}

type tokenRepoMem struct {
	mu    sync.Mutex
	items map[string]*entities.TokenConfig
}

func newTokenRepoMem() *tokenRepoMem {
	return &tokenRepoMem{items: make(map[string]*entities.TokenConfig)}
}

func (r *tokenRepoMem) GetByToken(_ context.Context, token string) (*entities.TokenConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[token]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	clone := *stored
	return &clone, nil
}

func (r *tokenRepoMem) List(_ context.Context) ([]*entities.TokenConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*entities.TokenConfig
	for _, stored := range r.items {
		clone := *stored
		items = append(items, &clone)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Token < items[j].Token })
	return items, nil
}

func (r *tokenRepoMem) Create(_ context.Context, config *entities.TokenConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *config
	r.items[config.Token] = &clone
	return nil
}

func (r *tokenRepoMem) Update(_ context.Context, config *entities.TokenConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[config.Token]; !ok {
		return domainerrors.ErrNotFound
	}
	clone := *config
	r.items[config.Token] = &clone
	return nil
}

func (r *tokenRepoMem) UpdateVolume(_ context.Context, token string, dailyVolume string, lastResetTime time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[token]
	if !ok {
		return domainerrors.ErrNotFound
	}
	stored.DailyVolume = dailyVolume
	stored.LastResetTime = lastResetTime
	return nil
}

func (r *tokenRepoMem) UpdateStats(_ context.Context, config *entities.TokenConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[config.Token]
	if !ok {
		return domainerrors.ErrNotFound
	}
	stored.TotalTransferred = config.TotalTransferred
	stored.TotalFeesCollected = config.TotalFeesCollected
	stored.TransactionCount = config.TransactionCount
	stored.AverageTransactionValue = config.AverageTransactionValue
	stored.CompletedCount = config.CompletedCount
	stored.CancelledCount = config.CancelledCount
	stored.SuccessRateBps = config.SuccessRateBps
	return nil
}

type settingsRepoMem struct {
	mu       sync.Mutex
	settings *entities.BridgeSettings
	// getDelay widens the read-modify-write window in concurrency tests
	getDelay time.Duration
}

func newSettingsRepoMem(settings *entities.BridgeSettings) *settingsRepoMem {
	clone := *settings
	return &settingsRepoMem{settings: &clone}
}

func (r *settingsRepoMem) Get(_ context.Context) (*entities.BridgeSettings, error) {
	if r.getDelay > 0 {
		time.Sleep(r.getDelay)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settings == nil {
		return nil, domainerrors.ErrNotFound
	}
	clone := *r.settings
	return &clone, nil
}

func (r *settingsRepoMem) Update(_ context.Context, settings *entities.BridgeSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settings == nil {
		return domainerrors.ErrNotFound
	}
	r.settings.Enabled = settings.Enabled
	r.settings.TransactionTimeout = settings.TransactionTimeout
	r.settings.FeePercentageBps = settings.FeePercentageBps
	r.settings.MinimumAmount = settings.MinimumAmount
	r.settings.MaximumAmount = settings.MaximumAmount
	r.settings.FeeRecipient = settings.FeeRecipient
	return nil
}

func (r *settingsRepoMem) UpdateStats(_ context.Context, stats *entities.BridgeStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settings == nil {
		return domainerrors.ErrNotFound
	}
	r.settings.Stats = *stats
	return nil
}

func (r *settingsRepoMem) UpdateValidatorSet(_ context.Context, threshold, validatorCount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settings == nil {
		return domainerrors.ErrNotFound
	}
	r.settings.Threshold = threshold
	r.settings.ValidatorCount = validatorCount
	return nil
}

func (r *settingsRepoMem) Seed(_ context.Context, settings *entities.BridgeSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settings == nil {
		clone := *settings
		r.settings = &clone
	}
	return nil
}

type balanceRepoMem struct {
	mu       sync.Mutex
	balances map[string]*big.Int
}

func newBalanceRepoMem() *balanceRepoMem {
	return &balanceRepoMem{balances: make(map[string]*big.Int)}
}

func balanceKey(token, account string) string {
	return token + "|" + strings.ToLower(account)
}

func (r *balanceRepoMem) BalanceOf(_ context.Context, token, account string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.balances[balanceKey(token, account)]; ok {
		return v.String(), nil
	}
	return "0", nil
}

func (r *balanceRepoMem) Transfer(_ context.Context, token, from, to, amount string) error {
	value, err := utils.ParseAmount(amount)
	if err != nil {
		return domainerrors.ErrInvalidAmount
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	src, ok := r.balances[balanceKey(token, from)]
	if !ok || src.Cmp(value) < 0 {
		return domainerrors.ErrInsufficientFunds
	}
	src.Sub(src, value)
	dst, ok := r.balances[balanceKey(token, to)]
	if !ok {
		dst = big.NewInt(0)
		r.balances[balanceKey(token, to)] = dst
	}
	dst.Add(dst, value)
	return nil
}

func (r *balanceRepoMem) Mint(_ context.Context, token, account, amount string) error {
	value, err := utils.ParseAmount(amount)
	if err != nil {
		return domainerrors.ErrInvalidAmount
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	dst, ok := r.balances[balanceKey(token, account)]
	if !ok {
		dst = big.NewInt(0)
		r.balances[balanceKey(token, account)] = dst
	}
	dst.Add(dst, value)
	return nil
}

type dynamicFeeRepoMem struct {
	mu          sync.Mutex
	items       map[uint64]*entities.DynamicFee
	history     map[uint64][]*entities.FeeHistoryEntry
	adjustments map[uint64][]*entities.FeeAdjustment
}

func newDynamicFeeRepoMem() *dynamicFeeRepoMem {
	return &dynamicFeeRepoMem{
		items:       make(map[uint64]*entities.DynamicFee),
		history:     make(map[uint64][]*entities.FeeHistoryEntry),
		adjustments: make(map[uint64][]*entities.FeeAdjustment),
	}
}

func (r *dynamicFeeRepoMem) GetByChainID(_ context.Context, chainID uint64) (*entities.DynamicFee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[chainID]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	clone := *stored
	return &clone, nil
}

func (r *dynamicFeeRepoMem) List(_ context.Context) ([]*entities.DynamicFee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*entities.DynamicFee
	for _, stored := range r.items {
		clone := *stored
		items = append(items, &clone)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ChainID < items[j].ChainID })
	return items, nil
}

func (r *dynamicFeeRepoMem) Create(_ context.Context, fee *entities.DynamicFee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *fee
	r.items[fee.ChainID] = &clone
	return nil
}

func (r *dynamicFeeRepoMem) Update(_ context.Context, fee *entities.DynamicFee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[fee.ChainID]; !ok {
		return domainerrors.ErrNotFound
	}
	clone := *fee
	r.items[fee.ChainID] = &clone
	return nil
}

func (r *dynamicFeeRepoMem) AppendHistory(_ context.Context, entry *entities.FeeHistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *entry
	r.history[entry.ChainID] = append(r.history[entry.ChainID], &clone)
	return nil
}

func (r *dynamicFeeRepoMem) ListHistory(_ context.Context, chainID uint64, limit int) ([]*entities.FeeHistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.history[chainID]
	var items []*entities.FeeHistoryEntry
	for i := len(entries) - 1; i >= 0; i-- {
		clone := *entries[i]
		items = append(items, &clone)
		if limit > 0 && len(items) == limit {
			break
		}
	}
	return items, nil
}

func (r *dynamicFeeRepoMem) CountHistory(_ context.Context, chainID uint64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.history[chainID])), nil
}

func (r *dynamicFeeRepoMem) AppendAdjustment(_ context.Context, adjustment *entities.FeeAdjustment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *adjustment
	r.adjustments[adjustment.ChainID] = append(r.adjustments[adjustment.ChainID], &clone)
	return nil
}

func (r *dynamicFeeRepoMem) ListAdjustments(_ context.Context, chainID uint64, limit int) ([]*entities.FeeAdjustment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.adjustments[chainID]
	var items []*entities.FeeAdjustment
	for i := len(entries) - 1; i >= 0; i-- {
		clone := *entries[i]
		items = append(items, &clone)
		if limit > 0 && len(items) == limit {
			break
		}
	}
	return items, nil
}

type validatorRepoMem struct {
	mu    sync.Mutex
	items map[string]*entities.Validator
}

func newValidatorRepoMem() *validatorRepoMem {
	return &validatorRepoMem{items: make(map[string]*entities.Validator)}
}

func (r *validatorRepoMem) List(_ context.Context) ([]*entities.Validator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*entities.Validator
	for _, stored := range r.items {
		clone := *stored
		items = append(items, &clone)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].AddedAt.Before(items[j].AddedAt) })
	return items, nil
}

func (r *validatorRepoMem) IsValidator(_ context.Context, address string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.items[strings.ToLower(address)]
	return ok, nil
}

func (r *validatorRepoMem) Add(_ context.Context, validator *entities.Validator) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(validator.Address)
	if _, dup := r.items[key]; dup {
		return domainerrors.ErrAlreadyExists
	}
	clone := *validator
	r.items[key] = &clone
	return nil
}

func (r *validatorRepoMem) Remove(_ context.Context, address string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(address)
	if _, ok := r.items[key]; !ok {
		return domainerrors.ErrNotFound
	}
	delete(r.items, key)
	return nil
}

func (r *validatorRepoMem) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.items)), nil
}

type merkleRepoMem struct {
	mu    sync.Mutex
	items map[uint64]*entities.MerkleRoot
}

func newMerkleRepoMem() *merkleRepoMem {
	return &merkleRepoMem{items: make(map[uint64]*entities.MerkleRoot)}
}

func (r *merkleRepoMem) GetByChainID(_ context.Context, chainID uint64) (*entities.MerkleRoot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[chainID]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	clone := *stored
	return &clone, nil
}

func (r *merkleRepoMem) Set(_ context.Context, root *entities.MerkleRoot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *root
	r.items[root.ChainID] = &clone
	return nil
}
