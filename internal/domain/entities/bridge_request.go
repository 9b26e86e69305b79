package entities

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// RequestStatus represents the lifecycle state of a bridge request
type RequestStatus string

const (
	RequestStatusCreated   RequestStatus = "CREATED"
	RequestStatusCompleted RequestStatus = "COMPLETED"
	RequestStatusCancelled RequestStatus = "CANCELLED"
)

// BridgeRequest represents a single cross-chain transfer intent.
// Amount is the net amount owed to the receiver; Fee is gross minus net.
type BridgeRequest struct {
	RequestID     uint64        `json:"requestId"`
	Sender        string        `json:"sender"`
	Receiver      string        `json:"receiver"`
	Token         string        `json:"token"`
	Amount        string        `json:"amount"`
	Fee           string        `json:"fee"`
	SourceChainID uint64        `json:"sourceChainId"`
	DestChainID   uint64        `json:"destinationChainId"`
	ChainID       uint64        `json:"chainId"`
	TxHash        string        `json:"txHash"`
	Timestamp     time.Time     `json:"timestamp"`
	Status        RequestStatus `json:"status"`
	CompletedAt   null.Time     `json:"completedAt,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// Finalized reports whether the request reached a terminal state. No fund
// movement is permitted against a finalized request.
func (r *BridgeRequest) Finalized() bool {
	return r.Status != RequestStatusCreated
}

// CompletableAt reports whether completion is still inside its window.
// The window closes at exactly Timestamp + timeout, the same instant
// cancellation eligibility begins.
func (r *BridgeRequest) CompletableAt(now time.Time, timeout time.Duration) bool {
	return now.Before(r.Timestamp.Add(timeout))
}

// CancellableAt reports whether the timeout window has elapsed.
func (r *BridgeRequest) CancellableAt(now time.Time, timeout time.Duration) bool {
	return !now.Before(r.Timestamp.Add(timeout))
}

// InitiateBridgeInput represents input for initiating a transfer
type InitiateBridgeInput struct {
	Sender        string `json:"sender" binding:"required"`
	Receiver      string `json:"receiver" binding:"required"`
	Token         string `json:"token" binding:"required"`
	Amount        string `json:"amount" binding:"required"`
	ChainID       uint64 `json:"chainId" binding:"required"`
	SourceChainID uint64 `json:"sourceChainId" binding:"required"`
	DestChainID   uint64 `json:"destinationChainId" binding:"required"`
}

// InitiateBridgeResponse represents the response for a successful initiate
type InitiateBridgeResponse struct {
	RequestID uint64        `json:"requestId"`
	TxHash    string        `json:"txHash"`
	Amount    string        `json:"amount"`
	Fee       string        `json:"fee"`
	Status    RequestStatus `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	ExpiresAt time.Time     `json:"expiresAt"`
}

// CompleteBridgeInput carries the completion claim plus its attestation.
// Either Signatures (threshold attestation) or MerkleProof must satisfy
// the validator registry.
type CompleteBridgeInput struct {
	RequestID   uint64   `json:"requestId" binding:"required"`
	TxHash      string   `json:"txHash" binding:"required"`
	Signatures  []string `json:"signatures,omitempty"`
	MerkleProof []string `json:"merkleProof,omitempty"`
}

// CancelBridgeInput represents input for reclaiming a timed-out transfer
type CancelBridgeInput struct {
	RequestID uint64 `json:"requestId" binding:"required"`
	Sender    string `json:"sender" binding:"required"`
}

// BridgeStats holds the aggregate counters owned by the settlement state
// machine. Derived, not independently authoritative: reconcilable by
// replaying ledger events.
type BridgeStats struct {
	TotalTransactions     int64  `json:"totalTransactions"`
	PendingTransactions   int64  `json:"pendingTransactions"`
	CompletedTransactions int64  `json:"completedTransactions"`
	CancelledTransactions int64  `json:"cancelledTransactions"`
	TotalVolume           string `json:"totalVolume"`
	TotalFeesCollected    string `json:"totalFeesCollected"`
}
