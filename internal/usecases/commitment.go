package usecases

import (
	"encoding/binary"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	domainerrors "chain-bridge.backend/internal/domain/errors"
	"chain-bridge.backend/pkg/utils"
)

// ComputeCommitment derives the transfer fingerprint registered as txHash.
// It binds the immutable request fields at creation time; completion
// recomputes it over the stored record to detect tampering. The amount is
// the net (post-fee) amount, matching what the ledger stores.
func ComputeCommitment(sender, receiver, token, amount string, chainID uint64, timestamp time.Time) (string, error) {
	value, err := utils.ParseAmount(amount)
	if err != nil {
		return "", domainerrors.ErrInvalidAmount
	}

	var chainBuf, timeBuf [8]byte
	binary.BigEndian.PutUint64(chainBuf[:], chainID)
	binary.BigEndian.PutUint64(timeBuf[:], uint64(timestamp.Unix()))

	hash := crypto.Keccak256(
		[]byte(strings.ToLower(sender)),
		[]byte(strings.ToLower(receiver)),
		[]byte(strings.ToLower(token)),
		common.LeftPadBytes(value.Bytes(), 32),
		chainBuf[:],
		timeBuf[:],
	)
	return hexutil.Encode(hash), nil
}

// RecoverSigner recovers the signing address from a 65-byte signature over
// the Ethereum-prefixed commitment hash.
func RecoverSigner(commitment string, signature string) (string, error) {
	digest, err := hexutil.Decode(commitment)
	if err != nil || len(digest) != 32 {
		return "", domainerrors.ErrUnknownCommitment
	}
	sig, err := hexutil.Decode(signature)
	if err != nil || len(sig) != crypto.SignatureLength {
		return "", domainerrors.ErrInsufficientSignatures
	}

	// Normalize the recovery id: on-chain tooling emits V as 27/28.
	recovered := make([]byte, crypto.SignatureLength)
	copy(recovered, sig)
	if recovered[64] >= 27 {
		recovered[64] -= 27
	}

	prefixed := accountsTextHash(digest)
	pub, err := crypto.SigToPub(prefixed, recovered)
	if err != nil {
		return "", domainerrors.ErrInsufficientSignatures
	}
	return strings.ToLower(crypto.PubkeyToAddress(*pub).Hex()), nil
}

// accountsTextHash applies the eth_sign personal-message prefix
func accountsTextHash(data []byte) []byte {
	msg := append([]byte("\x19Ethereum Signed Message:\n32"), data...)
	return crypto.Keccak256(msg)
}

// SignCommitment signs a commitment with a raw secp256k1 private key.
// Used by relayer tooling and tests; the settlement path only verifies.
func SignCommitment(commitment string, keyHex string) (string, error) {
	digest, err := hexutil.Decode(commitment)
	if err != nil || len(digest) != 32 {
		return "", domainerrors.ErrUnknownCommitment
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(keyHex, "0x"))
	if err != nil {
		return "", err
	}
	sig, err := crypto.Sign(accountsTextHash(digest), key)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(sig), nil
}

// parseBigAmount is a thin wrapper mapping parse failures onto the domain
// validation error.
func parseBigAmount(amount string) (*big.Int, error) {
	value, err := utils.ParseAmount(amount)
	if err != nil {
		return nil, domainerrors.ErrInvalidAmount
	}
	return value, nil
}
