package usecases

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// merkleLeaf hashes a commitment into its tree leaf
func merkleLeaf(commitment string) ([]byte, error) {
	raw, err := hexutil.Decode(commitment)
	if err != nil {
		return nil, err
	}
	return crypto.Keccak256(raw), nil
}

// hashPair combines two nodes in sorted order, so proofs need no
// left/right direction flags.
func hashPair(a, b []byte) []byte {
	if bytes.Compare(a, b) > 0 {
		a, b = b, a
	}
	return crypto.Keccak256(a, b)
}

// VerifyMerkleProof checks membership of a commitment against a registered
// root using a sorted-pair keccak tree.
func VerifyMerkleProof(commitment string, proof []string, root string) bool {
	node, err := merkleLeaf(commitment)
	if err != nil {
		return false
	}
	for _, sibling := range proof {
		raw, err := hexutil.Decode(sibling)
		if err != nil {
			return false
		}
		node = hashPair(node, raw)
	}
	expected, err := hexutil.Decode(root)
	if err != nil {
		return false
	}
	return bytes.Equal(node, expected)
}

// BuildMerkleTree computes the root and per-leaf proofs for a batch of
// commitments. Odd nodes are promoted unhashed. Exposed for relayer tooling
// and tests.
func BuildMerkleTree(commitments []string) (string, map[string][]string, error) {
	if len(commitments) == 0 {
		return "", nil, nil
	}

	level := make([][]byte, 0, len(commitments))
	proofs := make(map[string][]string, len(commitments))
	index := make(map[int]string, len(commitments))
	for i, c := range commitments {
		leaf, err := merkleLeaf(c)
		if err != nil {
			return "", nil, err
		}
		level = append(level, leaf)
		index[i] = c
		proofs[c] = nil
	}

	positions := make([]int, len(level))
	for i := range positions {
		positions[i] = i
	}

	for len(level) > 1 {
		next := make([][]byte, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				next = append(next, level[i])
				continue
			}
			for leafIdx, pos := range positions {
				if pos == i {
					proofs[index[leafIdx]] = append(proofs[index[leafIdx]], hexutil.Encode(level[i+1]))
				} else if pos == i+1 {
					proofs[index[leafIdx]] = append(proofs[index[leafIdx]], hexutil.Encode(level[i]))
				}
			}
			next = append(next, hashPair(level[i], level[i+1]))
		}
		for leafIdx, pos := range positions {
			positions[leafIdx] = pos / 2
		}
		level = next
	}
	return hexutil.Encode(level[0]), proofs, nil
}
