package service

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	apperrors "airdrop-auth-backend/internal/common/errors"
	"airdrop-auth-backend/internal/common/logger"
	"airdrop-auth-backend/internal/features/mintsign/repository"
)

// Service issues single-use mint authorizations: a signature over
// (tag, address, nonce) that the mint contract verifies on-chain. Each
// chain has its own dedicated signer key.
type Service struct {
	nonces repository.NonceStore
	keys   map[int64]*ecdsa.PrivateKey
	tag    string
}

// NewService parses the per-chain signer keys up front so a malformed key
// fails the boot, not the first signing request.
func NewService(nonces repository.NonceStore, signerKeys map[int64]string, tag string) (*Service, error) {
	keys := make(map[int64]*ecdsa.PrivateKey, len(signerKeys))
	for chainID, hexKey := range signerKeys {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid signer key for chain %d: %w", chainID, err)
		}
		keys[chainID] = key
	}
	return &Service{nonces: nonces, keys: keys, tag: tag}, nil
}

// Sign authorizes a mint for the caller. The requested address must match
// the session's linked wallet, checked before anything is signed, and the
// nonce is re-read from the store at every call so an intercepted signature
// dies on-chain after the next confirmed mint.
func (s *Service) Sign(ctx context.Context, userID, sessionAddress, requestedAddress string, chainID int64) (string, error) {
	if !common.IsHexAddress(requestedAddress) {
		return "", apperrors.NewValidationError("invalid wallet address")
	}
	if sessionAddress == "" {
		return "", apperrors.NewForbiddenError("session has no linked wallet")
	}
	if !strings.EqualFold(sessionAddress, requestedAddress) {
		return "", apperrors.NewForbiddenError("address does not match the authenticated wallet")
	}

	key, ok := s.keys[chainID]
	if !ok {
		return "", apperrors.NewConfigurationError(fmt.Sprintf("no mint signer configured for chain %d", chainID))
	}

	nonce, err := s.nonces.Get(ctx, userID, chainID)
	if err != nil {
		return "", apperrors.NewDatabaseError("read mint nonce", err)
	}

	digest := MintDigest(s.tag, common.HexToAddress(requestedAddress), nonce)
	sig, err := crypto.Sign(digest, key)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to sign mint authorization")
	}
	// Solidity's ecrecover expects V in {27, 28}.
	sig[64] += 27

	logger.Info().
		Str("user_id", userID).
		Int64("chain_id", chainID).
		Uint64("nonce", nonce).
		Msg("mint authorization signed")
	return hexutil.Encode(sig), nil
}

// MintDigest computes the digest the contract recomputes on-chain:
// keccak256(abi.encodePacked(tag, address, uint256(nonce))) wrapped in the
// EIP-191 signed-message prefix. Field order and widths must stay in
// lockstep with the contract.
func MintDigest(tag string, address common.Address, nonce uint64) []byte {
	packed := crypto.Keccak256(
		[]byte(tag),
		address.Bytes(),
		common.LeftPadBytes(new(big.Int).SetUint64(nonce).Bytes(), 32),
	)
	return crypto.Keccak256([]byte("\x19Ethereum Signed Message:\n32"), packed)
}
