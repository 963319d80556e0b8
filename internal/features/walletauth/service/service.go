package service

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	apperrors "airdrop-auth-backend/internal/common/errors"
	"airdrop-auth-backend/internal/common/logger"
	sessionmodels "airdrop-auth-backend/internal/features/session/models"
	sessionservice "airdrop-auth-backend/internal/features/session/service"
	usermodels "airdrop-auth-backend/internal/features/user/models"
)

// LoginChallenge is the fixed message the wallet signs. The frontend must
// present exactly these bytes; any drift breaks verification.
const LoginChallenge = "Welcome to AFA Web3Tool!\n\n" +
	"Sign this message to prove you own this wallet and log in.\n" +
	"This request will not trigger a blockchain transaction or cost any gas."

// erc1271Magic is the isValidSignature(bytes32,bytes) selector, which is
// also the magic value a contract wallet returns on success.
var erc1271Magic = [4]byte{0x16, 0x26, 0xba, 0x7e}

// ContractBackend is the single RPC call ERC-1271 validation needs.
// *ethclient.Client satisfies it.
type ContractBackend interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// BackendSource resolves a chain id to an RPC backend. It must return an
// error for chain ids that have no configured endpoint.
type BackendSource func(ctx context.Context, chainID int64) (ContractBackend, error)

type UserResolver interface {
	ResolveByAddress(ctx context.Context, address string) (*usermodels.User, bool, error)
}

type SessionIssuer interface {
	Issue(ctx context.Context, user *usermodels.User, method string) (*sessionmodels.Session, error)
}

type Service struct {
	users    UserResolver
	sessions SessionIssuer
	backends BackendSource
}

func NewService(users UserResolver, sessions SessionIssuer, backends BackendSource) *Service {
	return &Service{users: users, sessions: sessions, backends: backends}
}

// Login verifies the signature over the fixed challenge and issues a wallet
// session, creating the user on first login.
func (s *Service) Login(ctx context.Context, address, signature string, chainID int64) (*sessionmodels.Session, error) {
	if !common.IsHexAddress(address) {
		return nil, apperrors.NewValidationError("invalid wallet address")
	}

	valid, err := s.Verify(ctx, address, LoginChallenge, signature, chainID)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, apperrors.New(apperrors.ErrCodeInvalidSignature, "signature verification failed")
	}

	user, created, err := s.users.ResolveByAddress(ctx, address)
	if err != nil {
		return nil, err
	}
	if created {
		logger.Info().Str("user_id", user.ID).Str("address", user.Address).Msg("new wallet user")
	}
	return s.sessions.Issue(ctx, user, sessionservice.MethodWallet)
}

// Verify checks that signature was produced over exactly message by the key
// behind claimedAddress. EOA recovery is tried first; when it does not
// match, the claimed address is consulted on-chain per ERC-1271. RPC errors
// count as verification failure, never as success.
func (s *Service) Verify(ctx context.Context, claimedAddress, message, signature string, chainID int64) (bool, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil || len(sig) != 65 {
		return false, nil
	}

	// No normalization of the message. The hash covers the exact bytes the
	// client claims to have signed.
	digest := personalHash([]byte(message))

	recovered := make([]byte, 65)
	copy(recovered, sig)
	if recovered[64] >= 27 {
		recovered[64] -= 27
	}
	if pub, err := crypto.SigToPub(digest, recovered); err == nil {
		if strings.EqualFold(crypto.PubkeyToAddress(*pub).Hex(), claimedAddress) {
			return true, nil
		}
	}

	return s.verifyContractSignature(ctx, common.HexToAddress(claimedAddress), digest, sig, chainID)
}

// verifyContractSignature calls isValidSignature on the claimed address.
// A missing RPC configuration for the chain is a configuration error; a
// failing RPC call fails closed.
func (s *Service) verifyContractSignature(ctx context.Context, wallet common.Address, digest, sig []byte, chainID int64) (bool, error) {
	backend, err := s.backends(ctx, chainID)
	if err != nil {
		return false, apperrors.NewConfigurationError(fmt.Sprintf("unsupported chain id %d", chainID))
	}

	data := encodeIsValidSignature(digest, sig)
	result, err := backend.CallContract(ctx, ethereum.CallMsg{To: &wallet, Data: data}, nil)
	if err != nil {
		logger.Warn().Err(err).Int64("chain_id", chainID).Str("wallet", wallet.Hex()).
			Msg("ERC-1271 call failed, treating signature as invalid")
		return false, nil
	}
	return len(result) >= 4 && bytes.Equal(result[:4], erc1271Magic[:]), nil
}

// encodeIsValidSignature builds calldata for isValidSignature(bytes32,bytes).
func encodeIsValidSignature(digest, sig []byte) []byte {
	data := make([]byte, 0, 4+32+32+32+len(sig)+32)
	data = append(data, erc1271Magic[:]...)
	data = append(data, common.LeftPadBytes(digest, 32)...)
	// offset of the bytes argument, then its length, then the padded bytes
	data = append(data, common.LeftPadBytes(big.NewInt(64).Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(big.NewInt(int64(len(sig))).Bytes(), 32)...)
	data = append(data, common.RightPadBytes(sig, (len(sig)+31)/32*32)...)
	return data
}

// personalHash applies the EIP-191 personal-message prefix before hashing.
func personalHash(message []byte) []byte {
	prefix := fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(message))
	return crypto.Keccak256([]byte(prefix), message)
}
