package service

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "airdrop-auth-backend/internal/common/errors"
	"airdrop-auth-backend/internal/features/mintsign/repository/memory"
)

const testTag = "AFA-MINT"

func newSigner(t *testing.T) (*Service, *memory.NonceStore, common.Address) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	nonces := memory.NewNonceStore()
	svc, err := NewService(nonces, map[int64]string{
		10: hex.EncodeToString(crypto.FromECDSA(key)),
	}, testTag)
	require.NoError(t, err)
	return svc, nonces, crypto.PubkeyToAddress(key.PublicKey)
}

// recoverSigner undoes the Solidity V offset and recovers the address that
// produced the signature over digest.
func recoverSigner(t *testing.T, digest []byte, signature string) common.Address {
	t.Helper()
	sig, err := hexutil.Decode(signature)
	require.NoError(t, err)
	require.Len(t, sig, 65)
	require.GreaterOrEqual(t, sig[64], byte(27))

	sig[64] -= 27
	pub, err := crypto.SigToPub(digest, sig)
	require.NoError(t, err)
	return crypto.PubkeyToAddress(*pub)
}

func TestSignRecoversToChainSigner(t *testing.T) {
	svc, _, signer := newSigner(t)
	wallet := common.HexToAddress("0x8ba1f109551bD432803012645Ac136ddd64DBa72")

	signature, err := svc.Sign(context.Background(), "user-1", wallet.Hex(), wallet.Hex(), 10)
	require.NoError(t, err)

	digest := MintDigest(testTag, wallet, 0)
	assert.Equal(t, signer, recoverSigner(t, digest, signature))
}

func TestSignReadsNonceFresh(t *testing.T) {
	svc, nonces, signer := newSigner(t)
	wallet := common.HexToAddress("0x8ba1f109551bD432803012645Ac136ddd64DBa72")
	ctx := context.Background()

	first, err := svc.Sign(ctx, "user-1", wallet.Hex(), wallet.Hex(), 10)
	require.NoError(t, err)
	assert.Equal(t, signer, recoverSigner(t, MintDigest(testTag, wallet, 0), first))

	// A confirmed mint bumps the nonce; the next signature must cover it.
	nonces.Set("user-1", 10, 1)
	second, err := svc.Sign(ctx, "user-1", wallet.Hex(), wallet.Hex(), 10)
	require.NoError(t, err)
	assert.Equal(t, signer, recoverSigner(t, MintDigest(testTag, wallet, 1), second))

	// The stale digest no longer recovers to the signer.
	assert.NotEqual(t, signer, recoverSigner(t, MintDigest(testTag, wallet, 0), second))
	assert.Equal(t, 2, nonces.Reads())
}

func TestSignAddressMismatchRejected(t *testing.T) {
	svc, nonces, _ := newSigner(t)
	session := "0x8ba1f109551bD432803012645Ac136ddd64DBa72"
	other := "0x0000000000000000000000000000000000000001"

	_, err := svc.Sign(context.Background(), "user-1", session, other, 10)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeForbidden, appErr.Code)
	// Rejected before any nonce read or signing.
	assert.Equal(t, 0, nonces.Reads())
}

func TestSignSessionWithoutWallet(t *testing.T) {
	svc, _, _ := newSigner(t)
	wallet := "0x8ba1f109551bD432803012645Ac136ddd64DBa72"

	_, err := svc.Sign(context.Background(), "user-1", "", wallet, 10)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeForbidden, appErr.Code)
}

func TestSignAddressCaseInsensitive(t *testing.T) {
	svc, _, signer := newSigner(t)
	wallet := common.HexToAddress("0x8ba1f109551bD432803012645Ac136ddd64DBa72")

	signature, err := svc.Sign(context.Background(), "user-1",
		"0x8ba1f109551bd432803012645ac136ddd64dba72", wallet.Hex(), 10)
	require.NoError(t, err)
	assert.Equal(t, signer, recoverSigner(t, MintDigest(testTag, wallet, 0), signature))
}

func TestSignUnknownChain(t *testing.T) {
	svc, _, _ := newSigner(t)
	wallet := "0x8ba1f109551bD432803012645Ac136ddd64DBa72"

	_, err := svc.Sign(context.Background(), "user-1", wallet, wallet, 999)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeConfiguration, appErr.Code)
}

func TestSignInvalidAddress(t *testing.T) {
	svc, _, _ := newSigner(t)

	_, err := svc.Sign(context.Background(), "user-1", "0xabc", "not-an-address", 10)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)
}

func TestNewServiceRejectsMalformedKey(t *testing.T) {
	_, err := NewService(memory.NewNonceStore(), map[int64]string{10: "zz"}, testTag)
	assert.Error(t, err)
}

func TestMintDigestIsDeterministic(t *testing.T) {
	wallet := common.HexToAddress("0x8ba1f109551bD432803012645Ac136ddd64DBa72")

	assert.Equal(t, MintDigest(testTag, wallet, 7), MintDigest(testTag, wallet, 7))
	assert.NotEqual(t, MintDigest(testTag, wallet, 7), MintDigest(testTag, wallet, 8))
	assert.NotEqual(t, MintDigest(testTag, wallet, 7), MintDigest("OTHER", wallet, 7))
}
