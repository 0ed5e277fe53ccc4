package operations

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/nestkey/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{common.ErrInvalidPin, CodeInvalidPin},
		{fmt.Errorf("create: %w", common.ErrPinAlreadySet), CodePinAlreadySet},
		{common.ErrPinNotSet, CodePinNotSet},
		{common.ErrAuthFailed, CodeAuthFailed},
		{common.ErrCorruptVerifier, CodeAuthFailed},
		{common.ErrLocked, CodeLocked},
		{fmt.Errorf("%w: %w", common.ErrDecryptionFailed, common.ErrIntegrity), CodeDecryptionFailed},
		{common.ErrIntegrity, CodeDecryptionFailed},
		{fmt.Errorf("%w: %w", common.ErrCorruptVault, common.ErrMalformedBlob), CodeCorruptVault},
		{common.ErrNotFound, CodeNotFound},
		{common.ErrNoCharsetSelected, CodeNoCharset},
		{common.ErrInvalidTheme, CodeInvalidTheme},
		{fmt.Errorf("%w: disk full", common.ErrIO), CodeIO},
		{errors.New("something odd"), CodeInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CodeOf(tt.err), "err %v", tt.err)
	}
}

func TestResult_Err(t *testing.T) {
	assert.NoError(t, Result{Success: true}.Err())

	for code, sentinel := range sentinels {
		err := Result{Code: code, Error: "boom"}.Err()
		require.Error(t, err)
		assert.ErrorIs(t, err, sentinel, "code %s", code)
		assert.Equal(t, "boom", err.Error())
	}

	err := Result{}.Err()
	assert.ErrorIs(t, err, common.ErrInternal)
	assert.Equal(t, CodeInternal, err.Error())

	err = Result{Code: "from_the_future"}.Err()
	assert.ErrorIs(t, err, common.ErrInternal)
}

func TestFailure_RoundTrip(t *testing.T) {
	res := Failure(fmt.Errorf("entry 42: %w", common.ErrNotFound))

	assert.False(t, res.Success)
	assert.Equal(t, CodeNotFound, res.Code)
	assert.Equal(t, "entry 42: not found", res.Error)
	assert.ErrorIs(t, res.Err(), common.ErrNotFound)
}

func TestResult_JSONShape(t *testing.T) {
	b, err := json.Marshal(Result{Success: true, IsSet: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"isSet":true}`, string(b))

	b, err = json.Marshal(Result{Success: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"isSet":false}`, string(b))

	b, err = json.Marshal(Failure(common.ErrLocked))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"vault is locked","code":"locked","isSet":false}`, string(b))
}

func TestUnlocksLocks(t *testing.T) {
	assert.True(t, Unlocks(PinCreate{}))
	assert.True(t, Unlocks(PinVerify{}))
	assert.True(t, Unlocks(PinChange{}))
	assert.False(t, Unlocks(VaultGet{}))

	assert.True(t, Locks(Lock{}))
	assert.True(t, Locks(VaultWipe{}))
	assert.False(t, Locks(PinVerify{}))
}
