package moderation

import (
	"testing"

	"voart-api/internal/models"
	"voart-api/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupVerification(t *testing.T) (*VerificationSystem, *UserManagement, *store.MemoryStore) {
	t.Helper()
	kv := store.NewMemoryStore()
	log := newTestLogger(t)
	users := NewUserManagement(kv, log)
	v := NewVerificationSystem(kv, users, log)
	_, err := users.UpsertUser(alice, "alice")
	require.NoError(t, err)
	return v, users, kv
}

func submitRequest(t *testing.T, v *VerificationSystem, kv *store.MemoryStore) string {
	t.Helper()
	res, err := v.SubmitRequest("user", alice, "please verify")
	require.NoError(t, err)
	require.True(t, res.Success)

	var requests []models.VerificationRequest
	require.NoError(t, kv.Get(store.KeyVerificationRequests, &requests))
	require.Len(t, requests, 1)
	return requests[0].ID
}

func TestSubmitRequestValidation(t *testing.T) {
	v, _, _ := setupVerification(t)

	res, err := v.SubmitRequest("dao", alice, "")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, KindInvalidInput, res.Kind)
}

func TestDuplicatePendingRequestRejected(t *testing.T) {
	v, _, kv := setupVerification(t)
	submitRequest(t, v, kv)

	res, err := v.SubmitRequest("user", alice, "again")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, KindAlreadyInState, res.Kind)
}

func TestApproveRequestVerifiesUser(t *testing.T) {
	v, _, kv := setupVerification(t)
	id := submitRequest(t, v, kv)

	res, err := v.ApproveRequest(id, admin)
	require.NoError(t, err)
	assert.True(t, res.Success)

	var records []models.UserRecord
	require.NoError(t, kv.Get(store.KeyUsers, &records))
	assert.True(t, records[0].IsVerified)

	// Approving again fails: the request is no longer pending.
	res, err = v.ApproveRequest(id, admin)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, KindAlreadyInState, res.Kind)

	pending, err := v.PendingRequests()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRejectRequest(t *testing.T) {
	v, _, kv := setupVerification(t)
	id := submitRequest(t, v, kv)

	res, err := v.RejectRequest(id, admin, "insufficient history")
	require.NoError(t, err)
	assert.True(t, res.Success)

	var requests []models.VerificationRequest
	require.NoError(t, kv.Get(store.KeyVerificationRequests, &requests))
	assert.Equal(t, models.VerificationRejected, requests[0].Status)
	assert.Equal(t, "insufficient history", requests[0].Reason)
}

func TestRevokeVerification(t *testing.T) {
	v, _, kv := setupVerification(t)
	id := submitRequest(t, v, kv)

	_, err := v.ApproveRequest(id, admin)
	require.NoError(t, err)

	res, err := v.RevokeVerification(alice, admin)
	require.NoError(t, err)
	assert.True(t, res.Success)

	var records []models.UserRecord
	require.NoError(t, kv.Get(store.KeyUsers, &records))
	assert.False(t, records[0].IsVerified)

	// Revoked users go back to unverified, not back to pending.
	pending, err := v.PendingRequests()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestApproveUnknownRequest(t *testing.T) {
	v, _, _ := setupVerification(t)

	res, err := v.ApproveRequest("no-such-id", admin)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, KindNotFound, res.Kind)
}
