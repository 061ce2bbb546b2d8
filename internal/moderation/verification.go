package moderation

import (
	"errors"
	"time"

	"voart-api/internal/models"
	"voart-api/internal/store"
	"voart-api/shared/logger"

	"github.com/google/uuid"
)

var errRequestNotFound = errors.New("request not found")

// VerificationSystem tracks user and collection verification requests.
// Request lifecycle: pending -> approved | rejected. An approved user can be
// revoked, which drops them back to unverified, never back to pending.
type VerificationSystem struct {
	store store.Store
	users *UserManagement
	log   *logger.Logger
}

func NewVerificationSystem(s store.Store, users *UserManagement, log *logger.Logger) *VerificationSystem {
	return &VerificationSystem{store: s, users: users, log: log}
}

// SubmitRequest opens a new pending request. A duplicate pending request for
// the same target fails.
func (v *VerificationSystem) SubmitRequest(reqType, targetID, reason string) (Result, error) {
	if reqType != "user" && reqType != "collection" {
		return fail(KindInvalidInput, "Request type must be user or collection"), nil
	}
	if targetID == "" {
		return fail(KindInvalidInput, "Target id is required"), nil
	}
	id := uuid.NewString()
	var requests []models.VerificationRequest
	err := v.store.Update(store.KeyVerificationRequests, &requests, func() error {
		for _, r := range requests {
			if r.TargetID == targetID && r.Type == reqType && r.Status == models.VerificationPending {
				return errAlreadyInState
			}
		}
		requests = append(requests, models.VerificationRequest{
			ID:        id,
			Type:      reqType,
			TargetID:  targetID,
			Status:    models.VerificationPending,
			Reason:    reason,
			CreatedAt: time.Now().UTC(),
		})
		return nil
	})
	if errors.Is(err, errAlreadyInState) {
		return fail(KindAlreadyInState, "A pending request already exists for %s", targetID), nil
	}
	if err != nil {
		return Result{}, err
	}
	return ok("Verification request %s submitted", id), nil
}

// resolve moves a pending request into a terminal status.
func (v *VerificationSystem) resolve(requestID, status, reason string) (models.VerificationRequest, error) {
	var resolved models.VerificationRequest
	var requests []models.VerificationRequest
	err := v.store.Update(store.KeyVerificationRequests, &requests, func() error {
		for i := range requests {
			if requests[i].ID != requestID {
				continue
			}
			if requests[i].Status != models.VerificationPending {
				return errAlreadyInState
			}
			requests[i].Status = status
			if reason != "" {
				requests[i].Reason = reason
			}
			resolved = requests[i]
			return nil
		}
		return errRequestNotFound
	})
	return resolved, err
}

// ApproveRequest approves a pending request. Approving a user request also
// flips the user's verified flag.
func (v *VerificationSystem) ApproveRequest(requestID, admin string) (Result, error) {
	resolved, err := v.resolve(requestID, models.VerificationApproved, "")
	if errors.Is(err, errRequestNotFound) {
		return fail(KindNotFound, "Verification request not found"), nil
	}
	if errors.Is(err, errAlreadyInState) {
		return fail(KindAlreadyInState, "Verification request is not pending"), nil
	}
	if err != nil {
		return Result{}, err
	}

	if resolved.Type == "user" {
		if res, err := v.users.SetVerified(resolved.TargetID, true, admin); err != nil {
			return Result{}, err
		} else if !res.Success {
			// The request referenced an address that never registered.
			v.log.Warn("approved verification for unknown user", "target", resolved.TargetID)
		}
	}
	v.log.LogModeration("verification approved", "request", requestID, "target", resolved.TargetID, "admin", admin)
	return ok("Request %s approved", requestID), nil
}

// RejectRequest rejects a pending request with a reason.
func (v *VerificationSystem) RejectRequest(requestID, admin, reason string) (Result, error) {
	_, err := v.resolve(requestID, models.VerificationRejected, reason)
	if errors.Is(err, errRequestNotFound) {
		return fail(KindNotFound, "Verification request not found"), nil
	}
	if errors.Is(err, errAlreadyInState) {
		return fail(KindAlreadyInState, "Verification request is not pending"), nil
	}
	if err != nil {
		return Result{}, err
	}
	v.log.LogModeration("verification rejected", "request", requestID, "admin", admin, "reason", reason)
	return ok("Request %s rejected", requestID), nil
}

// RevokeVerification drops a verified user back to unverified.
func (v *VerificationSystem) RevokeVerification(address, admin string) (Result, error) {
	res, err := v.users.SetVerified(address, false, admin)
	if err != nil || !res.Success {
		return res, err
	}
	v.log.LogModeration("verification revoked", "address", address, "admin", admin)
	return ok("Verification revoked for %s", address), nil
}

// PendingRequests lists the open queue.
func (v *VerificationSystem) PendingRequests() ([]models.VerificationRequest, error) {
	var requests []models.VerificationRequest
	if err := v.store.Get(store.KeyVerificationRequests, &requests); err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	pending := make([]models.VerificationRequest, 0, len(requests))
	for _, r := range requests {
		if r.Status == models.VerificationPending {
			pending = append(pending, r)
		}
	}
	return pending, nil
}
