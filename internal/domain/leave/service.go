package leave

import (
	"context"
)

// LeaveService defines business logic for the leave approval workflow.
type LeaveService interface {
	// SubmitRequest validates and persists a new PENDING request
	SubmitRequest(ctx context.Context, req CreateLeaveRequestRequest, userID string) (LeaveRequestResponse, error)

	// UpdateRequest re-validates and rewrites an owned PENDING request
	UpdateRequest(ctx context.Context, req UpdateLeaveRequestRequest, userID string) (LeaveRequestResponse, error)

	// DeleteRequest removes an owned PENDING request
	DeleteRequest(ctx context.Context, requestID string, userID string) error

	// GetRequest retrieves a single request (owner or admin)
	GetRequest(ctx context.Context, requestID string, userID string, isAdmin bool) (LeaveRequestResponse, error)

	// GetMyRequests retrieves the caller's requests
	GetMyRequests(ctx context.Context, userID string, page, limit int) (ListLeaveRequestsResponse, error)

	// ListRequests retrieves requests with filters (admin)
	ListRequests(ctx context.Context, filter LeaveRequestFilter) (ListLeaveRequestsResponse, error)

	// Approve approves a PENDING request and materializes attendance records
	// for every business day in its range
	Approve(ctx context.Context, requestID, comment, approverID string) (LeaveRequestResponse, error)

	// Reject rejects a PENDING request; the comment is mandatory
	Reject(ctx context.Context, requestID, comment, approverID string) (LeaveRequestResponse, error)

	// ChangeStatus force-sets any approval status (admin override) and
	// reverses materialization when a request leaves APPROVED
	ChangeStatus(ctx context.Context, requestID string, status ApprovalStatus, comment, adminID string) (LeaveRequestResponse, error)
}
