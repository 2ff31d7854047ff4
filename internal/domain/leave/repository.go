package leave

import (
	"context"
	"time"
)

// LeaveRequestRepository defines data access for the request ledger.
type LeaveRequestRepository interface {
	// Create inserts a new PENDING request
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)

	// GetByID retrieves a request, ErrLeaveRequestNotFound when missing
	GetByID(ctx context.Context, id string) (LeaveRequest, error)

	// Update rewrites the request's mutable columns
	Update(ctx context.Context, request LeaveRequest) error

	// Delete removes a request
	Delete(ctx context.Context, id string) error

	// ListOverlapping retrieves the user's PENDING/APPROVED requests whose
	// [start_date, end_date] intersects [start, end], excluding excludeID
	// (empty string excludes nothing)
	ListOverlapping(ctx context.Context, userID string, start, end time.Time, excludeID string) ([]LeaveRequest, error)

	// ListByUser retrieves one user's requests, newest first
	ListByUser(ctx context.Context, userID string, page, limit int) ([]LeaveRequest, int64, error)

	// List retrieves requests with filters (admin)
	List(ctx context.Context, filter LeaveRequestFilter) ([]LeaveRequest, int64, error)
}
