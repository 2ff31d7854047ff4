package leave

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/hrplatform/attendance-backend-go/internal/domain/attendance"
	"github.com/hrplatform/attendance-backend-go/internal/domain/directory"
	"github.com/hrplatform/attendance-backend-go/internal/domain/leave"
	"github.com/hrplatform/attendance-backend-go/internal/pkg/database"
)

type LeaveServiceImpl struct {
	tx database.Transactor

	leave.LeaveRequestRepository
	attendance.AttendanceRepository
	directory.UserRepository

	now func() time.Time
}

// SubmitRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) SubmitRequest(ctx context.Context, req leave.CreateLeaveRequestRequest, userID string) (leave.LeaveRequestResponse, error) {
	if _, err := l.UserRepository.GetByID(ctx, userID); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	request, err := l.buildRequest(req, userID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	if err := l.checkOverlap(ctx, request, ""); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	created, err := l.LeaveRequestRepository.Create(ctx, request)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	return mapLeaveRequestToResponse(created), nil
}

// UpdateRequest implements leave.LeaveService. Only the owner may rewrite a
// request, and only while it is still PENDING.
func (l *LeaveServiceImpl) UpdateRequest(ctx context.Context, req leave.UpdateLeaveRequestRequest, userID string) (leave.LeaveRequestResponse, error) {
	existing, err := l.LeaveRequestRepository.GetByID(ctx, req.ID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	if existing.UserID != userID {
		return leave.LeaveRequestResponse{}, leave.ErrForbidden
	}
	if existing.ApprovalStatus != leave.StatusPending {
		return leave.LeaveRequestResponse{}, leave.ErrAlreadyProcessed
	}

	rebuilt, err := l.buildRequest(req.CreateLeaveRequestRequest, userID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	if err := l.checkOverlap(ctx, rebuilt, existing.ID); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	existing.LeaveType = rebuilt.LeaveType
	existing.StartDate = rebuilt.StartDate
	existing.EndDate = rebuilt.EndDate
	existing.StartTime = rebuilt.StartTime
	existing.EndTime = rebuilt.EndTime
	existing.Reason = rebuilt.Reason

	if err := l.LeaveRequestRepository.Update(ctx, existing); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	return mapLeaveRequestToResponse(existing), nil
}

// DeleteRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) DeleteRequest(ctx context.Context, requestID string, userID string) error {
	existing, err := l.LeaveRequestRepository.GetByID(ctx, requestID)
	if err != nil {
		return err
	}

	if existing.UserID != userID {
		return leave.ErrForbidden
	}
	if existing.ApprovalStatus != leave.StatusPending {
		return leave.ErrAlreadyProcessed
	}

	return l.LeaveRequestRepository.Delete(ctx, requestID)
}

// GetRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) GetRequest(ctx context.Context, requestID string, userID string, isAdmin bool) (leave.LeaveRequestResponse, error) {
	request, err := l.LeaveRequestRepository.GetByID(ctx, requestID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	if !isAdmin && request.UserID != userID {
		return leave.LeaveRequestResponse{}, leave.ErrForbidden
	}

	return mapLeaveRequestToResponse(request), nil
}

// GetMyRequests implements leave.LeaveService.
func (l *LeaveServiceImpl) GetMyRequests(ctx context.Context, userID string, page, limit int) (leave.ListLeaveRequestsResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	requests, total, err := l.LeaveRequestRepository.ListByUser(ctx, userID, page, limit)
	if err != nil {
		return leave.ListLeaveRequestsResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}

	return buildListResponse(requests, total, page, limit), nil
}

// ListRequests implements leave.LeaveService.
func (l *LeaveServiceImpl) ListRequests(ctx context.Context, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestsResponse, error) {
	if err := filter.Validate(); err != nil {
		return leave.ListLeaveRequestsResponse{}, err
	}

	requests, total, err := l.LeaveRequestRepository.List(ctx, filter)
	if err != nil {
		return leave.ListLeaveRequestsResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}

	return buildListResponse(requests, total, filter.Page, filter.Limit), nil
}

// Approve implements leave.LeaveService. The status write and the attendance
// materialization commit or roll back together.
func (l *LeaveServiceImpl) Approve(ctx context.Context, requestID, comment, approverID string) (leave.LeaveRequestResponse, error) {
	request, err := l.LeaveRequestRepository.GetByID(ctx, requestID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if request.ApprovalStatus != leave.StatusPending {
		return leave.LeaveRequestResponse{}, leave.ErrAlreadyProcessed
	}

	now := l.now()
	request.ApprovalStatus = leave.StatusApproved
	request.ApproverID = &approverID
	request.ApprovedAt = &now
	if comment != "" {
		request.ApprovalComment = &comment
	}

	err = l.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := l.LeaveRequestRepository.Update(txCtx, request); err != nil {
			return err
		}
		return l.materialize(txCtx, request)
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	return mapLeaveRequestToResponse(request), nil
}

// Reject implements leave.LeaveService. A rejection must carry a comment so
// the employee learns why.
func (l *LeaveServiceImpl) Reject(ctx context.Context, requestID, comment, approverID string) (leave.LeaveRequestResponse, error) {
	if comment == "" {
		return leave.LeaveRequestResponse{}, leave.ErrCommentRequired
	}

	request, err := l.LeaveRequestRepository.GetByID(ctx, requestID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if request.ApprovalStatus != leave.StatusPending {
		return leave.LeaveRequestResponse{}, leave.ErrAlreadyProcessed
	}

	now := l.now()
	request.ApprovalStatus = leave.StatusRejected
	request.ApprovalComment = &comment
	request.ApproverID = &approverID
	request.ApprovedAt = &now

	if err := l.LeaveRequestRepository.Update(ctx, request); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	return mapLeaveRequestToResponse(request), nil
}

// ChangeStatus implements leave.LeaveService. Unlike Approve and Reject this
// is an admin override that accepts any current state. Moving a request out
// of APPROVED deletes every attendance record its approval created.
func (l *LeaveServiceImpl) ChangeStatus(ctx context.Context, requestID string, status leave.ApprovalStatus, comment, adminID string) (leave.LeaveRequestResponse, error) {
	switch status {
	case leave.StatusPending, leave.StatusApproved, leave.StatusRejected:
	default:
		return leave.LeaveRequestResponse{}, leave.ErrInvalidApprovalStatus
	}

	request, err := l.LeaveRequestRepository.GetByID(ctx, requestID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	leavingApproved := request.ApprovalStatus == leave.StatusApproved && status != leave.StatusApproved

	now := l.now()
	request.ApprovalStatus = status
	request.ApproverID = &adminID
	request.ApprovedAt = &now
	if comment != "" {
		request.ApprovalComment = &comment
	}

	err = l.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := l.LeaveRequestRepository.Update(txCtx, request); err != nil {
			return err
		}
		if leavingApproved {
			if _, err := l.AttendanceRepository.DeleteByLinkedRequest(txCtx, request.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	return mapLeaveRequestToResponse(request), nil
}

// buildRequest parses and validates the submission payload into an entity.
func (l *LeaveServiceImpl) buildRequest(req leave.CreateLeaveRequestRequest, userID string) (leave.LeaveRequest, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequest{}, err
	}

	leaveType := leave.LeaveType(req.LeaveType)
	known := false
	for _, t := range leave.AllLeaveTypes {
		if t == leaveType {
			known = true
			break
		}
	}
	if !known {
		return leave.LeaveRequest{}, leave.ErrInvalidLeaveType
	}

	now := l.now()
	loc := now.Location()

	startDate, err := time.ParseInLocation("2006-01-02", req.StartDate, loc)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("invalid start date %q: %w", req.StartDate, err)
	}

	endDate := startDate
	if req.EndDate != nil && *req.EndDate != "" {
		endDate, err = time.ParseInLocation("2006-01-02", *req.EndDate, loc)
		if err != nil {
			return leave.LeaveRequest{}, fmt.Errorf("invalid end date %q: %w", *req.EndDate, err)
		}
	}
	if endDate.Before(startDate) {
		return leave.LeaveRequest{}, leave.ErrInvalidRange
	}

	if leaveType.IsHalfDay() && !endDate.Equal(startDate) {
		return leave.LeaveRequest{}, leave.ErrHalfDaySingleDayOnly
	}

	if leaveType == leave.TypeEarlyLeave {
		today := attendance.DayOf(now)
		if !startDate.Equal(today) || !endDate.Equal(today) {
			return leave.LeaveRequest{}, leave.ErrEarlyLeaveTodayOnly
		}
	}

	if leaveType.RequiresNotice() {
		earliest := leave.NextBusinessDaysAfter(now, leave.NoticeRequiredDays)
		if startDate.Before(earliest) {
			return leave.LeaveRequest{}, leave.ErrLeaveNoticeRequired
		}
	}

	request := leave.LeaveRequest{
		UserID:         userID,
		LeaveType:      leaveType,
		StartDate:      startDate,
		EndDate:        endDate,
		Reason:         req.Reason,
		ApprovalStatus: leave.StatusPending,
	}

	if req.StartTime != nil && *req.StartTime != "" {
		t, err := clockOnDate(startDate, *req.StartTime)
		if err != nil {
			return leave.LeaveRequest{}, err
		}
		request.StartTime = &t
	}
	if req.EndTime != nil && *req.EndTime != "" {
		t, err := clockOnDate(endDate, *req.EndTime)
		if err != nil {
			return leave.LeaveRequest{}, err
		}
		request.EndTime = &t
	}

	return request, nil
}

// checkOverlap rejects the request when any PENDING or APPROVED request of
// the same user touches the same date range. The one waiver: opposite
// half-day sub-types booked for the same single day may coexist, unless an
// ANNUAL request also covers that day.
func (l *LeaveServiceImpl) checkOverlap(ctx context.Context, request leave.LeaveRequest, excludeID string) error {
	overlapping, err := l.LeaveRequestRepository.ListOverlapping(ctx, request.UserID, request.StartDate, request.EndDate, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check overlapping leave requests: %w", err)
	}
	if len(overlapping) == 0 {
		return nil
	}

	annualCoexists := false
	for _, other := range overlapping {
		if other.LeaveType == leave.TypeAnnual {
			annualCoexists = true
			break
		}
	}

	for _, other := range overlapping {
		if annualCoexists || !isOppositeHalfDay(request, other) {
			return leave.ErrReservationTimeConflict
		}
	}
	return nil
}

// isOppositeHalfDay reports whether a and b are AM/PM half-days of different
// sub-types covering the same single day.
func isOppositeHalfDay(a, b leave.LeaveRequest) bool {
	if !a.LeaveType.IsHalfDay() || !b.LeaveType.IsHalfDay() || a.LeaveType == b.LeaveType {
		return false
	}
	return a.StartDate.Equal(a.EndDate) && b.StartDate.Equal(b.EndDate) && a.StartDate.Equal(b.StartDate)
}

// materialize writes one attendance record per business day in the approved
// range. A day that was already realized (checked in under a leave status)
// is left alone, so re-running is safe.
func (l *LeaveServiceImpl) materialize(ctx context.Context, request leave.LeaveRequest) error {
	status, ok := request.LeaveType.AttendanceStatus()
	if !ok {
		return leave.ErrInvalidLeaveType
	}

	reason := request.Reason
	if status == attendance.StatusSpecialLeave {
		reason = request.LeaveType.DisplayName()
	}
	leaveType := string(request.LeaveType)

	for day := request.StartDate; !day.After(request.EndDate); day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}

		existing, err := l.AttendanceRepository.GetByUserAndDate(ctx, request.UserID, day)
		if err != nil {
			return fmt.Errorf("failed to get attendance record for %s: %w", day.Format("2006-01-02"), err)
		}

		if existing == nil {
			_, err := l.AttendanceRepository.Create(ctx, attendance.Attendance{
				UserID:          request.UserID,
				Date:            day,
				Status:          status,
				Reason:          &reason,
				LeaveType:       &leaveType,
				LinkedRequestID: &request.ID,
			})
			if err != nil {
				return fmt.Errorf("failed to create attendance record for %s: %w", day.Format("2006-01-02"), err)
			}
			continue
		}

		if existing.CheckInTime != nil && existing.Status.IsLeaveStatus() {
			continue
		}

		existing.Status = status
		existing.Reason = &reason
		existing.LeaveType = &leaveType
		existing.LinkedRequestID = &request.ID
		if err := l.AttendanceRepository.Update(ctx, *existing); err != nil {
			return fmt.Errorf("failed to update attendance record for %s: %w", day.Format("2006-01-02"), err)
		}
	}

	return nil
}

func clockOnDate(date time.Time, value string) (time.Time, error) {
	clock, err := time.Parse("15:04", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid clock time %q: %w", value, err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), 0, 0, date.Location()), nil
}

func buildListResponse(requests []leave.LeaveRequest, total int64, page, limit int) leave.ListLeaveRequestsResponse {
	responses := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, req := range requests {
		responses = append(responses, mapLeaveRequestToResponse(req))
	}

	return leave.ListLeaveRequestsResponse{
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
		Requests:   responses,
	}
}

// mapLeaveRequestToResponse converts a LeaveRequest entity to LeaveRequestResponse
func mapLeaveRequestToResponse(request leave.LeaveRequest) leave.LeaveRequestResponse {
	resp := leave.LeaveRequestResponse{
		ID:              request.ID,
		UserID:          request.UserID,
		UserName:        request.UserName,
		LeaveType:       string(request.LeaveType),
		StartDate:       request.StartDate.Format("2006-01-02"),
		EndDate:         request.EndDate.Format("2006-01-02"),
		Reason:          request.Reason,
		ApprovalStatus:  string(request.ApprovalStatus),
		ApprovalComment: request.ApprovalComment,
		ApproverID:      request.ApproverID,
		CreatedAt:       request.CreatedAt.Format("2006-01-02 15:04:05"),
	}

	if request.StartTime != nil {
		s := request.StartTime.Format("15:04")
		resp.StartTime = &s
	}
	if request.EndTime != nil {
		s := request.EndTime.Format("15:04")
		resp.EndTime = &s
	}
	if request.ApprovedAt != nil {
		s := request.ApprovedAt.Format("2006-01-02 15:04:05")
		resp.ApprovedAt = &s
	}

	return resp
}

func NewLeaveService(
	tx database.Transactor,
	requestRepo leave.LeaveRequestRepository,
	attendanceRepo attendance.AttendanceRepository,
	userRepo directory.UserRepository,
) leave.LeaveService {
	return &LeaveServiceImpl{
		tx:                     tx,
		LeaveRequestRepository: requestRepo,
		AttendanceRepository:   attendanceRepo,
		UserRepository:         userRepo,
		now:                    time.Now,
	}
}

// NewLeaveServiceWithClock is used by tests that need a fixed clock.
func NewLeaveServiceWithClock(
	tx database.Transactor,
	requestRepo leave.LeaveRequestRepository,
	attendanceRepo attendance.AttendanceRepository,
	userRepo directory.UserRepository,
	now func() time.Time,
) leave.LeaveService {
	return &LeaveServiceImpl{
		tx:                     tx,
		LeaveRequestRepository: requestRepo,
		AttendanceRepository:   attendanceRepo,
		UserRepository:         userRepo,
		now:                    now,
	}
}
