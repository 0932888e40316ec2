// Package errors provides structured error handling with machine-readable codes.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// CodeBadRequest represents a malformed request payload.
	CodeBadRequest Code = "BAD_REQUEST"

	// Formation request errors
	CodeRequestTitleEmpty        Code = "REQUEST_TITLE_EMPTY"
	CodeRequestLeaderNameEmpty   Code = "REQUEST_LEADER_NAME_EMPTY"
	CodeRequestLeaderEmailEmpty  Code = "REQUEST_LEADER_EMAIL_EMPTY"
	CodeRequestInvalidEmail      Code = "REQUEST_INVALID_LEADER_EMAIL"
	CodeRequestInvalidStatus     Code = "REQUEST_INVALID_STATUS"
	CodeRequestNotSubmitted      Code = "REQUEST_NOT_SUBMITTED"
	CodeRequestAlreadyResolved   Code = "REQUEST_ALREADY_RESOLVED"
	CodeRequestInvalidGroupType  Code = "REQUEST_INVALID_GROUP_TYPE"
	CodeRequestInvalidFrequency  Code = "REQUEST_INVALID_FREQUENCY"
	CodeRequestInvalidMeetingDay Code = "REQUEST_INVALID_MEETING_DAY"

	// Vote errors
	CodeVoteEmptyRequestID Code = "VOTE_EMPTY_REQUEST_ID"
	CodeVoteEmptyVoterID   Code = "VOTE_EMPTY_VOTER_ID"
	CodeVoteInvalidValue   Code = "VOTE_INVALID_VALUE"

	// User errors
	CodeUserEmptyEmail       Code = "USER_EMPTY_EMAIL"
	CodeUserInvalidEmail     Code = "USER_INVALID_EMAIL"
	CodeUserEmptyDisplayName Code = "USER_EMPTY_DISPLAY_NAME"
	CodeUserInvalidRole      Code = "USER_INVALID_ROLE"

	// LifeLine errors
	CodeLifeLineTitleEmpty    Code = "LIFELINE_TITLE_EMPTY"
	CodeLifeLineEmptyLeaderID Code = "LIFELINE_EMPTY_LEADER_ID"
	CodeLifeLineNotPublished  Code = "LIFELINE_NOT_PUBLISHED"

	// Inquiry errors
	CodeInquiryEmptyName    Code = "INQUIRY_EMPTY_NAME"
	CodeInquiryEmptyEmail   Code = "INQUIRY_EMPTY_EMAIL"
	CodeInquiryEmptyMessage Code = "INQUIRY_EMPTY_MESSAGE"

	// Auth errors
	CodeAuthUnauthorized     Code = "AUTH_UNAUTHORIZED"
	CodeAuthForbiddenRole    Code = "AUTH_FORBIDDEN_ROLE"
	CodeWebhookBadSignature  Code = "WEBHOOK_BAD_SIGNATURE"
	CodeSweepSecretRejected  Code = "SWEEP_SECRET_REJECTED"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
	CodeConflict Code = "CONFLICT"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad request - validation failures, bad input
	case CodeBadRequest,
		CodeRequestTitleEmpty,
		CodeRequestLeaderNameEmpty,
		CodeRequestLeaderEmailEmpty,
		CodeRequestInvalidEmail,
		CodeRequestInvalidStatus,
		CodeRequestInvalidGroupType,
		CodeRequestInvalidFrequency,
		CodeRequestInvalidMeetingDay,
		CodeVoteEmptyRequestID,
		CodeVoteEmptyVoterID,
		CodeVoteInvalidValue,
		CodeUserEmptyEmail,
		CodeUserInvalidEmail,
		CodeUserEmptyDisplayName,
		CodeUserInvalidRole,
		CodeLifeLineTitleEmpty,
		CodeLifeLineEmptyLeaderID,
		CodeInquiryEmptyName,
		CodeInquiryEmptyEmail,
		CodeInquiryEmptyMessage:
		return http.StatusBadRequest

	// Conflict - state doesn't allow the operation
	case CodeRequestNotSubmitted,
		CodeRequestAlreadyResolved,
		CodeLifeLineNotPublished,
		CodeConflict:
		return http.StatusConflict

	case CodeNotFound:
		return http.StatusNotFound

	case CodeAuthUnauthorized,
		CodeWebhookBadSignature,
		CodeSweepSecretRejected:
		return http.StatusUnauthorized

	case CodeAuthForbiddenRole:
		return http.StatusForbidden

	default:
		return http.StatusInternalServerError
	}
}
