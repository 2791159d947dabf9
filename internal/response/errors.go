package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrOAuthDisabled      ErrCode = "OAUTH_NOT_CONFIGURED"
	ErrOAuthExchange      ErrCode = "OAUTH_EXCHANGE_FAILED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrTeacherAccessOnly ErrCode = "TEACHER_ACCESS_ONLY"
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"
	ErrNotOwner          ErrCode = "NOT_OWNER"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Exam / attempt ────────────────────────────────────────────────
	ErrExamNotAssigned     ErrCode = "EXAM_NOT_ASSIGNED"
	ErrNoQuestions         ErrCode = "NO_QUESTIONS"
	ErrAttemptCompleted    ErrCode = "ATTEMPT_COMPLETED"
	ErrAttemptNotCompleted ErrCode = "ATTEMPT_NOT_COMPLETED"
	ErrAlreadyReviewed     ErrCode = "ALREADY_REVIEWED"
	ErrIncompleteGrading   ErrCode = "INCOMPLETE_GRADING"
	ErrGradeOutOfRange     ErrCode = "GRADE_OUT_OF_RANGE"
	ErrQuestionNotInExam   ErrCode = "QUESTION_NOT_IN_EXAM"

	// ─── Import ────────────────────────────────────────────────────────
	ErrFileRequired      ErrCode = "FILE_REQUIRED"
	ErrFileTooLarge      ErrCode = "FILE_TOO_LARGE"
	ErrMissingColumn     ErrCode = "MISSING_QUESTION_COLUMN"
	ErrUnparsableUpload  ErrCode = "UNPARSABLE_UPLOAD"
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email or password is incorrect."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid or expired."
	case ErrOAuthDisabled:
		return "Federated sign-in is not configured on this server."
	case ErrOAuthExchange:
		return "Sign-in with the identity provider failed."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrTeacherAccessOnly:
		return "This resource is restricted to teachers."
	case ErrStudentAccessOnly:
		return "This resource is restricted to students."
	case ErrNotOwner:
		return "You are not the owner of this resource."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "The ID format is invalid."
	case ErrInvalidPayload:
		return "The request payload is invalid."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "The requested resource was not found."
	case ErrConflict:
		return "The resource already exists."

	// ─── Exam / attempt ────────────────────────────────────────────────
	case ErrExamNotAssigned:
		return "This exam is not assigned to you."
	case ErrNoQuestions:
		return "This exam has no questions."
	case ErrAttemptCompleted:
		return "This attempt has already been completed."
	case ErrAttemptNotCompleted:
		return "This attempt has not been completed yet."
	case ErrAlreadyReviewed:
		return "This attempt has already been reviewed."
	case ErrIncompleteGrading:
		return "Every response must be graded before submitting the review."
	case ErrGradeOutOfRange:
		return "Grades must be between 0 and 10."
	case ErrQuestionNotInExam:
		return "The question does not belong to this exam."

	// ─── Import ────────────────────────────────────────────────────────
	case ErrFileRequired:
		return "A file upload is required."
	case ErrFileTooLarge:
		return "The file exceeds the size limit."
	case ErrMissingColumn:
		return "The file must contain a \"Question\" column."
	case ErrUnparsableUpload:
		return "The uploaded file could not be parsed."
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
