package apierr

// Domain codes returned by the learning services.
const (
	CodeAlreadyEnrolled        = "already_enrolled"
	CodeNoSubscription         = "no_subscription"
	CodeQuotaExceeded          = "quota_exceeded"
	CodeModuleNotInBundle      = "module_not_in_bundle"
	CodeNotEnrolled            = "not_enrolled"
	CodeLessonNotFound         = "lesson_not_found"
	CodeModuleNotFound         = "module_not_found"
	CodeSessionNotFound        = "session_not_found"
	CodeInvalidModuleSelection = "invalid_module_selection"
	CodeNotProTier             = "not_pro_tier"
	CodeSelfAction             = "self_action_forbidden"
	CodeSlugTaken              = "slug_taken"
	CodeEmailTaken             = "email_taken"
	CodeUsernameTaken          = "username_taken"
	CodeInvalidCredentials     = "invalid_credentials"
)
