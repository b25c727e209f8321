package rbac

// DefaultPolicy grants admins content management and analytics. Only
// students take quizzes.
var DefaultPolicy = Policy{
	"student": {
		"quiz:view",
		"attempt:start",
		"attempt:submit",
		"user:me",
	},
	"admin": {
		"question:*",
		"quiz:*",
		"analytics:view",
		"user:me",
	},
}

// denials holds the 403 message for permissions that need something more
// specific than the admin default.
var denials = map[string]string{
	"attempt:start":  "Only students can take quizzes",
	"attempt:submit": "Only students can submit quizzes",
}

// DenialMessage is the caller-facing reason a permission check failed.
func DenialMessage(perm string) string {
	if m, ok := denials[perm]; ok {
		return m
	}
	return "Admin access required"
}
