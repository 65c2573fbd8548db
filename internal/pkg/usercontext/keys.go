package usercontext

// Shared Locals keys used across controllers and middlewares
const (
	KeyUserContext = "USER_CONTEXT"
	KeyUser        = "USER"
	KeyUserID      = "user_id"
	KeyIsAdmin     = "isAdmin"
)
