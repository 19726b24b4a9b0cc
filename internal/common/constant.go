package common

// AuthorizationHeaderName is the HTTP header carrying the bearer access token.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the JWT in the Authorization header.
const BearerPrefix = "Bearer "

// Cached dashboard views. Mutating operations revalidate the views that
// render data they touched.
const (
	DashboardPath         = "/dashboard"
	DashboardTasksPath    = "/dashboard/tasks"
	DashboardSettingsPath = "/dashboard/settings"
)
