package env

import "os"

// AdminCredentials is the single admin identity the server accepts for
// session login and Basic auth. Values come from the process environment;
// the defaults exist for local development only.
type AdminCredentials struct {
	Username string
	Password string
}

// Admin holds the resolved admin credentials.
var Admin = AdminCredentials{
	Username: getenv("MUSEQ_ADMIN_USER", "admin"),
	Password: getenv("MUSEQ_ADMIN_PASS", "admin"),
}

// SessionSecret keys the cookie store. Override in any non-dev deployment.
var SessionSecret = getenv("MUSEQ_SESSION_SECRET", "museq-dev-secret")

// IsDev reports whether the process runs in development mode.
func IsDev() bool {
	return os.Getenv("ENV") == "dev"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
