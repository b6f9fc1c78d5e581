package apierr

import (
	"veritas-backend/internal/models"
	"veritas-backend/internal/provider"
)

// Defaults is the category table the server starts with. Categories not
// listed here, such as *provider.NetworkError or
// *provider.MalformedResponseError, fall through to an unmapped 500.
func Defaults() []Entry {
	return []Entry{
		For[*models.MissingFieldError](BadRequest),
		For[*models.MalformedBodyError](BadRequest),
		For[*provider.RateLimitError](TooManyRequests),
		For[*provider.AuthError](Internal),
	}
}
