package resend

// Config holds Resend email provider configuration.
type Config struct {
	// APIKey authenticates against the Resend API.
	APIKey string `env:"RESEND_API_KEY"`
	// BaseURL overrides the API endpoint (default: https://api.resend.com/).
	BaseURL string `env:"RESEND_BASE_URL"`
}
