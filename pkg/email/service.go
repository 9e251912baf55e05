package email

// GlobalEmailService is nil until InitEmailService runs; callers guard
// on it so a missing RESEND_API_KEY disables email instead of failing.
var GlobalEmailService *EmailService

func InitEmailService(apiKey string) error {
	service, err := NewEmailService(apiKey)
	if err != nil {
		return err
	}
	GlobalEmailService = service
	return nil
}
