package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"time"
)

type EmailService struct {
	apiKey    string
	from      string
	templates *template.Template
}

type EmailData struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Html    string `json:"html"`
}

// Template data structures
type WelcomeEmailData struct {
	Name string
}

type TeamInviteData struct {
	BusinessName string
	Role         string
	InviteLink   string
	ExpiresAt    time.Time
}

type RenewalWarningData struct {
	Name       string
	PlanName   string
	DaysLeft   int
	ExpiryDate time.Time
}

type PaymentReceiptData struct {
	Name      string
	ItemName  string
	Amount    float64
	PaymentID string
	PaidAt    time.Time
}

type PasswordResetData struct {
	ResetLink string
}

func NewEmailService(apiKey string) (*EmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend API key is required")
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("error loading email templates: %v", err)
	}

	return &EmailService{
		apiKey:    apiKey,
		from:      "BillDesk <noreply@billdesk.app>",
		templates: templates,
	}, nil
}

func (s *EmailService) sendTemplateEmail(to, subject, templateName string, data interface{}) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return fmt.Errorf("template execution error: %v", err)
	}

	emailData := EmailData{
		From:    s.from,
		To:      to,
		Subject: subject,
		Html:    body.String(),
	}

	jsonData, err := json.Marshal(emailData)
	if err != nil {
		return fmt.Errorf("error marshaling email data: %v", err)
	}

	req, err := http.NewRequest("POST", "https://api.resend.com/emails", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %v", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("error sending email: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("resend API error: %s", string(respBody))
	}

	log.Printf("Email %q sent to %s", subject, to)
	return nil
}

func (s *EmailService) SendWelcomeEmail(email, name string) error {
	return s.sendTemplateEmail(email, "Welcome to BillDesk!", "welcome.html", WelcomeEmailData{Name: name})
}

func (s *EmailService) SendTeamInviteEmail(email, businessName, role, inviteLink string, expiresAt time.Time) error {
	data := TeamInviteData{
		BusinessName: businessName,
		Role:         role,
		InviteLink:   inviteLink,
		ExpiresAt:    expiresAt,
	}
	return s.sendTemplateEmail(email, fmt.Sprintf("You've been invited to join %s on BillDesk", businessName), "team_invite.html", data)
}

func (s *EmailService) SendRenewalWarningEmail(email, name, planName string, expiryDate time.Time, daysLeft int) error {
	data := RenewalWarningData{
		Name:       name,
		PlanName:   planName,
		DaysLeft:   daysLeft,
		ExpiryDate: expiryDate,
	}
	return s.sendTemplateEmail(email, fmt.Sprintf("Your BillDesk plan expires in %d days", daysLeft), "renewal_warning.html", data)
}

func (s *EmailService) SendPaymentReceiptEmail(email, name, itemName string, amount float64, paymentID string) error {
	data := PaymentReceiptData{
		Name:      name,
		ItemName:  itemName,
		Amount:    amount,
		PaymentID: paymentID,
		PaidAt:    time.Now(),
	}
	return s.sendTemplateEmail(email, "Payment received - BillDesk", "payment_receipt.html", data)
}

func (s *EmailService) SendPasswordResetEmail(email, resetLink string) error {
	return s.sendTemplateEmail(email, "Reset your BillDesk password", "password_reset.html", PasswordResetData{ResetLink: resetLink})
}
