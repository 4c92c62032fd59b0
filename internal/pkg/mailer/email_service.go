package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendDonationReceipt(toEmail, donorName, reference string, amount int64, currency string) error
	SendDonationFailed(toEmail, donorName, reference string) error
	SendRefundNotice(toEmail, donorName, reference string, amount int64, currency string) error
	SendAdminAlert(subject, body string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	adminEmail  string
}

func NewEmailService(host string, port int, username, password, senderEmail, adminEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		adminEmail:  adminEmail,
	}
}

// formatAmount renders minor units for display only. The ledger never
// leaves integers.
func formatAmount(amount int64, currency string) string {
	return fmt.Sprintf("%s %d.%02d", currency, amount/100, amount%100)
}

func (s *emailService) SendDonationReceipt(toEmail, donorName, reference string, amount int64, currency string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Thank you for your donation (%s)", reference))

	name := donorName
	if name == "" {
		name = "Friend"
	}

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Thank you, %s!</h2>
			<p>We received your donation of <strong>%s</strong>.</p>
			<p>Your donation reference is:</p>
			<h1 style="color: #4CAF50; letter-spacing: 2px;">%s</h1>
			<p>Keep this reference for your records. Your support makes our work possible.</p>
		</div>
	`, name, formatAmount(amount, currency), reference)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send receipt to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Receipt sent to %s\n", toEmail)
	return nil
}

func (s *emailService) SendDonationFailed(toEmail, donorName, reference string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Your donation could not be completed (%s)", reference))

	name := donorName
	if name == "" {
		name = "Friend"
	}

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Hi %s,</h2>
			<p>Unfortunately your donation <strong>%s</strong> could not be completed.</p>
			<p>No money was taken. You can try again at any time, or reach out to us if you believe this is an error.</p>
		</div>
	`, name, reference)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send failure notice to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Failure notice sent to %s\n", toEmail)
	return nil
}

func (s *emailService) SendRefundNotice(toEmail, donorName, reference string, amount int64, currency string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Your donation has been refunded (%s)", reference))

	name := donorName
	if name == "" {
		name = "Friend"
	}

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Hi %s,</h2>
			<p>Your donation <strong>%s</strong> of %s has been refunded.</p>
			<p>Depending on your bank, the money may take a few business days to appear.</p>
		</div>
	`, name, reference, formatAmount(amount, currency))

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send refund notice to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Refund notice sent to %s\n", toEmail)
	return nil
}

func (s *emailService) SendAdminAlert(subject, body string) error {
	if s.adminEmail == "" {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", s.adminEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", fmt.Sprintf(`<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">%s</div>`, body))

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send admin alert: %v\n", err)
		return err
	}

	return nil
}
