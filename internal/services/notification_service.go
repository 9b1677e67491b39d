// internal/services/notification_service.go
package services

import (
	"fmt"
	"net/smtp"

	"github.com/sirupsen/logrus"

	"github.com/lokapasar/lokapasar-backend/internal/config"
	"github.com/lokapasar/lokapasar-backend/internal/models"
)

type NotificationService struct {
	cfg *config.Config
}

func NewNotificationService(cfg *config.Config) *NotificationService {
	return &NotificationService{cfg: cfg}
}

func (s *NotificationService) SendVerificationEmail(user *models.User, token string) {
	verificationURL := fmt.Sprintf("%s/verify-email?token=%s", s.cfg.Frontend.BaseURL, token)
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nWelcome to %s. Please verify your email address:\r\n%s\r\n",
		user.Username, s.cfg.Email.FromName, verificationURL,
	)

	if err := s.sendEmail(user.Email, "Verify your email", body); err != nil {
		logrus.WithError(err).WithField("email", user.Email).Warn("Failed to send verification email")
	}
}

func (s *NotificationService) SendPasswordResetEmail(user *models.User, token string) {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.cfg.Frontend.BaseURL, token)
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nA password reset was requested for your account. The link expires in 1 hour:\r\n%s\r\n\r\nIf you did not request this, ignore this email.\r\n",
		user.Username, resetURL,
	)

	if err := s.sendEmail(user.Email, "Reset your password", body); err != nil {
		logrus.WithError(err).WithField("email", user.Email).Warn("Failed to send password reset email")
	}
}

func (s *NotificationService) SendOrderConfirmationEmail(user *models.User, order *models.Order) {
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nThank you for your order %s. Total: %.2f. We are processing it now.\r\n",
		user.Username, order.ID, order.TotalAmount,
	)

	if err := s.sendEmail(user.Email, "Order confirmation", body); err != nil {
		logrus.WithError(err).WithField("order_id", order.ID).Warn("Failed to send order confirmation email")
	}
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.cfg.Email.SMTPHost == "" {
		// No SMTP configured; log instead so development flows stay visible.
		logrus.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Info("SMTP not configured, skipping email")
		return nil
	}

	from := fmt.Sprintf("%s <%s>", s.cfg.Email.FromName, s.cfg.Email.FromEmail)
	message := []byte(
		"From: " + from + "\r\n" +
			"To: " + to + "\r\n" +
			"Subject: " + subject + "\r\n" +
			"\r\n" +
			body + "\r\n")

	auth := smtp.PlainAuth("", s.cfg.Email.SMTPUsername, s.cfg.Email.SMTPPassword, s.cfg.Email.SMTPHost)
	addr := s.cfg.Email.SMTPHost + ":" + s.cfg.Email.SMTPPort

	return smtp.SendMail(addr, auth, s.cfg.Email.FromEmail, []string{to}, message)
}
