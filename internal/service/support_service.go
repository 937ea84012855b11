package service

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/sirupsen/logrus"
)

// emailSender is the part of the SES client the support service uses
type emailSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SupportService mails the support desk about payments that need attention
type SupportService struct {
	client       emailSender
	fromEmail    string
	fromName     string
	supportEmail string
	enabled      bool
	log          logrus.FieldLogger
}

// NewSupportService creates a support service backed by Amazon SES. It is disabled
// when either the sender or the support address is empty.
func NewSupportService(ctx context.Context, awsRegion, fromEmail, fromName, supportEmail string, log logrus.FieldLogger) (*SupportService, error) {
	log = log.WithField("component", "support")

	if fromEmail == "" || supportEmail == "" {
		log.Debug("Support escalation disabled: SES_FROM_EMAIL or SUPPORT_EMAIL not configured")
		return &SupportService{enabled: false, log: log}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.WithFields(logrus.Fields{"from": fromEmail, "region": awsRegion}).Debug("Support escalation enabled")
	return newSupportService(sesv2.NewFromConfig(cfg), fromEmail, fromName, supportEmail, log), nil
}

func newSupportService(client emailSender, fromEmail, fromName, supportEmail string, log logrus.FieldLogger) *SupportService {
	return &SupportService{
		client:       client,
		fromEmail:    fromEmail,
		fromName:     fromName,
		supportEmail: supportEmail,
		enabled:      true,
		log:          log,
	}
}

// IsEnabled returns whether the support service is enabled
func (s *SupportService) IsEnabled() bool {
	return s.enabled
}

// ReportUnverifiedPayment tells support about a payment the backend could not verify
func (s *SupportService) ReportUnverifiedPayment(ctx context.Context, incident PaymentIncident) error {
	if !s.enabled {
		s.log.WithField("payment_intent_id", incident.PaymentIntentID).Info("Skipping support report (service disabled)")
		return nil
	}

	subject := fmt.Sprintf("Unverified payment %s", incident.PaymentIntentID)
	textBody := fmt.Sprintf(`A customer completed an online payment that the backend could not verify.

Payment intent: %s
Customer id:    %s
Phone:          %s
Amount:         %s
Reason:         %s

Please check the payment provider and the order before contacting the customer.
`, incident.PaymentIntentID, incident.UserID, incident.Phone, incident.Amount.StringFixed(2), incident.Reason)

	return s.sendEmail(ctx, s.supportEmail, subject, textBody)
}

func (s *SupportService) sendEmail(ctx context.Context, toEmail, subject, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	entry := s.log.WithFields(logrus.Fields{"to": toEmail, "subject": subject})
	if result != nil && result.MessageId != nil {
		entry = entry.WithField("message_id", *result.MessageId)
	}
	entry.Info("Support email sent")
	return nil
}
