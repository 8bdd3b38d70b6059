package notify

import (
	"context"
	"fmt"

	"vigia/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESService is the subset of the SES API used, declared for mocking.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// EmailCopier sends a best-effort email copy of a delivered notification.
// Delivery verdicts follow the bridge only; email failures are logged and
// otherwise ignored.
type EmailCopier struct {
	client    SESService
	fromEmail string
	logger    logger.Logger
}

func NewEmailCopier(ctx context.Context, region, fromEmail string, log logger.Logger) (*EmailCopier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &EmailCopier{
		client:    ses.NewFromConfig(awsCfg),
		fromEmail: fromEmail,
		logger:    log.WithFields(map[string]interface{}{"component": "email-copy"}),
	}, nil
}

func (e *EmailCopier) Send(ctx context.Context, to, subject, body string) {
	if to == "" {
		return
	}

	_, err := e.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(e.fromEmail),
	})
	if err != nil {
		e.logger.Warn("email copy failed", map[string]interface{}{
			"email": to,
			"error": err.Error(),
		})
	}
}
