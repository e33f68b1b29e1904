package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/polkiloo/autotransit/internal/domain/model"
)

type emailSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// UserLookup resolves recipient accounts.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// EmailChannel sends templated emails through Amazon SES.
type EmailChannel struct {
	client emailSender
	users  UserLookup
	from   string
	logger *slog.Logger
}

// NewEmailChannel creates an SES channel using the default AWS credential chain.
func NewEmailChannel(ctx context.Context, region, from string, users UserLookup, logger *slog.Logger) (*EmailChannel, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newEmailChannel(sesv2.NewFromConfig(cfg), from, users, logger), nil
}

func newEmailChannel(client emailSender, from string, users UserLookup, logger *slog.Logger) *EmailChannel {
	return &EmailChannel{client: client, users: users, from: from, logger: logger}
}

// Name identifies the channel.
func (c *EmailChannel) Name() string { return "email" }

// Deliver renders the event template and mails every recipient with an email
// address. Events without a template are skipped.
func (c *EmailChannel) Deliver(ctx context.Context, event model.Event) error {
	msg, ok, err := Render(event)
	if err != nil || !ok {
		return err
	}

	var errs []error
	for _, id := range event.Recipients {
		user, err := c.users.GetByID(ctx, id)
		if err != nil {
			errs = append(errs, fmt.Errorf("lookup recipient %d: %w", id, err))
			continue
		}
		if user.Email == "" {
			c.logger.Debug("recipient has no email", slog.Int64("user_id", id))
			continue
		}
		if err := c.send(ctx, user.Email, msg); err != nil {
			errs = append(errs, fmt.Errorf("send to %d: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func (c *EmailChannel) send(ctx context.Context, to string, msg Message) error {
	_, err := c.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(c.from),
		Destination:      &types.Destination{ToAddresses: []string{to}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(msg.Body), Charset: aws.String("UTF-8")},
				},
			},
		},
	})
	return err
}
