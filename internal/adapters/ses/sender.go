// Package ses は社員メールを Amazon SES v2 で配送するアダプタです。
package ses

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/ogurasousui/philocom-backoffice/internal/core/mailbox"
)

const charset = "UTF-8"

// Client は sesv2.Client の SendEmail のみを抜き出したものです。
type Client interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

var _ mailbox.Sender = (*Sender)(nil)

// Sender は mailbox.Sender の SES 実装です。
// from が設定されている場合は送信元に使い、社員のアドレスは Reply-To に入ります。
type Sender struct {
	client Client
	from   string
}

func NewSender(client Client, from string) *Sender {
	return &Sender{client: client, from: from}
}

func (s *Sender) Send(ctx context.Context, msg mailbox.OutgoingMessage) error {
	in := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(msg.From),
		Destination: &types.Destination{
			ToAddresses: msg.To,
			CcAddresses: msg.Cc,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String(charset)},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(msg.BodyHTML), Charset: aws.String(charset)},
				},
			},
		},
	}
	if s.from != "" && s.from != msg.From {
		in.FromEmailAddress = aws.String(s.from)
		in.ReplyToAddresses = []string{msg.From}
	}

	if _, err := s.client.SendEmail(ctx, in); err != nil {
		return fmt.Errorf("ses: send email from %s: %w", msg.From, err)
	}
	return nil
}
