package email

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	appconfig "github.com/makerloft/craftfolio-backend/internal/config"
)

// Client sends transactional mail through Yandex Cloud Postbox (SES v2 API).
type Client struct {
	SESClient *sesv2.Client
	Sender    string
	LoginURL  string
}

// NewClient builds a Postbox client. When credentials are absent the client
// is still returned but IsConfigured reports false; mail sending is an
// optional capability.
func NewClient(appCfg *appconfig.Config) *Client {
	if appCfg.SESAccessKeyID == "" || appCfg.SESSecretAccessKey == "" {
		return &Client{}
	}

	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL:           appCfg.SESEndpoint,
			SigningRegion: appCfg.SESRegion,
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(appCfg.SESAccessKeyID, appCfg.SESSecretAccessKey, "")),
		config.WithRegion(appCfg.SESRegion),
	)
	if err != nil {
		log.Fatalf("failed to load SES config: %v", err)
	}

	return &Client{
		SESClient: sesv2.NewFromConfig(cfg),
		Sender:    appCfg.EmailFrom,
		LoginURL:  appCfg.AppLoginURL,
	}
}

// IsConfigured reports whether the client can actually send mail.
func (c *Client) IsConfigured() bool {
	return c.SESClient != nil && c.Sender != ""
}

// GenerateVerificationCode returns a random 6-character hex code.
func GenerateVerificationCode() (string, error) {
	bytes := make([]byte, 3)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// SendVerificationEmail mails a signup verification code.
func (c *Client) SendVerificationEmail(ctx context.Context, toEmail, verificationCode string) error {
	subject := "Confirm your email - Craftfolio"
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Welcome to Craftfolio!</h2>
			<p>Your verification code: <strong>%s</strong></p>
			<p>The code is valid for 24 hours.</p>
			<p>Enter it on the <a href="%s">login page</a> to activate your account.</p>
			<p>If you did not sign up, please ignore this message.</p>
		</body>
		</html>
	`, verificationCode, c.LoginURL)

	return c.sendHTMLEmail(ctx, toEmail, subject, body)
}

func (c *Client) sendHTMLEmail(ctx context.Context, toEmail, subject, htmlBody string) error {
	if !c.IsConfigured() {
		return fmt.Errorf("email client is not configured")
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: &c.Sender,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data: &subject,
				},
				Body: &types.Body{
					Html: &types.Content{
						Data: &htmlBody,
					},
				},
			},
		},
	}

	_, err := c.SESClient.SendEmail(ctx, input)
	return err
}
