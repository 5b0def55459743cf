package bootstrap

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/wolfman30/sales-call-agent/internal/config"
	"github.com/wolfman30/sales-call-agent/internal/notify"
	"github.com/wolfman30/sales-call-agent/pkg/logging"
)

// BuildEmailSender picks the delivery backend named by EMAIL_PROVIDER. "auto"
// prefers SendGrid, then SMTP, then the logging stub. A backend that cannot be
// built from the config degrades to the stub so signup keeps working.
func BuildEmailSender(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) notify.EmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	from := notify.Sender{Address: cfg.EmailFromAddress, Name: cfg.EmailFromName}
	smtpCfg := notify.SMTPConfig{Addr: cfg.SMTPAddr, Username: cfg.SMTPUsername, Password: cfg.SMTPPassword}

	provider := strings.ToLower(strings.TrimSpace(cfg.EmailProvider))
	switch provider {
	case "sendgrid":
		if s := notify.NewSendGridSender(cfg.SendGridAPIKey, from, logger); s != nil {
			return s
		}
	case "ses":
		if awsCfg != nil && from.Address != "" {
			return notify.NewSESSender(sesv2.NewFromConfig(*awsCfg), from, logger)
		}
	case "smtp":
		if s := notify.NewSMTPSender(smtpCfg, from, logger); s != nil {
			return s
		}
	case "stub":
		return notify.NewStubEmailSender(logger)
	case "", "auto":
		if s := notify.NewSendGridSender(cfg.SendGridAPIKey, from, logger); s != nil {
			return s
		}
		if s := notify.NewSMTPSender(smtpCfg, from, logger); s != nil {
			return s
		}
	default:
		logger.Warn("unknown email provider", "provider", provider)
	}

	logger.Warn("email delivery not configured; messages are logged only", "provider", provider)
	return notify.NewStubEmailSender(logger)
}
