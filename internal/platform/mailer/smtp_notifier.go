package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"text/template"
	"time"

	"github.com/phrazzld/accounts-api/internal/config"
	"github.com/phrazzld/accounts-api/internal/platform/logger"
	"github.com/wneessen/go-mail"
)

const resetSubject = "Restablece tu contraseña"

var resetBody = template.Must(template.New("reset").Parse(`Hola,

Haz clic en el siguiente enlace para restablecer tu contraseña:

{{.Link}}

Si no solicitaste esto, ignora este mensaje.
`))

// sender delivers composed messages. *mail.Client satisfies it.
type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPNotifier sends password reset messages through an SMTP relay.
type SMTPNotifier struct {
	sender sender
	from   string
	logger *slog.Logger
}

// NewSMTPNotifier creates a notifier from SMTP settings. Authentication is
// only configured when both username and password are set.
func NewSMTPNotifier(cfg config.SMTPConfig, log *slog.Logger) (*SMTPNotifier, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(30 * time.Second),
	}

	if cfg.Username != "" && cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	if cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("mailer: create client: %w", err)
	}

	return newSMTPNotifier(client, cfg.From, log)
}

func newSMTPNotifier(s sender, from string, log *slog.Logger) (*SMTPNotifier, error) {
	if from == "" {
		return nil, errors.New("mailer: from address cannot be empty")
	}
	if log == nil {
		log = slog.Default()
	}
	return &SMTPNotifier{
		sender: s,
		from:   from,
		logger: log.With("component", "smtp_notifier"),
	}, nil
}

// SendResetLink emails a password reset link to address.
func (n *SMTPNotifier) SendResetLink(ctx context.Context, address, link string) error {
	log := logger.FromContextOrDefault(ctx, n.logger)

	msg, err := n.buildResetMessage(address, link)
	if err != nil {
		return err
	}

	if err := n.sender.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mailer: send reset message: %w", err)
	}

	log.InfoContext(ctx, "password reset email sent")
	return nil
}

func (n *SMTPNotifier) buildResetMessage(address, link string) (*mail.Msg, error) {
	if address == "" {
		return nil, errors.New("mailer: recipient address cannot be empty")
	}

	body, err := renderResetBody(link)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.From(n.from); err != nil {
		return nil, fmt.Errorf("mailer: set from address: %w", err)
	}
	if err := msg.To(address); err != nil {
		return nil, fmt.Errorf("mailer: set recipient: %w", err)
	}
	msg.Subject(resetSubject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	return msg, nil
}

func renderResetBody(link string) (string, error) {
	var buf bytes.Buffer
	if err := resetBody.Execute(&buf, struct{ Link string }{Link: link}); err != nil {
		return "", fmt.Errorf("mailer: render reset body: %w", err)
	}
	return buf.String(), nil
}
