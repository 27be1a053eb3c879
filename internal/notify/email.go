package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
	"github.com/ganeshsabale-99/DMP-Project/pkg/logging"
)

// MailSender is satisfied by pkg/email.Sender
type MailSender interface {
	SendMail(ctx context.Context, to, subject, htmlBody string) error
}

// EmailNotifier mails team-channel notifications to a shared inbox.
// Per-user channels are left to the live feed.
type EmailNotifier struct {
	sender    MailSender
	to        string
	webAppURL string
	logger    logging.Logger
	tpl       *template.Template
}

type emailData struct {
	Heading   string
	Fields    []emailField
	Link      string
	Timestamp time.Time
}

type emailField struct {
	Name  string
	Value string
}

func NewEmailNotifier(sender MailSender, to, webAppURL string, logger logging.Logger) *EmailNotifier {
	return &EmailNotifier{
		sender:    sender,
		to:        to,
		webAppURL: strings.TrimRight(webAppURL, "/"),
		logger:    logger,
		tpl:       template.Must(template.New("notification").Parse(notificationEmailTemplate)),
	}
}

func (n *EmailNotifier) Name() string { return "email" }

func (n *EmailNotifier) Notify(ctx context.Context, note domain.Notification) error {
	if note.Channel != domain.ChannelMarketingHead {
		return nil
	}

	subject, heading := emailSubject(note)
	data := emailData{
		Heading:   heading,
		Fields:    emailFields(note.Payload),
		Link:      n.link(note),
		Timestamp: note.Timestamp,
	}
	if data.Timestamp.IsZero() {
		data.Timestamp = time.Now().UTC()
	}

	var buf bytes.Buffer
	if err := n.tpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render notification email: %w", err)
	}
	if err := n.sender.SendMail(ctx, n.to, subject, buf.String()); err != nil {
		return fmt.Errorf("send notification email: %w", err)
	}

	n.logger.WithFields(logging.Fields{
		"type":    note.Type,
		"channel": note.Channel,
	}).Debug("Notification email sent")
	return nil
}

func (n *EmailNotifier) link(note domain.Notification) string {
	if n.webAppURL == "" {
		return ""
	}
	switch note.Type {
	case domain.NotifyPostSubmitted, domain.NotifyPostPublished:
		if id, ok := note.Payload["postId"].(string); ok && id != "" {
			return fmt.Sprintf("%s/posts/%s", n.webAppURL, id)
		}
	case domain.NotifyMessageNew:
		if id, ok := note.Payload["messageId"].(string); ok && id != "" {
			return fmt.Sprintf("%s/messages/%s", n.webAppURL, id)
		}
	}
	return ""
}

func emailSubject(note domain.Notification) (subject, heading string) {
	title, _ := note.Payload["title"].(string)
	switch note.Type {
	case domain.NotifyPostSubmitted:
		return fmt.Sprintf("Approval requested: %s", title), "A post is waiting for approval"
	case domain.NotifyPostPublished:
		return fmt.Sprintf("Published: %s", title), "A post was published"
	case domain.NotifyMessageNew:
		subj, _ := note.Payload["subject"].(string)
		return fmt.Sprintf("New contact message: %s", subj), "A new contact message arrived"
	default:
		return fmt.Sprintf("Lighthouse notification: %s", note.Type), "Notification"
	}
}

func emailFields(payload map[string]any) []emailField {
	fields := make([]emailField, 0, len(payload))
	for k, v := range payload {
		fields = append(fields, emailField{Name: k, Value: fmt.Sprint(v)})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	return fields
}

const notificationEmailTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Heading}}</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 640px; margin: 0 auto; padding: 24px;">
        <h2 style="color: #2c3e50;">{{.Heading}}</h2>
        <table style="width: 100%; border-collapse: collapse; margin-bottom: 20px;">
            {{range .Fields}}
            <tr>
                <td style="padding: 8px; border-bottom: 1px solid #eee;"><strong>{{.Name}}</strong></td>
                <td style="padding: 8px; border-bottom: 1px solid #eee;">{{.Value}}</td>
            </tr>
            {{end}}
        </table>
        {{if .Link}}
        <p style="text-align: center; margin: 30px 0;">
            <a href="{{.Link}}" style="background-color: #3498db; color: white; padding: 12px 24px; text-decoration: none; border-radius: 5px; display: inline-block;">Open in Lighthouse</a>
        </p>
        {{end}}
        <p style="color: #6c757d; font-size: 12px;">Sent {{.Timestamp.Format "January 2, 2006 at 3:04 PM MST"}}</p>
    </div>
</body>
</html>`
