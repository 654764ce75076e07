package mailer

import (
	"bytes"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"
)

type PasswordResetData struct {
	AppName  string
	UserName string
	ResetURL string
	ValidFor time.Duration
}

func (d PasswordResetData) ValidForText() string {
	if d.ValidFor == time.Hour {
		return "1 hour"
	}
	return d.ValidFor.String()
}

var passwordResetHTML = htmltemplate.Must(htmltemplate.New("reset_html").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Password Reset Request</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; background-color: #f8fafc; margin: 0; padding: 0;">
  <div style="max-width: 600px; margin: 0 auto; background: white; border-radius: 12px; overflow: hidden;">
    <div style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 40px 30px; text-align: center;">
      <h1 style="margin: 0; font-size: 28px;">Password Reset Request</h1>
      <p style="margin: 8px 0 0 0; opacity: 0.9;">{{.AppName}}</p>
    </div>
    <div style="padding: 40px 30px;">
      <p>Hello <strong>{{.UserName}}</strong>,</p>
      <p>We received a request to reset your password for your {{.AppName}} account.</p>
      <p>Click the button below to reset your password:</p>
      <div style="text-align: center;">
        <a href="{{.ResetURL}}" style="display: inline-block; background: #667eea; color: white; padding: 16px 32px; text-decoration: none; border-radius: 8px; font-weight: 600;">Reset Password</a>
      </div>
      <div style="background: #fef3c7; border: 1px solid #f59e0b; border-radius: 8px; padding: 16px; margin: 24px 0; color: #92400e;">
        <strong>Security Notice:</strong> This link will expire in {{.ValidForText}}.
      </div>
      <p>If you didn't request this password reset, you can safely ignore this email. Your password will remain unchanged.</p>
      <p><strong>Best regards,</strong><br>The {{.AppName}} Team</p>
      <p><small>If the button doesn't work, copy and paste this link:<br>
        <span style="word-break: break-all; font-family: monospace;">{{.ResetURL}}</span></small></p>
    </div>
  </div>
</body>
</html>
`))

var passwordResetText = texttemplate.Must(texttemplate.New("reset_text").Parse(`Password Reset Request - {{.AppName}}

Hello {{.UserName}},

We received a request to reset your password for your {{.AppName}} account.

Click the link below to reset your password:
{{.ResetURL}}

SECURITY NOTICE: This link will expire in {{.ValidForText}}.

If you didn't request this password reset, you can safely ignore this email. Your password will remain unchanged.

Best regards,
The {{.AppName}} Team
`))

// PasswordResetMessage renders the reset e-mail addressed to `to`
func PasswordResetMessage(to string, data PasswordResetData) (Message, error) {
	var html, text bytes.Buffer
	if err := passwordResetHTML.Execute(&html, data); err != nil {
		return Message{}, err
	}
	if err := passwordResetText.Execute(&text, data); err != nil {
		return Message{}, err
	}

	return Message{
		To:       to,
		Subject:  "Password Reset Request - " + data.AppName,
		HTMLBody: html.String(),
		TextBody: text.String(),
	}, nil
}
