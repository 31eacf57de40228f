package notify

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Email is a rendered message ready for the SMTP dialer.
type Email struct {
	Subject    string
	HTML       string
	Text       string
	Attachment *Attachment
}

// Attachment is an inline file, currently only the QR PNG.
type Attachment struct {
	Filename string
	Content  []byte
}

const qrAttachmentName = "scout-qr-code.png"

// Render produces the email for a job. The QR attachment is added by the
// worker after decoding the data URL so templates stay free of base64 blobs.
func Render(job Job, now time.Time) (Email, error) {
	switch job.Kind {
	case KindRegistration:
		return registrationEmail(job, "Welcome to Scout - Your Registration is Complete! 🎉",
			"Welcome to the Scout community! Your account has been successfully created and you're now part of our duty management system."), nil
	case KindResendQR:
		return registrationEmail(job, "Your Scout QR Code - Resent 📱",
			"Here is your Scout QR code again. Keep it safe - you'll need it to check in and view your profile."), nil
	case KindProfileUpdate:
		return profileUpdateEmail(job), nil
	case KindDeletion:
		return deletionEmail(job, now), nil
	case KindPasswordReset:
		subject := "Scout Password Reset"
		if job.Role != "" {
			subject = "Scout Admin Password Reset"
		}
		return Email{
			Subject: subject,
			Text:    "Hello,\n\nYour password has been reset successfully.",
		}, nil
	case KindAdminRegistered:
		return Email{
			Subject: "Scout Admin Registration",
			Text:    fmt.Sprintf("Hello,\n\nYou have been registered as a %s admin.", job.Role),
		}, nil
	default:
		return Email{}, fmt.Errorf("unknown notification kind %q", job.Kind)
	}
}

func registrationEmail(job Job, subject, intro string) Email {
	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><style>
  body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: #333; }
  .container { max-width: 600px; margin: 0 auto; padding: 20px; }
  .header { background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%); color: white; padding: 30px; text-align: center; border-radius: 10px 10px 0 0; }
  .content { background: #f8f9fa; padding: 30px; border-radius: 0 0 10px 10px; }
  .qr-section { background: white; padding: 20px; margin: 20px 0; border-radius: 8px; text-align: center; }
  .user-info { background: white; padding: 15px; margin: 15px 0; border-radius: 5px; border-left: 4px solid #667eea; }
  .footer { text-align: center; margin-top: 30px; color: #666; font-size: 14px; }
</style></head>
<body>
  <div class="container">
    <div class="header"><h1>🎉 Welcome to Scout!</h1></div>
    <div class="content">
      <h2>Hello %s,</h2>
      <p>%s</p>
      <div class="user-info">
        <h3>Your Account Details:</h3>
        <p><strong>User ID:</strong> %s</p>
        <p><strong>Name:</strong> %s</p>
        <p><strong>Email:</strong> %s</p>
        <p><strong>Phone:</strong> %s</p>
      </div>
      <div class="qr-section">
        <h3>📱 Your Personal QR Code</h3>
        <p>Scan the attached QR code to access your profile and view your duty status.</p>
        <p><small>Keep this QR code safe - you'll need it to check in and view your profile!</small></p>
      </div>
      <p>If you cannot scan the QR code, use this direct link:<br><code>%s</code></p>
      <p>Best regards,<br><strong>The Scout Team</strong></p>
    </div>
    <div class="footer"><p>This is an automated message from the Scout Duty Management System.</p></div>
  </div>
</body>
</html>`, job.Name, intro, job.UserID, job.Name, job.Email, job.PhoneNumber, job.StatusURL)

	text := fmt.Sprintf(`%s

Hello %s,

%s

Your Account Details:
- User ID: %s
- Name: %s
- Email: %s
- Phone: %s

Your Personal QR Code:
A QR code has been attached to this email. Scan it to access your profile and view your duty status.

Alternative Access Method:
If you cannot scan the QR code, use this direct link:
%s

Best regards,
The Scout Team

This is an automated message from the Scout Duty Management System.`,
		subject, job.Name, intro, job.UserID, job.Name, job.Email, job.PhoneNumber, job.StatusURL)

	return Email{Subject: subject, HTML: html, Text: text}
}

func profileUpdateEmail(job Job) Email {
	fields := make([]string, 0, len(job.Changes))
	for field := range job.Changes {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var htmlFields, textFields strings.Builder
	for _, field := range fields {
		value := job.Changes[field]
		if value == "" {
			value = "Not specified"
		}
		label := strings.ToUpper(field[:1]) + field[1:]
		fmt.Fprintf(&htmlFields, `<div class="field"><strong>%s:</strong> %s</div>`+"\n", label, value)
		fmt.Fprintf(&textFields, "%s: %s\n", label, value)
	}

	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><style>
  body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: #333; }
  .container { max-width: 600px; margin: 0 auto; padding: 20px; }
  .header { background: linear-gradient(135deg, #28a745 0%%, #20c997 100%%); color: white; padding: 30px; text-align: center; border-radius: 10px 10px 0 0; }
  .content { background: #f8f9fa; padding: 30px; border-radius: 0 0 10px 10px; }
  .update-section { background: white; padding: 20px; margin: 20px 0; border-radius: 8px; }
  .field { margin: 10px 0; padding: 10px; background: #f8f9fa; border-radius: 5px; }
  .footer { text-align: center; margin-top: 30px; color: #666; font-size: 14px; }
</style></head>
<body>
  <div class="container">
    <div class="header"><h1>✅ Profile Updated Successfully</h1></div>
    <div class="content">
      <h2>Hello %s,</h2>
      <p>Your Scout profile has been successfully updated by an administrator. Here are the details of the changes made:</p>
      <div class="update-section">
        <h3>📝 Updated Information:</h3>
        %s
      </div>
      <div class="update-section">
        <h3>🔍 Current Profile Details:</h3>
        <p><strong>User ID:</strong> %s</p>
        <p><strong>Name:</strong> %s</p>
        <p><strong>Email:</strong> %s</p>
        <p><strong>Phone:</strong> %s</p>
        <p><strong>NIC:</strong> %s</p>
      </div>
      <p>Your QR code and login credentials remain unchanged.</p>
      <p>Best regards,<br><strong>The Scout Team</strong></p>
    </div>
    <div class="footer"><p>This is an automated message from the Scout Duty Management System.</p></div>
  </div>
</body>
</html>`, job.Name, htmlFields.String(), job.UserID, job.Name, job.Email, job.PhoneNumber, job.NIC)

	text := fmt.Sprintf(`Your Scout Profile Has Been Updated

Hello %s,

Your Scout profile has been successfully updated by an administrator. Here are the details of the changes made:

Updated Information:
%s
Current Profile Details:
- User ID: %s
- Name: %s
- Email: %s
- Phone: %s
- NIC: %s

Your QR code and login credentials remain unchanged.

Best regards,
The Scout Team`, job.Name, textFields.String(), job.UserID, job.Name, job.Email, job.PhoneNumber, job.NIC)

	return Email{Subject: "Your Scout Profile Has Been Updated ✅", HTML: html, Text: text}
}

func deletionEmail(job Job, now time.Time) Email {
	date := now.Format("1/2/2006")

	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><style>
  body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: #333; }
  .container { max-width: 600px; margin: 0 auto; padding: 20px; }
  .header { background: linear-gradient(135deg, #dc3545 0%%, #fd7e14 100%%); color: white; padding: 30px; text-align: center; border-radius: 10px 10px 0 0; }
  .content { background: #f8f9fa; padding: 30px; border-radius: 0 0 10px 10px; }
  .warning-section { background: #fff3cd; border: 1px solid #ffeaa7; padding: 20px; margin: 20px 0; border-radius: 8px; }
  .account-info { background: white; padding: 20px; margin: 20px 0; border-radius: 8px; }
  .footer { text-align: center; margin-top: 30px; color: #666; font-size: 14px; }
</style></head>
<body>
  <div class="container">
    <div class="header"><h1>⚠️ Account Deactivated</h1></div>
    <div class="content">
      <h2>Hello %s,</h2>
      <div class="warning-section">
        <p>Your Scout account has been permanently deactivated and removed from our system by an administrator.</p>
      </div>
      <div class="account-info">
        <h3>📋 Account Information:</h3>
        <p><strong>User ID:</strong> %s</p>
        <p><strong>Name:</strong> %s</p>
        <p><strong>Email:</strong> %s</p>
        <p><strong>Phone:</strong> %s</p>
        <p><strong>NIC:</strong> %s</p>
        <p><strong>Deactivated by:</strong> %s</p>
        <p><strong>Date:</strong> %s</p>
      </div>
      <p>If you believe this action was taken in error, please contact your administrator immediately.</p>
      <p>Best regards,<br><strong>The Scout Team</strong></p>
    </div>
    <div class="footer"><p>This is an automated message from the Scout Duty Management System.</p></div>
  </div>
</body>
</html>`, job.Name, job.UserID, job.Name, job.Email, job.PhoneNumber, job.NIC, job.AdminEmail, date)

	text := fmt.Sprintf(`Your Scout Account Has Been Deactivated

Hello %s,

IMPORTANT NOTICE: Your Scout account has been permanently deactivated and removed from our system by an administrator.

Account Information:
- User ID: %s
- Name: %s
- Email: %s
- Phone: %s
- NIC: %s
- Deactivated by: %s
- Date: %s

If you believe this action was taken in error, please contact your administrator immediately.

Best regards,
The Scout Team`, job.Name, job.UserID, job.Name, job.Email, job.PhoneNumber, job.NIC, job.AdminEmail, date)

	return Email{Subject: "Your Scout Account Has Been Deactivated ⚠️", HTML: html, Text: text}
}
