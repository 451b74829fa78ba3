package email

import (
	"fmt"

	"tripmate/internal/models"
)

func (s *Service) generateInviteHTML(inviterName string, trip *models.Trip, joinURL string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Trip invitation</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
        }
        .container {
            background-color: white;
            padding: 40px;
            border-radius: 12px;
            border: 1px solid #e9ecef;
        }
        .logo {
            font-size: 28px;
            font-weight: bold;
            color: #1d4e89;
            margin-bottom: 20px;
        }
        .cta-button {
            display: inline-block;
            background-color: #1d4e89;
            color: white;
            padding: 12px 24px;
            text-decoration: none;
            border-radius: 6px;
            font-weight: 500;
        }
        .code {
            font-family: monospace;
            font-size: 20px;
            letter-spacing: 3px;
            background-color: #f8f9fa;
            padding: 8px 16px;
            border-radius: 6px;
        }
        .footer {
            margin-top: 30px;
            font-size: 14px;
            color: #6c757d;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="logo">Tripmate</div>

        <p><strong>%s</strong> invited you to help plan the trip <strong>%s</strong>.</p>

        <p><a href="%s" class="cta-button">Join the trip</a></p>

        <p>Already signed in? You can also enter the invite code on your home page:</p>
        <p><span class="code">%s</span></p>

        <div class="footer">
            <p>This invitation expires in 7 days. If you were not expecting it you can ignore this email.</p>
        </div>
    </div>
</body>
</html>`, inviterName, trip.Name, joinURL, trip.InviteCode)
}

func (s *Service) generateInviteText(inviterName string, trip *models.Trip, joinURL string) string {
	return fmt.Sprintf(`%s invited you to help plan the trip %q on Tripmate.

Join here: %s

Already signed in? Enter the invite code %s on your home page instead.

This invitation expires in 7 days. If you were not expecting it you can ignore this email.`,
		inviterName, trip.Name, joinURL, trip.InviteCode)
}
