package email

import (
	"context"
	"log/slog"

	"github.com/campusdesk/capstone-support-backend/internal/core/ports"
)

// MockSMTPNotifier is a secondary adapter that mocks sending emails.
// It implements the ports.Notifier interface.
type MockSMTPNotifier struct {
	userRepo ports.UserRepository
	from     string
	logger   *slog.Logger
}

// NewMockSMTPNotifier creates a new mock notifier.
// It requires a UserRepository to fetch recipient details.
func NewMockSMTPNotifier(userRepo ports.UserRepository, from string, logger *slog.Logger) *MockSMTPNotifier {
	return &MockSMTPNotifier{
		userRepo: userRepo,
		from:     from,
		logger:   logger.With("component", "email_notifier"),
	}
}

var _ ports.Notifier = (*MockSMTPNotifier)(nil)

// Notify logs the notification to the console instead of sending an email.
// Recipients who disabled notifications are skipped. Delivery is
// best-effort; failures are logged, never returned.
func (n *MockSMTPNotifier) Notify(ctx context.Context, params ports.NotificationParams) {
	user, err := n.userRepo.GetByID(ctx, params.RecipientID)
	if err != nil {
		n.logger.Error("failed to get user for notification",
			"user_id", params.RecipientID,
			"error", err,
		)
		return
	}

	if !user.NotificationsEnabled {
		n.logger.Debug("notification suppressed, user opted out",
			"user_id", user.ID,
			"ticket_id", params.TicketID,
		)
		return
	}

	n.logger.Info("mock email sent",
		"from", n.from,
		"to_name", user.Name,
		"to_email", user.Email,
		"subject", params.Subject,
		"ticket_id", params.TicketID,
	)
}
