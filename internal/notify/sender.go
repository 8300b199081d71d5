package notify

import (
	"github.com/Saba3939/mood-harbor/internal/log"
	"go.uber.org/zap"
)

// Sender delivers a push notice to one user. The real transport (APNs/FCM)
// lives behind this; the default implementation just records the decision.
type Sender struct{}

func (s *Sender) Send(userID, message string) error {
	log.L().Info("push notice",
		zap.String("user_id", userID),
		zap.String("message", message),
	)
	return nil
}
