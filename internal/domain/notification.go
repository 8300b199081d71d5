package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// NotificationMode is the owner-side preference for reaction/expiry notices.
type NotificationMode string

const (
	NotifyOff      NotificationMode = "off"
	NotifyRealtime NotificationMode = "realtime"
	NotifyDigest   NotificationMode = "digest"
)

// NotificationSettings is owned by the profile service; read-only here.
type NotificationSettings struct {
	UserID                   primitive.ObjectID `bson:"user_id" json:"user_id"`
	ReactionNotificationMode NotificationMode   `bson:"reaction_notification_mode" json:"reaction_notification_mode"`
}
