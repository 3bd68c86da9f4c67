package notify

import "context"

type Permission string

const (
	PermissionDefault     Permission = "default"
	PermissionGranted     Permission = "granted"
	PermissionDenied      Permission = "denied"
	PermissionUnsupported Permission = "unsupported"
)

// Notification is one alert handed to a Sink. Tag doubles as the dedupe key on
// sinks that collapse repeated tags.
type Notification struct {
	Title              string
	Body               string
	Tag                string
	Silent             bool
	RequireInteraction bool
}

// Sink delivers notifications outside the process. Delivery is best effort.
type Sink interface {
	RequestPermission(ctx context.Context) (Permission, error)
	Notify(ctx context.Context, n Notification) error
}
