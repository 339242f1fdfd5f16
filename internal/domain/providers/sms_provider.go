package providers

import "context"

// SMSProvider defines the SMS delivery capability used for caretaker alerts
type SMSProvider interface {
	Send(ctx context.Context, toNumber, body string) (string, error)
}
