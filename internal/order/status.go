package order

type Status string

const (
	StatusPending              Status = "pending"
	StatusAwaitingConfirmation Status = "awaiting_confirmation"
	StatusConfirmed            Status = "confirmed"
	StatusPreparing            Status = "preparing"
	StatusReady                Status = "ready"
	StatusCompleted            Status = "completed"
	StatusCancelled            Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending              PaymentStatus = "pending"
	PaymentAwaitingConfirmation PaymentStatus = "awaiting_confirmation"
	PaymentConfirmed            PaymentStatus = "confirmed"
	PaymentFailed               PaymentStatus = "failed"
)
