package event

const SellerEmailOtpDestination string = "seller_email_otp"
const SellerEmailOtpConsumerNotification string = "seller_email_otp_notification"

// SellerEmailOtpMessage carries a plaintext code to the notification worker.
// EventID is the idempotency key for redelivery.
type SellerEmailOtpMessage struct {
	EventID  string `json:"event_id"`
	SellerID int64  `json:"seller_id"`
	Email    string `json:"email"`
	Code     string `json:"code"`
}
