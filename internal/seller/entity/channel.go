package entity

// Channel is where an OTP is sent and which identifier it proves.
type Channel string

const (
	ChannelPhone Channel = "phone"
	ChannelEmail Channel = "email"
)

func (c Channel) IsValid() bool {
	return c == ChannelPhone || c == ChannelEmail
}

// VerifiedState is the state a successful verification on c advances to.
func (c Channel) VerifiedState() State {
	switch c {
	case ChannelPhone:
		return StateMobileVerified
	case ChannelEmail:
		return StateEmailVerified
	default:
		return StateUnknown
	}
}
