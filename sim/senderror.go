package sim

// SendError marks a message that could not be delivered because the
// receiving mailbox was full.
type SendError struct {
	Mailbox string
	Msg     *Msg
}

// NewSendError creates a SendError
func NewSendError(mailbox string, msg *Msg) *SendError {
	e := new(SendError)
	e.Mailbox = mailbox
	e.Msg = msg
	return e
}

func (e *SendError) Error() string {
	return "mailbox " + e.Mailbox + " is full, dropping " + string(e.Msg.Kind())
}
