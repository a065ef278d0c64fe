package protocol

type MessageType uint8

const (
	// MessageTypeText carries one logical text message: a decimal public key
	// during the handshake, hex ciphertext afterwards.
	MessageTypeText  MessageType = 1
	MessageTypeClose MessageType = 2
)

func (t MessageType) String() string {
	switch t {
	case MessageTypeText:
		return "TEXT"
	case MessageTypeClose:
		return "CLOSE"
	default:
		return "UNKNOWN"
	}
}

func (t MessageType) valid() bool {
	return t == MessageTypeText || t == MessageTypeClose
}
