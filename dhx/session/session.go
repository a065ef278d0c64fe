package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TheusHen/DHX/dhx/crypto"
	"github.com/TheusHen/DHX/dhx/dhke"
	"github.com/TheusHen/DHX/dhx/party"
	"github.com/TheusHen/DHX/dhx/protocol"
	"github.com/TheusHen/DHX/dhx/transport"
)

// Session is an established key exchange over a transport channel.
// Nothing authenticates the peer: the session key is shared with whoever
// answered the handshake.
type Session struct {
	id        uuid.UUID
	ch        transport.Channel
	party     *party.Party
	peer      dhke.PublicKey
	cipher    crypto.MessageCipher
	initiator bool
	logger    *zap.Logger
}

func (s *Session) ID() uuid.UUID { return s.id }

func (s *Session) Party() *party.Party { return s.party }

func (s *Session) PeerPublicKey() dhke.PublicKey { return s.peer }

func (s *Session) Suite() crypto.Suite { return s.cipher.Suite() }

func (s *Session) Initiator() bool { return s.initiator }

func (s *Session) Channel() transport.Channel { return s.ch }

// Send encrypts text and sends it as hex.
func (s *Session) Send(ctx context.Context, text string) error {
	ct, err := s.cipher.Encrypt([]byte(text))
	if err != nil {
		return fmt.Errorf("session %s: encrypt: %w", s.id, err)
	}
	return s.ch.Send(ctx, protocol.EncodeCiphertext(ct))
}

// Receive returns the next decrypted message. Transport errors, io.EOF
// included, are returned unwrapped.
func (s *Session) Receive(ctx context.Context) (string, error) {
	msg, err := s.ch.Receive(ctx)
	if err != nil {
		return "", err
	}
	ct, err := protocol.DecodeCiphertext(msg)
	if err != nil {
		return "", fmt.Errorf("session %s: %w", s.id, err)
	}
	pt, err := s.cipher.Decrypt(ct)
	if err != nil {
		return "", fmt.Errorf("session %s: %w", s.id, err)
	}
	text, err := protocol.DecodeText(pt)
	if err != nil {
		return "", fmt.Errorf("session %s: %w", s.id, err)
	}
	return text, nil
}

func (s *Session) Close() error { return s.ch.Close() }
