package notify

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// MessageType tags a cross-context message.
type MessageType string

const (
	// MessageEmailScanStarted announces that an email scan began.
	MessageEmailScanStarted MessageType = "emailScanStarted"
	// MessageEmailScanResults carries the rendered result lines of a scan.
	MessageEmailScanResults MessageType = "emailScanResults"
)

// Message is the payload exchanged between the content and navigation
// contexts. Results is set for MessageEmailScanResults only.
type Message struct {
	Type    MessageType
	Results []string
}

// EmailScanStarted builds the scan start message.
func EmailScanStarted() Message { return Message{Type: MessageEmailScanStarted} }

// EmailScanResults builds the results message.
func EmailScanResults(lines []string) Message {
	return Message{Type: MessageEmailScanResults, Results: lines}
}

// Encode writes m as {"type":...,"results":[...]}.
func (m Message) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("type")
	e.Str(string(m.Type))
	if m.Type == MessageEmailScanResults {
		e.FieldStart("results")
		e.ArrStart()
		for _, line := range m.Results {
			e.Str(line)
		}
		e.ArrEnd()
	}
	e.ObjEnd()
}

// Decode reads a message written by Encode. Unknown fields are ignored;
// unknown types are rejected.
func (m *Message) Decode(d *jx.Decoder) error {
	*m = Message{}
	if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "type":
			s, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "type")
			}
			m.Type = MessageType(s)
		case "results":
			if d.Next() == jx.Null {
				return d.Null()
			}

			return d.Arr(func(d *jx.Decoder) error {
				s, err := d.Str()
				if err != nil {
					return errors.Wrap(err, "result line")
				}
				m.Results = append(m.Results, s)

				return nil
			})
		default:
			return d.Skip()
		}

		return nil
	}); err != nil {
		return errors.Wrap(err, "decode message")
	}

	switch m.Type {
	case MessageEmailScanStarted, MessageEmailScanResults:
		return nil
	default:
		return errors.Errorf("unknown message type %q", m.Type)
	}
}

// MarshalMessage encodes m.
func MarshalMessage(m Message) []byte {
	var e jx.Encoder
	m.Encode(&e)

	return e.Bytes()
}

// UnmarshalMessage decodes b.
func UnmarshalMessage(b []byte) (Message, error) {
	var m Message
	if err := m.Decode(jx.DecodeBytes(b)); err != nil {
		return Message{}, err
	}

	return m, nil
}
