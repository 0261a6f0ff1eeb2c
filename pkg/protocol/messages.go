package protocol

// Version is the protocol version announced in Hello.
const Version uint16 = 1

// Hello opens a session. Root is the id of the node the component is
// mounted into; the client binds it to its own container element.
type Hello struct {
	Version   uint16
	Session   string
	Component string
	Root      uint64
}

// EncodeHello encodes a Hello to bytes.
func EncodeHello(h *Hello) []byte {
	e := NewEncoder()
	e.WriteUint16(h.Version)
	e.WriteString(h.Session)
	e.WriteString(h.Component)
	e.WriteUvarint(h.Root)
	return e.Bytes()
}

// DecodeHello decodes a Hello from bytes.
func DecodeHello(data []byte) (*Hello, error) {
	d := NewDecoder(data)
	var (
		h   Hello
		err error
	)
	if h.Version, err = d.ReadUint16(); err != nil {
		return nil, err
	}
	if h.Session, err = d.ReadString(); err != nil {
		return nil, err
	}
	if h.Component, err = d.ReadString(); err != nil {
		return nil, err
	}
	if h.Root, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	return &h, nil
}

// Event reports a host event the client observed on a mirrored node.
type Event struct {
	Seq  uint64
	Node uint64
	Name string
}

// EncodeEvent encodes an Event to bytes.
func EncodeEvent(ev *Event) []byte {
	e := NewEncoder()
	e.WriteUvarint(ev.Seq)
	e.WriteUvarint(ev.Node)
	e.WriteString(ev.Name)
	return e.Bytes()
}

// DecodeEvent decodes an Event from bytes.
func DecodeEvent(data []byte) (*Event, error) {
	d := NewDecoder(data)
	var (
		ev  Event
		err error
	)
	if ev.Seq, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	if ev.Node, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	if ev.Name, err = d.ReadString(); err != nil {
		return nil, err
	}
	return &ev, nil
}

// ErrorMessage is sent when an error occurs. Code is a registered error
// code such as "K202".
type ErrorMessage struct {
	Code    string
	Message string
	Fatal   bool // the sender closes the connection after this frame
}

// EncodeErrorMessage encodes an ErrorMessage to bytes.
func EncodeErrorMessage(em *ErrorMessage) []byte {
	e := NewEncoder()
	e.WriteString(em.Code)
	e.WriteString(em.Message)
	e.WriteBool(em.Fatal)
	return e.Bytes()
}

// DecodeErrorMessage decodes an ErrorMessage from bytes.
func DecodeErrorMessage(data []byte) (*ErrorMessage, error) {
	d := NewDecoder(data)
	var (
		em  ErrorMessage
		err error
	)
	if em.Code, err = d.ReadString(); err != nil {
		return nil, err
	}
	if em.Message, err = d.ReadString(); err != nil {
		return nil, err
	}
	if em.Fatal, err = d.ReadBool(); err != nil {
		return nil, err
	}
	return &em, nil
}
