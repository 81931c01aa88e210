package domain

type ConnectionStatus int

const (
	Disconnected ConnectionStatus = iota
	Connecting
	Online
	Reconnecting
)

func (s ConnectionStatus) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Online:
		return "online"
	case Reconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// ConnectionState is owned by the session manager. Bound is only set while Online.
type ConnectionState struct {
	Status ConnectionStatus
	Bound  Identity
}

func StateDisconnected() ConnectionState { return ConnectionState{Status: Disconnected} }

func StateConnecting() ConnectionState { return ConnectionState{Status: Connecting} }

func StateReconnecting() ConnectionState { return ConnectionState{Status: Reconnecting} }

func StateOnline(bound Identity) ConnectionState {
	return ConnectionState{Status: Online, Bound: bound}
}

func (s ConnectionState) String() string {
	if s.Status == Online {
		return s.Status.String() + "(" + s.Bound.String() + ")"
	}
	return s.Status.String()
}
