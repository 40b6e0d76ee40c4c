package entity

import "fmt"

const (
	ModeComputer GameMode = "computer"
	ModeLocal    GameMode = "local"
	ModeOnline   GameMode = "online"
)

const (
	IdentityHost  Identity = "host"
	IdentityGuest Identity = "guest"
)

// In computer mode the human always plays X.
const (
	HumanMark    = PlayerX
	ComputerMark = PlayerO
)

const (
	PerspectiveTie    Perspective = "tie"
	PerspectiveWinner Perspective = "winner"
	PerspectiveWon    Perspective = "won"
	PerspectiveLost   Perspective = "lost"
)

type GameMode string

func ParseGameMode(value string) (GameMode, error) {
	switch mode := GameMode(value); mode {
	case ModeComputer, ModeLocal, ModeOnline:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown game mode %q", value)
	}
}

// Identity is fixed when an online session is created: the host plays X, the guest O.
type Identity string

func ParseIdentity(value string) (Identity, error) {
	switch identity := Identity(value); identity {
	case IdentityHost, IdentityGuest:
		return identity, nil
	default:
		return "", fmt.Errorf("unknown identity %q", value)
	}
}

func (that Identity) Mark() Mark {
	switch that {
	case IdentityHost:
		return PlayerX
	case IdentityGuest:
		return PlayerO
	default:
		return EmptyCell
	}
}

// Perspective tells the presenter how a finished game reads to the local user.
type Perspective string
