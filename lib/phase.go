package lib

// Phase is the type for storing the stage of a voting session.
type Phase uint32

const (
	// Created is the zero value; a deployed session is immediately open for
	// registration, so a live session never reports it.
	Created Phase = iota
	// RegistrationOpen lasts until the session start time.
	RegistrationOpen
	// VotingOpen lasts from the start time until the end time.
	VotingOpen
	// SharesCollectionOpen lasts from the end time until the shares deadline.
	SharesCollectionOpen
	// Completed is reached once the shares deadline has passed.
	Completed
	// Aborted is the administrative terminal sink.
	Aborted
)

func (p Phase) String() string {
	switch p {
	case Created:
		return "created"
	case RegistrationOpen:
		return "registration open"
	case VotingOpen:
		return "voting open"
	case SharesCollectionOpen:
		return "shares collection open"
	case Completed:
		return "completed"
	case Aborted:
		return "aborted"
	}
	return "unknown"
}
