package credentials

// ChangeTopic is the bus topic a Store publishes its mutations on.
const ChangeTopic = "credentials:changed"

type ChangeKind string

const (
	ChangeSaved   ChangeKind = "saved"
	ChangeCleared ChangeKind = "cleared"
)

// ChangeEvent is delivered after a mutation has been written. User is nil when
// the credentials were cleared.
type ChangeEvent struct {
	Kind ChangeKind
	User *UserProfile
}
