// Package session holds the per-conversation upload state. Each state is its
// own type carrying only the fields valid in that state; a conversation with
// no entry in the store is Idle.
package session

import "context"

// UploadMode is fixed when an upload starts.
type UploadMode string

const (
	// ModeArchive deploys a single bundled archive as soon as it arrives.
	ModeArchive UploadMode = "archive"

	// ModeMultiFile stages any number of files until the user finishes.
	ModeMultiFile UploadMode = "multi_file"
)

// AdminAction is the pending action of an admin sub-session.
type AdminAction string

const (
	ActionDelete  AdminAction = "delete"
	ActionRestore AdminAction = "restore"
)

// Kind names a state for logging and serialization.
type Kind string

const (
	KindIdle             Kind = "idle"
	KindAwaitingSiteName Kind = "awaiting_site_name"
	KindAwaitingFiles    Kind = "awaiting_files"
	KindAwaitingSlug     Kind = "awaiting_slug"
)

// State is one of Idle, AwaitingSiteName, AwaitingFiles or AwaitingSlug.
type State interface {
	Kind() Kind
	isState()
}

// StagedFile is a file held in memory until the deploy call.
type StagedFile struct {
	Name    string
	Content []byte
}

// Size returns the content length in bytes.
func (f StagedFile) Size() int64 {
	return int64(len(f.Content))
}

// Idle is the ground state: no upload or admin action is pending.
type Idle struct{}

// AwaitingSiteName waits for the user to type the site name.
type AwaitingSiteName struct {
	Mode UploadMode
}

// AwaitingFiles has a site name and accumulates files in submission order.
type AwaitingFiles struct {
	Mode     UploadMode
	SiteName string
	Files    []StagedFile
}

// AwaitingSlug is the admin sub-session waiting for a site slug.
type AwaitingSlug struct {
	Action AdminAction
}

func (Idle) Kind() Kind             { return KindIdle }
func (AwaitingSiteName) Kind() Kind { return KindAwaitingSiteName }
func (AwaitingFiles) Kind() Kind    { return KindAwaitingFiles }
func (AwaitingSlug) Kind() Kind     { return KindAwaitingSlug }

func (Idle) isState()             {}
func (AwaitingSiteName) isState() {}
func (AwaitingFiles) isState()    {}
func (AwaitingSlug) isState()     {}

// StagedBytes is the total size of the staged files.
func (s AwaitingFiles) StagedBytes() int64 {
	var total int64
	for _, f := range s.Files {
		total += f.Size()
	}
	return total
}

// IsIdle reports whether st is the ground state (a nil state counts as idle).
func IsIdle(st State) bool {
	if st == nil {
		return true
	}
	_, ok := st.(Idle)
	return ok
}

// Store keeps one live session per conversation. Get returns Idle for
// conversations without a session, and putting Idle is the same as Clear.
type Store interface {
	Get(ctx context.Context, chatID int64) (State, error)
	Put(ctx context.Context, chatID int64, st State) error
	Clear(ctx context.Context, chatID int64) error
}
