package deploy

import (
	"github.com/rohits-web03/sitedrop/internal/models"
	"github.com/rohits-web03/sitedrop/internal/session"
)

// Event is an input to Transition.
type Event interface {
	isEvent()
}

type StartUpload struct {
	Mode session.UploadMode
}

type SubmitName struct {
	Text string
}

type SubmitFile struct {
	Name    string
	Content []byte
}

type Finalize struct{}

type Cancel struct{}

// StartAdmin must only be applied after the caller's admin membership has
// been checked.
type StartAdmin struct {
	Action session.AdminAction
}

type SubmitSlug struct {
	Text string
}

func (StartUpload) isEvent() {}
func (SubmitName) isEvent()  {}
func (SubmitFile) isEvent()  {}
func (Finalize) isEvent()    {}
func (Cancel) isEvent()      {}
func (StartAdmin) isEvent()  {}
func (SubmitSlug) isEvent()  {}

// Effect describes what should happen after a transition. Prompt effects only
// need rendering; DeployEffect and AdminEffect need I/O and are replaced by
// Deployed and AdminApplied once the Service has executed them.
type Effect interface {
	isEffect()
}

type AskSiteName struct {
	Mode session.UploadMode
}

type AskFiles struct {
	Mode     session.UploadMode
	SiteName string
}

// FileStaged acknowledges a file in multi-file mode.
type FileStaged struct {
	Name  string
	Count int
	Bytes int64
}

// InputIgnored is returned for text that looks like a command while a name is
// expected.
type InputIgnored struct{}

type Cancelled struct {
	HadSession bool
}

type AskSlug struct {
	Action session.AdminAction
}

type DeployEffect struct {
	SiteName string
	Files    []session.StagedFile
}

type AdminEffect struct {
	Action session.AdminAction
	Slug   string
}

type Deployed struct {
	Record   models.Deployment
	Archived bool
}

// AdminApplied is the outcome of a delete or restore. Accepted is the hosting
// API's answer; Found reports whether a local record had its status changed.
type AdminApplied struct {
	Action   session.AdminAction
	Slug     string
	Accepted bool
	Found    bool
	Message  string
}

func (AskSiteName) isEffect()  {}
func (AskFiles) isEffect()     {}
func (FileStaged) isEffect()   {}
func (InputIgnored) isEffect() {}
func (Cancelled) isEffect()    {}
func (AskSlug) isEffect()      {}
func (DeployEffect) isEffect() {}
func (AdminEffect) isEffect()  {}
func (Deployed) isEffect()     {}
func (AdminApplied) isEffect() {}
