// Package deploy drives the upload conversation: a pure transition table over
// session states plus the Service that runs the resulting deploy and admin
// effects against the hosting API and the record store.
package deploy

import (
	"fmt"
	"path"
	"strings"

	"github.com/rohits-web03/sitedrop/internal/session"
)

// DefaultMaxFileSize is the per-file cap. There is no cap on the session total.
const DefaultMaxFileSize int64 = 50 << 20

const commandPrefix = "/"

type Limits struct {
	MaxFileSize int64
}

func (l Limits) maxFileSize() int64 {
	if l.MaxFileSize <= 0 {
		return DefaultMaxFileSize
	}
	return l.MaxFileSize
}

// Transition computes the next state and the effect of ev. It performs no I/O.
// On error the returned state is st unchanged.
func Transition(st session.State, ev Event, lim Limits) (session.State, Effect, error) {
	if st == nil {
		st = session.Idle{}
	}

	switch ev := ev.(type) {
	case StartUpload:
		if ev.Mode != session.ModeArchive && ev.Mode != session.ModeMultiFile {
			return st, nil, ErrUnknownMode
		}
		return session.AwaitingSiteName{Mode: ev.Mode}, AskSiteName{Mode: ev.Mode}, nil

	case SubmitName:
		cur, ok := st.(session.AwaitingSiteName)
		if !ok {
			return st, nil, ErrUnexpectedInput
		}
		if strings.HasPrefix(ev.Text, commandPrefix) {
			return st, InputIgnored{}, nil
		}
		name := strings.TrimSpace(ev.Text)
		if name == "" {
			return st, nil, ErrEmptyName
		}
		return session.AwaitingFiles{Mode: cur.Mode, SiteName: name},
			AskFiles{Mode: cur.Mode, SiteName: name}, nil

	case SubmitFile:
		if err := Admit(st, ev.Name, int64(len(ev.Content)), lim); err != nil {
			return st, nil, err
		}
		cur := st.(session.AwaitingFiles)
		file := session.StagedFile{Name: ev.Name, Content: ev.Content}

		if cur.Mode == session.ModeArchive {
			return session.Idle{}, DeployEffect{
				SiteName: cur.SiteName,
				Files:    []session.StagedFile{file},
			}, nil
		}

		files := make([]session.StagedFile, len(cur.Files), len(cur.Files)+1)
		copy(files, cur.Files)
		files = append(files, file)
		next := session.AwaitingFiles{Mode: cur.Mode, SiteName: cur.SiteName, Files: files}
		return next, FileStaged{Name: file.Name, Count: len(files), Bytes: next.StagedBytes()}, nil

	case Finalize:
		cur, ok := st.(session.AwaitingFiles)
		if !ok || len(cur.Files) == 0 {
			return st, nil, ErrNothingStaged
		}
		return session.Idle{}, DeployEffect{SiteName: cur.SiteName, Files: cur.Files}, nil

	case Cancel:
		return session.Idle{}, Cancelled{HadSession: !session.IsIdle(st)}, nil

	case StartAdmin:
		if ev.Action != session.ActionDelete && ev.Action != session.ActionRestore {
			return st, nil, fmt.Errorf("%w: unknown admin action %q", ErrValidation, ev.Action)
		}
		return session.AwaitingSlug{Action: ev.Action}, AskSlug{Action: ev.Action}, nil

	case SubmitSlug:
		cur, ok := st.(session.AwaitingSlug)
		if !ok {
			return st, nil, ErrUnexpectedInput
		}
		slug := strings.TrimSpace(ev.Text)
		if slug == "" || strings.HasPrefix(slug, commandPrefix) {
			return st, nil, ErrEmptySlug
		}
		return session.Idle{}, AdminEffect{Action: cur.Action, Slug: slug}, nil
	}

	return st, nil, fmt.Errorf("unsupported event %T", ev)
}

// Admit runs the checks SubmitFile would run, using the declared size, so a
// file can be rejected before its content is downloaded.
func Admit(st session.State, name string, size int64, lim Limits) error {
	cur, ok := st.(session.AwaitingFiles)
	if !ok {
		if session.IsIdle(st) {
			return ErrNoActiveSession
		}
		return ErrUnexpectedFile
	}
	if size > lim.maxFileSize() {
		return ErrFileTooLarge
	}
	if cur.Mode == session.ModeArchive && !isZip(name) {
		return ErrNotArchive
	}
	return nil
}

func isZip(name string) bool {
	return strings.EqualFold(path.Ext(name), ".zip")
}
