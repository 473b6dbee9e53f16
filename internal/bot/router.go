package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"runtime/debug"
	"strings"

	"github.com/rohits-web03/sitedrop/internal/deploy"
	"github.com/rohits-web03/sitedrop/internal/hosting"
	"github.com/rohits-web03/sitedrop/internal/observability"
	"github.com/rohits-web03/sitedrop/internal/session"
)

// Router turns updates into service calls and service results into responses.
// It never returns an error: every failure, including panics, becomes a reply.
type Router struct {
	svc *deploy.Service
}

func NewRouter(svc *deploy.Service) *Router {
	return &Router{svc: svc}
}

func (r *Router) Handle(ctx context.Context, u Update) (resp Response) {
	ctx = observability.WithChatID(ctx, u.ChatID)
	log := observability.LoggerFromContext(ctx)

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("panic while handling update", "panic", rec, "stack", string(debug.Stack()))
			resp = Response{Text: textGenericError}
		}
	}()

	c := deploy.Caller{ChatID: u.ChatID, UserID: u.UserID}
	switch {
	case u.Command != "":
		return r.handleCommand(ctx, c, u)
	case u.Callback != "":
		return r.handleCallback(ctx, c, u.Callback)
	case u.File != nil:
		return r.handleFile(ctx, c, u.File)
	default:
		return r.handleText(ctx, c, u.Text)
	}
}

func (r *Router) handleCommand(ctx context.Context, c deploy.Caller, u Update) Response {
	switch strings.ToLower(u.Command) {
	case "start", "menu":
		return Response{Text: textWelcome, Menu: mainMenu(r.svc.IsAdmin(c.UserID))}
	case "help":
		return Response{Text: textHelp, Menu: backMenu()}
	case "cancel":
		return r.cancel(ctx, c)
	}
	// Unknown commands go through the text path so a pending name prompt can
	// reject them.
	return r.handleText(ctx, c, "/"+u.Command)
}

func (r *Router) handleCallback(ctx context.Context, c deploy.Caller, data string) Response {
	switch data {
	case CallbackUpload:
		return Response{Text: textChooseUpload, Menu: uploadMenu()}
	case CallbackUploadZip:
		return r.effect(ctx, c)(r.svc.StartUpload(ctx, c, session.ModeArchive))
	case CallbackUploadFiles:
		return r.effect(ctx, c)(r.svc.StartUpload(ctx, c, session.ModeMultiFile))
	case CallbackMySites:
		sites, err := r.svc.ListMySites(ctx, c.UserID)
		if err != nil {
			return r.fail(ctx, c, err)
		}
		return Response{Text: renderMySites(sites), Menu: backMenu()}
	case CallbackStats:
		stats, err := r.svc.UserStats(ctx, c.UserID)
		if err != nil {
			return r.fail(ctx, c, err)
		}
		return Response{Text: renderUserStats(stats), Menu: backMenu()}
	case CallbackHelp:
		return Response{Text: textHelp, Menu: backMenu()}
	case CallbackAdminPanel:
		if !r.svc.IsAdmin(c.UserID) {
			return r.fail(ctx, c, deploy.ErrUnauthorized)
		}
		return Response{Text: textAdminPanel, Menu: adminMenu()}
	case CallbackAdminListSites:
		listing, err := r.svc.AdminListSites(ctx, c)
		if err != nil {
			return r.fail(ctx, c, err)
		}
		return Response{Text: renderSiteListing(listing), Menu: adminMenu()}
	case CallbackAdminServerStats:
		stats, err := r.svc.AdminServerStats(ctx, c)
		if err != nil {
			return r.fail(ctx, c, err)
		}
		return Response{Text: renderServerStats(stats), Menu: adminMenu()}
	case CallbackAdminDeleteSite:
		return r.effect(ctx, c)(r.svc.StartAdmin(ctx, c, session.ActionDelete))
	case CallbackAdminRestoreSite:
		return r.effect(ctx, c)(r.svc.StartAdmin(ctx, c, session.ActionRestore))
	case CallbackFinishUpload:
		return r.effect(ctx, c)(r.svc.Finalize(ctx, c))
	case CallbackBackMenu:
		if _, err := r.svc.Cancel(ctx, c); err != nil {
			return r.fail(ctx, c, err)
		}
		return Response{Text: textWelcome, Menu: mainMenu(r.svc.IsAdmin(c.UserID))}
	case CallbackCancel:
		return r.cancel(ctx, c)
	}

	observability.LoggerFromContext(ctx).Warn("unknown callback", "data", data)
	return Response{Notice: "Unknown action", Text: textUseMenu}
}

func (r *Router) handleFile(ctx context.Context, c deploy.Caller, f *File) Response {
	if f.Fetch == nil {
		return r.fail(ctx, c, errors.New("attachment has no content handle"))
	}
	return r.effect(ctx, c)(r.svc.SubmitFile(ctx, c, deploy.Attachment{
		Name:  f.Name,
		Size:  f.Size,
		Fetch: f.Fetch,
	}))
}

func (r *Router) handleText(ctx context.Context, c deploy.Caller, text string) Response {
	return r.effect(ctx, c)(r.svc.SubmitText(ctx, c, text))
}

func (r *Router) cancel(ctx context.Context, c deploy.Caller) Response {
	return r.effect(ctx, c)(r.svc.Cancel(ctx, c))
}

// effect adapts a service result so calls can be written inline.
func (r *Router) effect(ctx context.Context, c deploy.Caller) func(deploy.Effect, error) Response {
	return func(eff deploy.Effect, err error) Response {
		if err != nil {
			return r.fail(ctx, c, err)
		}
		return r.render(c, eff)
	}
}

func (r *Router) render(c deploy.Caller, eff deploy.Effect) Response {
	limit := formatBytes(r.svc.Limits().MaxFileSize)

	switch e := eff.(type) {
	case deploy.AskSiteName:
		return Response{Text: textAskName, Menu: cancelMenu()}
	case deploy.InputIgnored:
		return Response{Text: textNameIsCmd, Menu: cancelMenu()}
	case deploy.AskFiles:
		if e.Mode == session.ModeArchive {
			return Response{Text: fmt.Sprintf(textAskZip, limit), Menu: cancelMenu()}
		}
		return Response{Text: fmt.Sprintf(textAskFiles, limit), Menu: stagingMenu()}
	case deploy.FileStaged:
		return Response{
			Text: fmt.Sprintf(textStaged, html.EscapeString(e.Name), e.Count, formatBytes(e.Bytes)),
			Menu: stagingMenu(),
		}
	case deploy.Cancelled:
		text := textCancelled
		if !e.HadSession {
			text = textNothingToEnd
		}
		return Response{Text: text, Menu: mainMenu(r.svc.IsAdmin(c.UserID))}
	case deploy.AskSlug:
		return Response{Text: fmt.Sprintf(textAskSlug, e.Action), Menu: cancelMenu()}
	case deploy.Deployed:
		return renderDeployed(e.Record)
	case deploy.AdminApplied:
		return Response{Text: renderAdminApplied(e), Menu: adminMenu()}
	}
	return Response{Text: textGenericError}
}

// fail renders an error. Only validation and hosting-reported messages are
// shown to the user; everything else gets the generic text.
func (r *Router) fail(ctx context.Context, c deploy.Caller, err error) Response {
	menu := mainMenu(r.svc.IsAdmin(c.UserID))
	log := observability.LoggerFromContext(ctx)

	var (
		business  *hosting.BusinessError
		transport *hosting.TransportError
		record    *deploy.RecordError
	)
	switch {
	case errors.Is(err, deploy.ErrUnauthorized):
		return Response{Notice: textNotAllowed}
	case errors.Is(err, deploy.ErrFileTooLarge):
		return Response{Text: fmt.Sprintf("❌ File too large. The limit is %s per file.", formatBytes(r.svc.Limits().MaxFileSize))}
	case errors.Is(err, deploy.ErrNotArchive):
		return Response{Text: "❌ Please send a <b>.zip</b> archive.", Menu: cancelMenu()}
	case errors.Is(err, deploy.ErrEmptyName):
		return Response{Text: "❌ The site name cannot be empty. " + textAskName, Menu: cancelMenu()}
	case errors.Is(err, deploy.ErrEmptySlug):
		return Response{Text: "❌ Please send a slug.", Menu: cancelMenu()}
	case errors.Is(err, deploy.ErrNothingStaged):
		return Response{Text: "❌ No files uploaded yet. Send at least one file first."}
	case errors.Is(err, deploy.ErrNoActiveSession):
		return Response{Text: "❌ No active upload. Tap <b>Upload site</b> to start one.", Menu: menu}
	case errors.Is(err, deploy.ErrUnexpectedFile):
		return Response{Text: "❌ Send the site name first.", Menu: cancelMenu()}
	case errors.Is(err, deploy.ErrUnexpectedInput):
		return Response{Text: textUseMenu}
	case errors.Is(err, deploy.ErrValidation):
		return Response{Text: "❌ " + html.EscapeString(err.Error())}
	case errors.As(err, &business):
		log.Warn("hosting rejected request", "error", err)
		return Response{Text: "❌ Deployment failed: " + html.EscapeString(business.Message), Menu: menu}
	case errors.As(err, &record):
		log.Error("deployment not recorded", "error", err)
		return Response{
			Text: fmt.Sprintf("⚠️ Your site is live at %s but could not be added to your sites list.", html.EscapeString(record.URL)),
			Menu: menu,
		}
	case errors.As(err, &transport):
		log.Error("hosting unavailable", "error", err)
		return Response{Text: "❌ The hosting service is unavailable. Please try again later.", Menu: menu}
	}

	log.Error("failed to handle update", "error", err)
	return Response{Text: textGenericError}
}
