package bot

import (
	"fmt"
	"html"
	"strings"

	"github.com/rohits-web03/sitedrop/internal/deploy"
	"github.com/rohits-web03/sitedrop/internal/hosting"
	"github.com/rohits-web03/sitedrop/internal/models"
	"github.com/rohits-web03/sitedrop/internal/session"
)

const (
	textWelcome = "👋 <b>Welcome to SiteDrop!</b>\n\n" +
		"Deploy a static website straight from this chat.\n" +
		"Choose an option below to get started."

	textHelp = "<b>How it works</b>\n\n" +
		"1. Tap <b>Upload site</b> and pick a method.\n" +
		"2. Send the name of your site.\n" +
		"3. Send a <b>.zip</b> archive, or send your files one by one and tap <b>Finish upload</b>.\n\n" +
		"Your site goes live as soon as the upload is deployed. " +
		"Use /cancel at any time to abort."

	textChooseUpload = "How would you like to upload your site?\n\n" +
		"📦 <b>ZIP archive</b>: one .zip file with your whole site.\n" +
		"📄 <b>Individual files</b>: send files one by one, then tap Finish."

	textAskName      = "✏️ Send the <b>name</b> of your site."
	textNameIsCmd    = "Please send a site name, not a command."
	textAskZip       = "📦 Now send your site as a single <b>.zip</b> file (max %s)."
	textAskFiles     = "📄 Now send your files one by one (max %s each). Tap <b>Finish upload</b> when done."
	textStaged       = "✅ <b>%s</b> staged. %d file(s), %s so far."
	textCancelled    = "Upload cancelled."
	textNothingToEnd = "Nothing to cancel."
	textDeployed     = "🚀 <b>%s</b> is live!\n\n🔗 %s"
	textNoSites      = "You have no deployed sites yet."
	textAdminPanel   = "🛠 <b>Admin panel</b>"
	textAskSlug      = "Send the slug of the site to %s."
	textNotAllowed   = "⛔ Not allowed."
	textGenericError = "❌ An error occurred. Please try again."
	textUseMenu      = "Use /start to open the menu."
)

func mainMenu(isAdmin bool) [][]Button {
	rows := [][]Button{
		{{Text: "📤 Upload site", Data: CallbackUpload}},
		{{Text: "🌐 My sites", Data: CallbackMySites}, {Text: "📊 Stats", Data: CallbackStats}},
		{{Text: "❓ Help", Data: CallbackHelp}},
	}
	if isAdmin {
		rows = append(rows, []Button{{Text: "🛠 Admin panel", Data: CallbackAdminPanel}})
	}
	return rows
}

func uploadMenu() [][]Button {
	return [][]Button{
		{{Text: "📦 ZIP archive", Data: CallbackUploadZip}},
		{{Text: "📄 Individual files", Data: CallbackUploadFiles}},
		{{Text: "⬅️ Back", Data: CallbackBackMenu}},
	}
}

func adminMenu() [][]Button {
	return [][]Button{
		{{Text: "📋 List sites", Data: CallbackAdminListSites}, {Text: "📈 Server stats", Data: CallbackAdminServerStats}},
		{{Text: "🗑 Delete site", Data: CallbackAdminDeleteSite}, {Text: "♻️ Restore site", Data: CallbackAdminRestoreSite}},
		{{Text: "⬅️ Back", Data: CallbackBackMenu}},
	}
}

func cancelMenu() [][]Button {
	return [][]Button{{{Text: "✖️ Cancel", Data: CallbackCancel}}}
}

func stagingMenu() [][]Button {
	return [][]Button{{
		{Text: "✅ Finish upload", Data: CallbackFinishUpload},
		{Text: "✖️ Cancel", Data: CallbackCancel},
	}}
}

func backMenu() [][]Button {
	return [][]Button{{{Text: "⬅️ Back", Data: CallbackBackMenu}}}
}

func renderDeployed(d models.Deployment) Response {
	return Response{
		Text: fmt.Sprintf(textDeployed, html.EscapeString(d.Name), html.EscapeString(d.URL)),
		Menu: [][]Button{
			{{Text: "🔗 Open site", URL: d.URL}},
			{{Text: "⬅️ Menu", Data: CallbackBackMenu}},
		},
	}
}

func renderMySites(sites []models.Deployment) string {
	if len(sites) == 0 {
		return textNoSites
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🌐 <b>Your sites</b> (%d)\n", len(sites))
	for _, s := range sites {
		fmt.Fprintf(&b, "\n• <b>%s</b>\n  %s\n  %d file(s), %s",
			html.EscapeString(s.Name), html.EscapeString(s.URL), s.FileCount, s.CreatedAt.Format("2006-01-02"))
	}
	return b.String()
}

func renderUserStats(st deploy.UserStats) string {
	var b strings.Builder
	b.WriteString("📊 <b>Your stats</b>\n\n")
	fmt.Fprintf(&b, "Active sites: %d\n", st.ActiveSites)
	if st.HasUsage {
		b.WriteString("\n<b>Platform</b>\n")
		writeUsage(&b, st.Usage)
	}
	return b.String()
}

func renderServerStats(st deploy.ServerStats) string {
	var b strings.Builder
	b.WriteString("📈 <b>Server stats</b>\n\n")
	fmt.Fprintf(&b, "Active records: %d\n", st.ActiveRecords)
	if st.HasUsage {
		writeUsage(&b, st.Usage)
	} else {
		b.WriteString("Usage: not available\n")
	}
	if st.HasHealth {
		fmt.Fprintf(&b, "Hosting API: %s (up %s)\n", html.EscapeString(st.Health.Status), formatUptime(st.Health.Uptime))
	} else {
		b.WriteString("Hosting API: unreachable\n")
	}
	return b.String()
}

func writeUsage(b *strings.Builder, u hosting.UsageStats) {
	if u.TotalSites != nil {
		fmt.Fprintf(b, "Total sites: %d\n", *u.TotalSites)
	}
	if u.ActiveSites != nil {
		fmt.Fprintf(b, "Live sites: %d\n", *u.ActiveSites)
	}
	if u.TotalFiles != nil {
		fmt.Fprintf(b, "Total files: %d\n", *u.TotalFiles)
	}
	switch {
	case u.TotalStorageFormatted != nil:
		fmt.Fprintf(b, "Storage: %s\n", html.EscapeString(*u.TotalStorageFormatted))
	case u.TotalStorageBytes != nil:
		fmt.Fprintf(b, "Storage: %s\n", formatBytes(*u.TotalStorageBytes))
	}
}

func renderSiteListing(l deploy.SiteListing) string {
	if len(l.Sites) == 0 {
		return "No sites deployed yet."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📋 <b>All sites</b> (%d)", len(l.Sites))
	if l.Source == deploy.SourceLocal {
		b.WriteString(" <i>from local records, hosting API unreachable</i>")
	}
	b.WriteString("\n")
	for _, s := range l.Sites {
		status := s.Status
		if status == "" {
			status = "unknown"
		}
		fmt.Fprintf(&b, "\n• <code>%s</code> %s [%s]", html.EscapeString(s.Slug), html.EscapeString(s.Name), html.EscapeString(status))
	}
	return b.String()
}

func renderAdminApplied(a deploy.AdminApplied) string {
	verb := "deleted"
	if a.Action == session.ActionRestore {
		verb = "restored"
	}
	slug := html.EscapeString(a.Slug)
	switch {
	case !a.Accepted:
		msg := a.Message
		if msg == "" {
			msg = "request rejected"
		}
		return fmt.Sprintf("❌ Could not %s <code>%s</code>: %s", a.Action, slug, html.EscapeString(msg))
	case !a.Found:
		return fmt.Sprintf("⚠️ Site <code>%s</code> not found.", slug)
	default:
		return fmt.Sprintf("✅ Site <code>%s</code> %s.", slug, verb)
	}
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

func formatUptime(seconds float64) string {
	s := int64(seconds)
	d, s := s/86400, s%86400
	h, s := s/3600, s%3600
	m := s / 60
	switch {
	case d > 0:
		return fmt.Sprintf("%dd %dh", d, h)
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	default:
		return fmt.Sprintf("%dm", m)
	}
}
