// Package bot maps chat events onto the deploy service and renders the
// replies as text plus button menus, independent of any chat transport.
package bot

import "context"

// Callback data carried by the menu buttons.
const (
	CallbackUpload           = "upload"
	CallbackUploadZip        = "upload_zip"
	CallbackUploadFiles      = "upload_files"
	CallbackMySites          = "my_sites"
	CallbackStats            = "stats"
	CallbackHelp             = "help"
	CallbackAdminPanel       = "admin_panel"
	CallbackAdminListSites   = "admin_list_sites"
	CallbackAdminServerStats = "admin_server_stats"
	CallbackAdminDeleteSite  = "admin_delete_site"
	CallbackAdminRestoreSite = "admin_restore_site"
	CallbackFinishUpload     = "finish_upload"
	CallbackBackMenu         = "back_menu"
	CallbackCancel           = "cancel"
)

// Update is one inbound chat event. Exactly one of Command, Callback, File or
// Text is meaningful, checked in that order by the router.
type Update struct {
	ChatID   int64  `json:"chatId"`
	UserID   int64  `json:"userId"`
	Username string `json:"username,omitempty"`

	Command  string `json:"command,omitempty"` // without the leading slash
	Callback string `json:"callback,omitempty"`
	Text     string `json:"text,omitempty"`
	File     *File  `json:"file,omitempty"`
}

// File is an attachment. Fetch downloads the content on demand.
type File struct {
	Name  string                                   `json:"name"`
	Size  int64                                    `json:"size"`
	Fetch func(ctx context.Context) ([]byte, error) `json:"-"`
}

type Button struct {
	Text string `json:"text"`
	Data string `json:"data,omitempty"`
	URL  string `json:"url,omitempty"`
}

// Response is what the transport should send back. Text is HTML formatted.
// Notice is a short popup for answering button presses.
type Response struct {
	Text   string     `json:"text,omitempty"`
	Menu   [][]Button `json:"menu,omitempty"`
	Notice string     `json:"notice,omitempty"`
}
