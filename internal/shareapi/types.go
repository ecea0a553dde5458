package shareapi

// Share target kinds reported by the backend.
const (
	ShareTypeFile   = "file"
	ShareTypeFolder = "folder"
)

// ShareInfo describes the policy attached to a share token: who may use it
// and what it points at. Immutable once fetched; it says nothing about the
// viewer's verification state.
type ShareInfo struct {
	IsRestricted    bool   `json:"is_restricted"`
	TargetEmail     string `json:"target_email"`
	TargetEmailHint string `json:"target_email_hint"`
	ExpiryDate      string `json:"expiry_date"`
	ShareType       string `json:"share_type"`
}

// VerifyResult is the server's response to a successful OTP verification.
// ShareType and FolderID drive what happens next: folder shares start
// browsing at FolderID, file shares go straight to download.
type VerifyResult struct {
	ShareType string `json:"share_type"`
	FolderID  string `json:"folder_id"`
	Document  string `json:"document"`
}

// FolderItem is one entry in a shared folder listing. Produced by the
// backend; never mutated client-side.
type FolderItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"` // "folder" or "file"
	MediaType string `json:"media_type"`
}

// IsFolder reports whether the item is a subfolder.
func (i FolderItem) IsFolder() bool {
	return i.Type == ShareTypeFolder
}

// Breadcrumb is one step in the server-computed trail from the share root
// to the current folder.
type Breadcrumb struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FolderListing is the contents of one folder in a folder share, including
// the breadcrumb trail rooted at the share's root folder. The server owns
// the trail: a folder can be the root of the share even though it has real
// ancestors in the full filesystem.
type FolderListing struct {
	Contents     []FolderItem `json:"contents"`
	FolderName   string       `json:"folder_name"`
	Breadcrumbs  []Breadcrumb `json:"breadcrumbs"`
	FolderID     string       `json:"folder_id"`
	RootFolderID string       `json:"root_folder_id"`
}
