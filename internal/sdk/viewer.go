package sdk

import (
	"net/url"
	"strings"
)

const (
	officeViewer   = "https://view.officeapps.live.com/op/view.aspx?src="
	documentViewer = "https://docs.google.com/viewer?embedded=true&url="
)

// ViewerURL wraps viewURL for display by file type: office formats go to the
// office viewer, pdf to the document viewer, anything else (images) is opened
// directly.
func ViewerURL(fileType, viewURL string) string {
	switch strings.TrimPrefix(strings.ToLower(fileType), ".") {
	case "doc", "docx", "xls", "xlsx", "ppt", "pptx":
		return officeViewer + url.QueryEscape(viewURL)
	case "pdf":
		return documentViewer + url.QueryEscape(viewURL)
	}
	return viewURL
}
