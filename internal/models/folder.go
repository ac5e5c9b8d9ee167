package models

import "time"

// GroupImporterMixed is shown when a folder's files name different importers.
const GroupImporterMixed = "복수"

// FolderView is the computed, render-ready state of one folder.
type FolderView struct {
	Key       string        `json:"key" msgpack:"key"`
	Files     []FileRecord  `json:"files" msgpack:"files"`
	Fees      []FeeLineItem `json:"fees" msgpack:"fees"`
	Order     []string      `json:"order" msgpack:"order"` // composite file/fee tokens
	BL        string        `json:"bl,omitempty" msgpack:"bl,omitempty"`
	Importer  string        `json:"importer,omitempty" msgpack:"importer,omitempty"`
	Completed bool          `json:"completed" msgpack:"completed"`
	TotalSize int64         `json:"totalSize" msgpack:"totalSize"`
}

// StateView is the full snapshot handed to the renderer.
type StateView struct {
	Folders          []FolderView  `json:"folders" msgpack:"folders"`
	FileCount        int           `json:"fileCount" msgpack:"fileCount"`
	PrefixOrder      []PrefixEntry `json:"prefixOrder" msgpack:"prefixOrder"`
	CustomsOnlyFirst bool          `json:"customsOnlyFirst" msgpack:"customsOnlyFirst"`
}

// StoredFile describes an uploaded binary on disk.
type StoredFile struct {
	Name         string    `json:"name"` // server-assigned storage name
	OriginalName string    `json:"originalName"`
	Size         int64     `json:"size"`
	SavedAt      time.Time `json:"savedAt"`
}
