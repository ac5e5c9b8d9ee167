package models

// PrefixEntry pairs a document-type prefix with its human-readable label.
type PrefixEntry struct {
	Prefix       string `json:"prefix" msgpack:"prefix" yaml:"prefix"`
	DocumentName string `json:"documentName" msgpack:"documentName" yaml:"document_name"`
}

// Settings is the shared settings blob the frontend loads and saves as a
// whole. Map keys are group keys; inner keys are fee item keys except for
// FeeAttachmentMap, which is keyed by the file's server storage name so the
// link survives a tab restore.
type Settings struct {
	PrefixOrder      []PrefixEntry                `json:"prefixOrder" msgpack:"prefixOrder"`
	CustomsOnlyFirst bool                         `json:"customsOnlyFirst" msgpack:"customsOnlyFirst"`
	CompletedGroups  map[string]bool              `json:"completedGroups" msgpack:"completedGroups"`
	FeeOrderMap      map[string][]string          `json:"feeOrderMap" msgpack:"feeOrderMap"`
	FeeHiddenMap     map[string][]string          `json:"feeHiddenMap" msgpack:"feeHiddenMap"`
	FeeManualMap     map[string][]FeeLineItem     `json:"feeManualMap" msgpack:"feeManualMap"`
	FeeOverrideMap   map[string]map[string]string `json:"feeOverrideMap" msgpack:"feeOverrideMap"`
	ListOrderMap     map[string][]string          `json:"listOrderMap" msgpack:"listOrderMap"`
	FeeAttachmentMap map[string]map[string]string `json:"feeAttachmentMap" msgpack:"feeAttachmentMap"`
}
