package models

// GroupUnclassified is the fallback folder for files whose filename carries
// no customs number and no BL code that can be resolved to one.
const GroupUnclassified = "미분류"

// PrefixUnknown marks filenames without a recognizable document-type prefix.
const PrefixUnknown = "기타"

// FileRecord is one uploaded customs document.
type FileRecord struct {
	ID   string `json:"id" msgpack:"id"`
	Name string `json:"name" msgpack:"name"`
	// UploadName is the server-assigned storage name, set once the binary
	// has been persisted. Empty until then.
	UploadName string `json:"uploadName,omitempty" msgpack:"uploadName,omitempty"`
	Size       int64  `json:"size" msgpack:"size"`

	// Customs is the extracted declaration number in canonical
	// DDDDD-DD-DDDDDDM form, or empty.
	Customs string `json:"customs,omitempty" msgpack:"customs,omitempty"`
	// BL is the extracted bill-of-lading code, upper-cased, or empty.
	BL     string `json:"bl,omitempty" msgpack:"bl,omitempty"`
	Prefix string `json:"prefix" msgpack:"prefix"`

	GroupKey string `json:"groupKey" msgpack:"groupKey"`
	// ManualGroup pins GroupKey against automatic re-classification.
	ManualGroup bool `json:"manualGroup,omitempty" msgpack:"manualGroup,omitempty"`
	AddedIndex  int  `json:"addedIndex" msgpack:"addedIndex"`

	// FeeKey links this file to the fee line item it fulfills.
	// At most one file per group may hold a given key.
	FeeKey string `json:"feeKey,omitempty" msgpack:"feeKey,omitempty"`

	// Importer and Fees are server-populated invoice metadata.
	Importer string        `json:"importer,omitempty" msgpack:"importer,omitempty"`
	Fees     []FeeMetadata `json:"fees,omitempty" msgpack:"fees,omitempty"`
}
