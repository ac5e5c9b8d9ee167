package models

// FeeMetadata is one fee entry extracted from an invoice document.
// Amount is kept as the formatted string found in the source.
type FeeMetadata struct {
	Name   string `json:"name" msgpack:"name"`
	Amount string `json:"amount" msgpack:"amount"`
	Vendor string `json:"vendor,omitempty" msgpack:"vendor,omitempty"`
}

// FeeLineItem is a billable line shown inside a folder, independent of any
// single file. Metadata-derived items use the composite name|amount|vendor
// key; manual items carry a "manual:" prefixed unique key.
type FeeLineItem struct {
	Key    string `json:"key" msgpack:"key"`
	Name   string `json:"name" msgpack:"name"`
	Amount string `json:"amount" msgpack:"amount"`
	Vendor string `json:"vendor,omitempty" msgpack:"vendor,omitempty"`
	Manual bool   `json:"manual,omitempty" msgpack:"manual,omitempty"`
}

// FeeInfo is the per-file fee lookup result served to the frontend.
type FeeInfo struct {
	Importer string        `json:"importer,omitempty"`
	Fees     []FeeMetadata `json:"fees"`
}
