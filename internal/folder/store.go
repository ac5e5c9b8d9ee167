// Package folder owns the classification and ordering state of the binder:
// every uploaded file record, each shipment folder's order lists, and the
// fee line items shown inside the folders. All state lives behind one
// mutex; every mutation entry point is one atomic unit that ends with a
// full resolver and reconciler pass, so readers always observe a
// consistent snapshot.
package folder

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/customs-binder/backend/internal/classify"
	"github.com/customs-binder/backend/internal/models"
)

// IncomingFile is one file handed to AddFiles after its binary was stored.
type IncomingFile struct {
	Name       string
	UploadName string
	Size       int64
}

// Store is the single owner of binder state.
type Store struct {
	mu      sync.Mutex
	files   []*models.FileRecord
	counter int

	rules classify.Ruleset

	groupOrder    map[string][]string // group -> ordered file IDs
	feeOrder      map[string][]string // group -> ordered fee keys
	listOrder     map[string][]string // group -> ordered composite tokens
	feeHidden     map[string]map[string]bool
	feeManual     map[string][]models.FeeLineItem
	feeOverride   map[string]map[string]string
	feeAttachment map[string]map[string]string // group -> storage name -> fee key
	completed     map[string]bool

	feeItems map[string][]models.FeeLineItem // derived, rebuilt on every sync

	onChange func()
}

// NewStore creates an empty store with the given ordering rules.
func NewStore(rules classify.Ruleset) *Store {
	s := &Store{rules: rules}
	s.resetLocked()
	return s
}

// SetOnChange registers a listener fired after every completed mutation.
// The listener runs outside the store lock.
func (s *Store) SetOnChange(fn func()) {
	s.onChange = fn
}

func (s *Store) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}

func (s *Store) resetLocked() {
	s.files = nil
	s.groupOrder = make(map[string][]string)
	s.feeOrder = make(map[string][]string)
	s.listOrder = make(map[string][]string)
	s.feeHidden = make(map[string]map[string]bool)
	s.feeManual = make(map[string][]models.FeeLineItem)
	s.feeOverride = make(map[string]map[string]string)
	s.feeAttachment = make(map[string]map[string]string)
	s.completed = make(map[string]bool)
	s.feeItems = make(map[string][]models.FeeLineItem)
}

// storageName returns the identity a record has on disk: the server-assigned
// name once uploaded, the original name before that.
func storageName(f *models.FileRecord) string {
	if f.UploadName != "" {
		return f.UploadName
	}
	return f.Name
}

func (s *Store) fileByIDLocked(id string) *models.FileRecord {
	for _, f := range s.files {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// AddFiles ingests stored files. A non-empty targetGroup pins every new
// record to that folder (manual assignment, sticky against the resolver)
// and renames the files the way a drop onto an open folder does.
func (s *Store) AddFiles(incoming []IncomingFile, targetGroup string) []*models.FileRecord {
	s.mu.Lock()
	records := make([]*models.FileRecord, 0, len(incoming))
	for i, in := range incoming {
		name := in.Name
		if targetGroup != "" {
			name = fmt.Sprintf("add_%s.pdf", targetGroup)
			if len(incoming) > 1 {
				name = fmt.Sprintf("add_%s_%d.pdf", targetGroup, i+1)
			}
		}
		s.counter++
		customs := classify.ExtractCustoms(name)
		groupKey := customs
		if targetGroup != "" {
			groupKey = targetGroup
		} else if groupKey == "" {
			groupKey = models.GroupUnclassified
		}
		rec := &models.FileRecord{
			ID:          uuid.New().String(),
			Name:        name,
			UploadName:  in.UploadName,
			Size:        in.Size,
			Customs:     customs,
			BL:          classify.ExtractBL(name),
			Prefix:      classify.ExtractPrefix(name),
			GroupKey:    groupKey,
			ManualGroup: targetGroup != "",
			AddedIndex:  s.counter,
		}
		s.files = append(s.files, rec)
		records = append(records, rec)
	}
	s.syncLocked()
	s.mu.Unlock()
	s.notify()
	return records
}

// RemoveFile drops one record and repairs every order list. The removed
// record is returned so the caller can delete the stored binary.
func (s *Store) RemoveFile(id string) (*models.FileRecord, bool) {
	s.mu.Lock()
	var removed *models.FileRecord
	kept := s.files[:0]
	for _, f := range s.files {
		if f.ID == id {
			removed = f
			continue
		}
		kept = append(kept, f)
	}
	s.files = kept
	if removed == nil {
		s.mu.Unlock()
		return nil, false
	}
	if att := s.feeAttachment[removed.GroupKey]; att != nil {
		delete(att, storageName(removed))
	}
	s.syncLocked()
	s.mu.Unlock()
	s.notify()
	return removed, true
}

// RemoveGroup drops every record of a folder (after a successful merge)
// and clears its collection-complete flag. Returns the removed records.
func (s *Store) RemoveGroup(key string) []*models.FileRecord {
	s.mu.Lock()
	var removed []*models.FileRecord
	kept := s.files[:0]
	for _, f := range s.files {
		if f.GroupKey == key {
			removed = append(removed, f)
			continue
		}
		kept = append(kept, f)
	}
	s.files = kept
	delete(s.completed, key)
	s.syncLocked()
	s.mu.Unlock()
	if len(removed) > 0 {
		s.notify()
	}
	return removed
}

// Clear wipes all files and per-folder state. Ordering rules survive.
func (s *Store) Clear() {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()
	s.notify()
}

// SetGroupManual pins a file to a folder. The assignment is sticky: the
// resolver never overwrites it.
func (s *Store) SetGroupManual(fileID, groupKey string) error {
	s.mu.Lock()
	f := s.fileByIDLocked(fileID)
	if f == nil {
		s.mu.Unlock()
		return fmt.Errorf("file not found: %s", fileID)
	}
	f.GroupKey = groupKey
	f.ManualGroup = true
	s.syncLocked()
	s.mu.Unlock()
	s.notify()
	return nil
}

// Reorder moves sourceToken to targetToken's position within a folder's
// composite order, then re-derives the file-only and fee-only sub-orders so
// the three lists stay consistent.
func (s *Store) Reorder(groupKey, sourceToken, targetToken string) error {
	s.mu.Lock()
	order := s.listOrder[groupKey]
	src, dst := indexOf(order, sourceToken), indexOf(order, targetToken)
	if src < 0 || dst < 0 {
		s.mu.Unlock()
		return fmt.Errorf("token not in folder %s", groupKey)
	}
	updated := make([]string, 0, len(order))
	updated = append(updated, order...)
	moved := updated[src]
	updated = append(updated[:src], updated[src+1:]...)
	updated = append(updated[:dst], append([]string{moved}, updated[dst:]...)...)
	s.applyCompositeLocked(groupKey, updated)
	s.mu.Unlock()
	s.notify()
	return nil
}

// MoveToken shifts a token one step up or down in the composite order.
func (s *Store) MoveToken(groupKey, token string, direction int) error {
	s.mu.Lock()
	order := s.listOrder[groupKey]
	src := indexOf(order, token)
	if src < 0 {
		s.mu.Unlock()
		return fmt.Errorf("token not in folder %s", groupKey)
	}
	dst := src + direction
	if dst < 0 || dst >= len(order) {
		s.mu.Unlock()
		return nil
	}
	updated := append([]string(nil), order...)
	updated[src], updated[dst] = updated[dst], updated[src]
	s.applyCompositeLocked(groupKey, updated)
	s.mu.Unlock()
	s.notify()
	return nil
}

// SetCompleted flags a folder as collection-complete.
func (s *Store) SetCompleted(groupKey string, completed bool) {
	s.mu.Lock()
	if completed {
		s.completed[groupKey] = true
	} else {
		delete(s.completed, groupKey)
	}
	s.mu.Unlock()
	s.notify()
}

// AddManualFee appends a user-created fee line item to a folder.
func (s *Store) AddManualFee(groupKey, name string) models.FeeLineItem {
	item := models.FeeLineItem{
		Key:    manualFeePrefix + uuid.New().String(),
		Name:   name,
		Manual: true,
	}
	s.mu.Lock()
	s.feeManual[groupKey] = append(s.feeManual[groupKey], item)
	s.syncLocked()
	s.mu.Unlock()
	s.notify()
	return item
}

// HideFee soft-deletes a fee item: the key stays in the hidden set so a
// metadata re-scan cannot bring the item back.
func (s *Store) HideFee(groupKey, feeKey string) {
	s.mu.Lock()
	if s.feeHidden[groupKey] == nil {
		s.feeHidden[groupKey] = make(map[string]bool)
	}
	s.feeHidden[groupKey][feeKey] = true
	s.syncLocked()
	s.mu.Unlock()
	s.notify()
}

// OverrideFeeName renames a fee item for display. Manual items are edited
// in place; derived items keep their metadata and get an override entry.
func (s *Store) OverrideFeeName(groupKey, feeKey, name string) {
	s.mu.Lock()
	if IsManualFeeKey(feeKey) {
		entries := s.feeManual[groupKey]
		for i := range entries {
			if entries[i].Key == feeKey {
				entries[i].Name = name
			}
		}
	} else {
		if s.feeOverride[groupKey] == nil {
			s.feeOverride[groupKey] = make(map[string]string)
		}
		s.feeOverride[groupKey][feeKey] = name
	}
	s.syncLocked()
	s.mu.Unlock()
	s.notify()
}

// AssignFeeKey links a fee item to a file. At most one file per group holds
// a given key, so the key is cleared from every other record first. The
// link is mirrored into the attachment map (keyed by storage name) so it
// survives a tab restore.
func (s *Store) AssignFeeKey(groupKey, feeKey, fileID string) error {
	s.mu.Lock()
	target := s.fileByIDLocked(fileID)
	if target == nil || target.GroupKey != groupKey {
		s.mu.Unlock()
		return fmt.Errorf("file not in folder %s", groupKey)
	}
	for _, f := range s.files {
		if f.GroupKey == groupKey && f.FeeKey == feeKey {
			f.FeeKey = ""
		}
	}
	target.FeeKey = feeKey
	if s.feeAttachment[groupKey] == nil {
		s.feeAttachment[groupKey] = make(map[string]string)
	}
	att := s.feeAttachment[groupKey]
	for name, key := range att {
		if key == feeKey {
			delete(att, name)
		}
	}
	att[storageName(target)] = feeKey
	s.mu.Unlock()
	s.notify()
	return nil
}

// SetFeeInfo applies server-extracted invoice metadata to every record
// stored under the given name and rebuilds the affected fee lists.
func (s *Store) SetFeeInfo(name string, info *models.FeeInfo) {
	if info == nil {
		return
	}
	s.mu.Lock()
	touched := false
	for _, f := range s.files {
		if storageName(f) != name {
			continue
		}
		f.Importer = info.Importer
		f.Fees = append([]models.FeeMetadata(nil), info.Fees...)
		touched = true
	}
	if touched {
		s.syncLocked()
	}
	s.mu.Unlock()
	if touched {
		s.notify()
	}
}

// ApplySettings replaces the ordering rules and the persisted per-folder
// side maps, then re-resolves and re-reconciles everything.
func (s *Store) ApplySettings(set *models.Settings) {
	if set == nil {
		return
	}
	s.mu.Lock()
	if len(set.PrefixOrder) > 0 {
		s.rules.Order = append([]models.PrefixEntry(nil), set.PrefixOrder...)
	}
	s.rules.CustomsOnlyFirst = set.CustomsOnlyFirst
	s.completed = copyBoolMap(set.CompletedGroups)
	s.feeOrder = copySliceMap(set.FeeOrderMap)
	s.listOrder = copySliceMap(set.ListOrderMap)
	s.feeHidden = make(map[string]map[string]bool)
	for group, keys := range set.FeeHiddenMap {
		hidden := make(map[string]bool, len(keys))
		for _, k := range keys {
			hidden[k] = true
		}
		s.feeHidden[group] = hidden
	}
	s.feeManual = make(map[string][]models.FeeLineItem)
	for group, items := range set.FeeManualMap {
		s.feeManual[group] = append([]models.FeeLineItem(nil), items...)
	}
	s.feeOverride = make(map[string]map[string]string)
	for group, m := range set.FeeOverrideMap {
		s.feeOverride[group] = copyStringMap(m)
	}
	s.feeAttachment = make(map[string]map[string]string)
	for group, m := range set.FeeAttachmentMap {
		s.feeAttachment[group] = copyStringMap(m)
	}
	s.syncLocked()
	s.mu.Unlock()
	s.notify()
}

// Settings snapshots everything the settings blob persists.
func (s *Store) Settings() *models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := &models.Settings{
		PrefixOrder:      append([]models.PrefixEntry(nil), s.rules.Order...),
		CustomsOnlyFirst: s.rules.CustomsOnlyFirst,
		CompletedGroups:  copyBoolMap(s.completed),
		FeeOrderMap:      copySliceMap(s.feeOrder),
		ListOrderMap:     copySliceMap(s.listOrder),
		FeeHiddenMap:     make(map[string][]string),
		FeeManualMap:     make(map[string][]models.FeeLineItem),
		FeeOverrideMap:   make(map[string]map[string]string),
		FeeAttachmentMap: make(map[string]map[string]string),
	}
	for group, hidden := range s.feeHidden {
		keys := make([]string, 0, len(hidden))
		for k := range hidden {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		set.FeeHiddenMap[group] = keys
	}
	for group, items := range s.feeManual {
		set.FeeManualMap[group] = append([]models.FeeLineItem(nil), items...)
	}
	for group, m := range s.feeOverride {
		set.FeeOverrideMap[group] = copyStringMap(m)
	}
	for group, m := range s.feeAttachment {
		set.FeeAttachmentMap[group] = copyStringMap(m)
	}
	return set
}

// Rules returns the ordering rules currently in effect.
func (s *Store) Rules() classify.Ruleset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return classify.Ruleset{
		Order:            append([]models.PrefixEntry(nil), s.rules.Order...),
		CustomsOnlyFirst: s.rules.CustomsOnlyFirst,
	}
}

// FileByID returns a copy of one record.
func (s *Store) FileByID(id string) (models.FileRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.fileByIDLocked(id)
	if f == nil {
		return models.FileRecord{}, false
	}
	return *f, true
}

// GroupFiles returns the folder's records in display order.
func (s *Store) GroupFiles(groupKey string) []*models.FileRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groupFilesLocked(groupKey)
}

func (s *Store) groupFilesLocked(groupKey string) []*models.FileRecord {
	ids := s.groupOrder[groupKey]
	files := make([]*models.FileRecord, 0, len(ids))
	for _, id := range ids {
		if f := s.fileByIDLocked(id); f != nil {
			files = append(files, f)
		}
	}
	return files
}

// syncLocked runs the full two-phase pipeline: resolve every record's
// folder from the complete set, then repair each folder's file, fee and
// composite orders. Newly grouped files are inserted at the position the
// comparator picks; everything already ordered keeps its place.
func (s *Store) syncLocked() {
	assignGroupKeys(s.files)

	groups := make(map[string][]*models.FileRecord)
	for _, f := range s.files {
		groups[f.GroupKey] = append(groups[f.GroupKey], f)
	}

	for key := range s.groupOrder {
		if _, live := groups[key]; !live {
			delete(s.groupOrder, key)
			delete(s.listOrder, key)
			delete(s.feeItems, key)
		}
	}

	for key, members := range groups {
		valid := make(map[string]bool, len(members))
		for _, f := range members {
			valid[f.ID] = true
		}

		order := s.groupOrder[key][:0]
		inOrder := make(map[string]bool, len(members))
		for _, id := range s.groupOrder[key] {
			if valid[id] && !inOrder[id] {
				order = append(order, id)
				inOrder[id] = true
			}
		}

		var newcomers []*models.FileRecord
		for _, f := range members {
			if !inOrder[f.ID] {
				newcomers = append(newcomers, f)
			}
		}
		sort.SliceStable(newcomers, func(i, j int) bool {
			return s.rules.Less(newcomers[i], newcomers[j])
		})
		for _, f := range newcomers {
			order = s.insertOrderedLocked(order, f)
		}
		s.groupOrder[key] = order

		// Restore fee links persisted in the attachment map.
		if att := s.feeAttachment[key]; len(att) > 0 {
			for _, f := range members {
				if f.FeeKey == "" {
					if feeKey, ok := att[storageName(f)]; ok {
						f.FeeKey = feeKey
					}
				}
			}
		}

		ordered := make([]*models.FileRecord, 0, len(order))
		for _, id := range order {
			ordered = append(ordered, s.fileByIDLocked(id))
		}
		items, feeOrder := buildFeeItems(ordered, s.feeManual[key],
			s.feeHidden[key], s.feeOverride[key], s.feeOrder[key])
		s.feeOrder[key] = feeOrder
		s.feeItems[key] = items

		tokens := make([]string, 0, len(order)+len(feeOrder))
		for _, id := range order {
			tokens = append(tokens, FileToken(id))
		}
		for _, feeKey := range feeOrder {
			tokens = append(tokens, FeeToken(feeKey))
		}
		s.listOrder[key] = Reconcile(s.listOrder[key], tokens)
	}
}

// insertOrderedLocked places a new file before the first existing entry it
// should precede, appending when it precedes none.
func (s *Store) insertOrderedLocked(order []string, rec *models.FileRecord) []string {
	for i, id := range order {
		existing := s.fileByIDLocked(id)
		if existing != nil && s.rules.Less(rec, existing) {
			order = append(order, "")
			copy(order[i+1:], order[i:])
			order[i] = rec.ID
			return order
		}
	}
	return append(order, rec.ID)
}

// applyCompositeLocked installs a user-arranged composite order and
// re-derives the file and fee sub-orders from it.
func (s *Store) applyCompositeLocked(groupKey string, order []string) {
	s.listOrder[groupKey] = order
	var fileIDs, feeKeys []string
	for _, token := range order {
		switch kind, value := SplitToken(token); kind {
		case tokenKindFile:
			fileIDs = append(fileIDs, value)
		case tokenKindFee:
			feeKeys = append(feeKeys, value)
		}
	}
	s.groupOrder[groupKey] = Reconcile(fileIDs, s.groupOrder[groupKey])
	s.feeOrder[groupKey] = Reconcile(feeKeys, s.feeOrder[groupKey])
	s.syncLocked()
}

func indexOf(list []string, value string) int {
	for i, v := range list {
		if v == value {
			return i
		}
	}
	return -1
}

func copyBoolMap(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		if v {
			out[k] = true
		}
	}
	return out
}

func copyStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copySliceMap(m map[string][]string) map[string][]string {
	out := make(map[string][]string, len(m))
	for k, v := range m {
		out[k] = append([]string(nil), v...)
	}
	return out
}
