package approval

// AttachmentChange is the outcome of diffing a submitted attachment list
// against the persisted rows during an edit. Attachments are immutable:
// there is no update-in-place, a changed file arrives as delete + insert.
type AttachmentChange struct {
	ToDelete []Attachment
	ToInsert []Attachment
}

// StorageKeysToDelete collects the object-storage keys behind ToDelete.
func (c AttachmentChange) StorageKeysToDelete() []string {
	keys := make([]string, 0, len(c.ToDelete))
	for _, at := range c.ToDelete {
		keys = append(keys, at.StorageKey)
	}
	return keys
}

// ReconcileAttachments diffs current (persisted, all carrying an
// AttachmentID) against submitted. Submitted entries that retain their
// AttachmentID are kept untouched even if name/size differ; entries with
// no id are new uploads. Current entries whose id is absent from the
// submitted set are deleted. Reconciling an already-reconciled list
// yields an empty change.
func ReconcileAttachments(current, submitted []Attachment) AttachmentChange {
	kept := make(map[string]struct{}, len(submitted))
	var change AttachmentChange
	for _, at := range submitted {
		if at.AttachmentID == "" {
			change.ToInsert = append(change.ToInsert, at)
			continue
		}
		kept[at.AttachmentID] = struct{}{}
	}
	for _, at := range current {
		if _, ok := kept[at.AttachmentID]; !ok {
			change.ToDelete = append(change.ToDelete, at)
		}
	}
	return change
}
